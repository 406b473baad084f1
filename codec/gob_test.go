// Copyright 2015 Aleksandr Demakin. All rights reserved.

package codec_test

import (
	"testing"

	"github.com/avd/go-shared-resource/codec"
	"github.com/stretchr/testify/require"
)

type point struct {
	X, Y int
}

func TestGobCodec_RoundTrip(t *testing.T) {
	c := codec.NewGobCodec[point]()

	encoded, err := c.Encode(point{X: 3, Y: 4})
	require.NoError(t, err)
	require.NotEmpty(t, encoded)

	decoded, err := c.Decode(encoded)
	require.NoError(t, err)
	require.Equal(t, point{X: 3, Y: 4}, decoded)
}

func TestGobCodec_RoundTripPrimitive(t *testing.T) {
	c := codec.NewGobCodec[uint]()

	encoded, err := c.Encode(1000)
	require.NoError(t, err)

	decoded, err := c.Decode(encoded)
	require.NoError(t, err)
	require.EqualValues(t, 1000, decoded)
}
