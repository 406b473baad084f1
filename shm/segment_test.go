// Copyright 2015 Aleksandr Demakin. All rights reserved.

package shm_test

import (
	"fmt"
	"os"
	"testing"

	"github.com/avd/go-shared-resource/shm"
	"github.com/stretchr/testify/require"
)

func uniqueName(t *testing.T) string {
	return fmt.Sprintf("gsr_shm_test_%s_%d", t.Name(), os.Getpid())
}

func TestSegment_CreateReadClose(t *testing.T) {
	name := uniqueName(t)
	seg, isCreator, err := shm.Open(name, []byte("hello"))
	require.NoError(t, err)
	require.True(t, isCreator)
	defer func() {
		require.NoError(t, seg.Unlink())
		require.NoError(t, seg.Close())
	}()

	b, err := seg.Read()
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), b)
}

func TestSegment_AttachSeesCreatorPayload(t *testing.T) {
	name := uniqueName(t)
	first, isCreator, err := shm.Open(name, []byte("initial"))
	require.NoError(t, err)
	require.True(t, isCreator)

	second, isCreator2, err := shm.Open(name, []byte("ignored"))
	require.NoError(t, err)
	require.False(t, isCreator2)

	b, err := second.Read()
	require.NoError(t, err)
	require.Equal(t, []byte("initial"), b)

	require.NoError(t, second.Close())
	require.NoError(t, first.Unlink())
	require.NoError(t, first.Close())
}

func TestSegment_RewriteGrowAndShrink(t *testing.T) {
	name := uniqueName(t)
	seg, _, err := shm.Open(name, []byte("short"))
	require.NoError(t, err)
	defer func() {
		require.NoError(t, seg.Unlink())
		require.NoError(t, seg.Close())
	}()

	longer := []byte("a much longer payload than before")
	require.NoError(t, seg.Rewrite(longer))

	b, err := seg.Read()
	require.NoError(t, err)
	require.Equal(t, longer, b)

	require.NoError(t, seg.Rewrite([]byte("short")))
	b, err = seg.Read()
	require.NoError(t, err)
	require.Equal(t, []byte("short"), b)
}

func TestSegment_EmptyInitialPayload(t *testing.T) {
	name := uniqueName(t)
	seg, isCreator, err := shm.Open(name, nil)
	require.NoError(t, err)
	require.True(t, isCreator)
	defer func() {
		require.NoError(t, seg.Unlink())
		require.NoError(t, seg.Close())
	}()

	b, err := seg.Read()
	require.NoError(t, err)
	require.Empty(t, b)

	require.NoError(t, seg.Rewrite([]byte("now nonempty")))
	b, err = seg.Read()
	require.NoError(t, err)
	require.Equal(t, []byte("now nonempty"), b)
}
