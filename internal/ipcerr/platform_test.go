package ipcerr_test

import (
	"testing"

	"github.com/avd/go-shared-resource/internal/ipcerr"
	"github.com/stretchr/testify/require"
)

func TestCheckSupportedOSFor(t *testing.T) {
	require.NoError(t, ipcerr.CheckSupportedOSFor("linux"))
	require.NoError(t, ipcerr.CheckSupportedOSFor("darwin"))

	err := ipcerr.CheckSupportedOSFor("windows")
	require.Error(t, err)
	var ipcErr *ipcerr.Error
	require.ErrorAs(t, err, &ipcErr)
	require.Equal(t, ipcerr.KindUnsupportedOS, ipcErr.Kind)
}

func TestError_Is(t *testing.T) {
	a := &ipcerr.Error{Kind: ipcerr.KindUnsupportedOS}
	b := &ipcerr.Error{Kind: ipcerr.KindUnsupportedOS, Message: "different message"}
	c := &ipcerr.Error{Kind: ipcerr.KindSemaphore}

	require.True(t, a.Is(b))
	require.False(t, a.Is(c))
}
