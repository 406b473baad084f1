// Copyright 2015 Aleksandr Demakin. All rights reserved.

package shared

import "github.com/avd/go-shared-resource/internal/ipcerr"

// Error, Kind and the Kind* constants are re-exported from internal/ipcerr
// so callers never need to import that package directly, while sync and
// shm (which must not import this root package) build the same error
// values underneath.
type (
	Error = ipcerr.Error
	Kind  = ipcerr.Kind
)

const (
	KindSemaphore     = ipcerr.KindSemaphore
	KindSharedMemory  = ipcerr.KindSharedMemory
	KindCodec         = ipcerr.KindCodec
	KindUnsupportedOS = ipcerr.KindUnsupportedOS
)

// ErrUnsupportedOS is returned by Open when the host OS is not in
// {linux, darwin}.
var ErrUnsupportedOS = ipcerr.ErrUnsupportedOS

// CodecError wraps a codec failure encountered while encoding or
// decoding a resource's value.
func CodecError(message string) *Error {
	return &Error{Kind: KindCodec, Message: message}
}
