// Copyright 2015 Aleksandr Demakin. All rights reserved.

//go:build !linux && !darwin

package shm

import "github.com/avd/go-shared-resource/internal/ipcerr"

// remapPayload is unreachable in practice: Open already fails with
// ErrUnsupportedOS on any host outside {linux, darwin} before a Segment
// is ever constructed. It exists so this package still type-checks on
// the other POSIX-ish GOOS values golang.org/x/sys/unix supports
// (freebsd, netbsd, openbsd, solaris). The package does not build on
// Windows at all, since segment.go imports golang.org/x/sys/unix
// unconditionally.
func remapPayload(fd int, old []byte, oldSize, newSize int, payloadOffset int64) ([]byte, error) {
	return nil, ipcerr.CheckSupportedOS()
}
