// Copyright 2015 Aleksandr Demakin. All rights reserved.

//go:build darwin

package shm

import (
	"github.com/avd/go-shared-resource/internal/ipcerr"
	"golang.org/x/sys/unix"
)

// remapPayload grows or shrinks the backing object and remaps the
// payload region using the portable fallback spec.md §9 calls for on
// platforms without mremap: unmap, ftruncate, then mmap fresh. Darwin has
// no mremap equivalent, so this is the only path on macOS.
func remapPayload(fd int, old []byte, oldSize, newSize int, payloadOffset int64) ([]byte, error) {
	if oldSize > 0 {
		if err := unix.Munmap(old); err != nil {
			return nil, ipcerr.SharedMemoryError(int(errnoOf(err)), err.Error())
		}
	}
	if err := unix.Ftruncate(fd, payloadOffset+int64(newSize)); err != nil {
		return nil, ipcerr.SharedMemoryError(int(errnoOf(err)), err.Error())
	}
	return mmapPayload(fd, newSize)
}
