// Copyright 2015 Aleksandr Demakin. All rights reserved.

//go:build linux

package shm

import (
	"github.com/avd/go-shared-resource/internal/ipcerr"
	"golang.org/x/sys/unix"
)

// remapPayload grows or shrinks the backing object to payloadOffset+newSize
// and resizes the payload mapping to match, using Linux's mremap fast path
// (MREMAP_MAYMOVE lets the kernel relocate the mapping instead of
// requiring contiguous free address space).
func remapPayload(fd int, old []byte, oldSize, newSize int, payloadOffset int64) ([]byte, error) {
	if err := unix.Ftruncate(fd, payloadOffset+int64(newSize)); err != nil {
		return nil, ipcerr.SharedMemoryError(int(errnoOf(err)), err.Error())
	}
	if newSize == 0 {
		if oldSize > 0 {
			if err := unix.Munmap(old); err != nil {
				return nil, ipcerr.SharedMemoryError(int(errnoOf(err)), err.Error())
			}
		}
		return nil, nil
	}
	if oldSize == 0 {
		return mmapPayload(fd, newSize)
	}
	newData, err := unix.Mremap(old, newSize, unix.MREMAP_MAYMOVE)
	if err != nil {
		return nil, ipcerr.SharedMemoryError(int(errnoOf(err)), err.Error())
	}
	return newData, nil
}
