// Copyright 2015 Aleksandr Demakin. All rights reserved.

// Package allocator provides the small amount of unsafe pointer
// arithmetic the shm package needs to treat a []byte returned by mmap as
// a fixed-size metadata header, rather than reaching for encoding/binary
// on a value that is really just a machine word shared with the kernel.
package allocator

import (
	"fmt"
	"unsafe"
)

// ByteSliceData returns the address of a byte slice's backing array. The
// caller is responsible for keeping the slice alive for as long as the
// returned pointer is used -- exactly the same obligation mmap's caller
// already has for the mapping itself.
func ByteSliceData(b []byte) unsafe.Pointer {
	if len(b) == 0 {
		return nil
	}
	return unsafe.Pointer(&b[0])
}

// Uint64At interprets the first 8 bytes of b as a machine uint64 and
// returns a pointer directly into b's backing array, so writes through
// the pointer are visible to every other mapping of the same
// shared-memory object without any copy.
func Uint64At(b []byte) (*uint64, error) {
	if len(b) < 8 {
		return nil, fmt.Errorf("buffer too small for a uint64 header: have %d bytes, need 8", len(b))
	}
	return (*uint64)(ByteSliceData(b)), nil
}
