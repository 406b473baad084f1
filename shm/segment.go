// Copyright 2015 Aleksandr Demakin. All rights reserved.

// Package shm implements the shared-memory segment a Resource's payload
// lives in: a fixed-size metadata header holding the current payload
// length, followed by the payload region itself. Unlike the original
// implementation this spec was distilled from, the payload is never
// mapped over the metadata region -- it starts at a page-aligned offset
// past it, so ftruncate/mmap/munmap never touch bytes the other region
// owns. See DESIGN.md for why.
package shm

import (
	"github.com/avd/go-shared-resource/internal/allocator"
	"github.com/avd/go-shared-resource/internal/ipcerr"
	"github.com/avd/go-shared-resource/internal/names"
	"github.com/avd/go-shared-resource/internal/telemetry"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"
)

// metaSize is the size of the metadata region. It is page-sized, not
// 8-byte-sized, because the payload region must start at an offset that
// is itself a valid mmap offset -- POSIX requires mmap's offset argument
// to be a multiple of the page size, and the metadata logically needs
// only the first 8 bytes of it.
var metaSize = unix.Getpagesize()

// Segment is a create-or-attach POSIX shared-memory object holding a
// size-prefixed payload. It is not safe for concurrent use by multiple
// goroutines without external synchronization -- the Resource type that
// composes it serializes all access under a NamedMutex.
type Segment struct {
	fd            int
	decoratedName string
	posixName     string
	metaRegion    []byte
	sizeField     *uint64
	payload       []byte
	logger        zerolog.Logger
}

// Option configures Open.
type Option func(*Segment)

// WithLogger overrides the default logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Segment) { s.logger = logger }
}

// Open creates-or-attaches the named shared-memory segment. If this
// process wins the exclusive-create race (isCreator == true), the
// segment is truncated and its payload initialized from initial;
// otherwise the existing payload is attached as-is and initial is
// ignored, matching spec.md invariant 3 (exactly one process performs
// the initial write).
func Open(name string, initial []byte, opts ...Option) (seg *Segment, isCreator bool, err error) {
	if err := ipcerr.CheckSupportedOS(); err != nil {
		return nil, false, err
	}
	decorated := names.SharedMemory(name)
	posix := names.POSIXName(decorated)

	fd, created, err := shmOpen(posix)
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to open shared memory segment")
	}

	s := &Segment{
		fd:            fd,
		decoratedName: decorated,
		posixName:     posix,
		logger:        telemetry.NewLogger("shm.segment"),
	}
	for _, opt := range opts {
		opt(s)
	}

	if created {
		if err := unix.Ftruncate(fd, int64(metaSize)); err != nil {
			unix.Close(fd)
			return nil, false, errors.Wrap(ipcerr.SharedMemoryError(int(errnoOf(err)), err.Error()), "failed to truncate new segment")
		}
	}

	metaRegion, err := unix.Mmap(fd, 0, metaSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		unix.Close(fd)
		return nil, false, errors.Wrap(ipcerr.SharedMemoryError(int(errnoOf(err)), err.Error()), "failed to map segment metadata")
	}
	s.metaRegion = metaRegion
	sizeField, err := allocator.Uint64At(metaRegion)
	if err != nil {
		unix.Munmap(metaRegion)
		unix.Close(fd)
		return nil, false, errors.Wrap(err, "failed to view segment metadata")
	}
	s.sizeField = sizeField

	if created {
		if err := s.initPayload(initial); err != nil {
			s.Close()
			return nil, false, err
		}
	} else {
		if err := s.attachPayload(); err != nil {
			s.Close()
			return nil, false, err
		}
	}

	return s, created, nil
}

// initPayload is the creator-only path: grow the object to hold initial,
// map the payload region and copy initial in.
func (s *Segment) initPayload(initial []byte) error {
	size := len(initial)
	if err := unix.Ftruncate(s.fd, int64(metaSize+size)); err != nil {
		return errors.Wrap(ipcerr.SharedMemoryError(int(errnoOf(err)), err.Error()), "failed to grow new segment for initial payload")
	}
	payload, err := mmapPayload(s.fd, size)
	if err != nil {
		return errors.Wrap(err, "failed to map initial payload")
	}
	copy(payload, initial)
	*s.sizeField = uint64(size)
	s.payload = payload
	return nil
}

// attachPayload is the peer path: the creator has already finished (the
// composed Resource only opens the segment while holding the resource's
// mutex, so there is no race here), so size can be read directly.
func (s *Segment) attachPayload() error {
	size := int(*s.sizeField)
	payload, err := mmapPayload(s.fd, size)
	if err != nil {
		return errors.Wrap(err, "failed to map existing payload")
	}
	s.payload = payload
	return nil
}

// Read returns a fresh copy of the payload bytes. Callers (Resource.Read
// and Resource.Mutate) must hold the resource's mutex for the entire
// call -- the size field and the payload mapping are both read here, and
// a size read racing with a concurrent remap would be unsafe. If another
// process's Rewrite has changed the payload size since this process last
// mapped it, the payload is mapped again at the current size first.
func (s *Segment) Read() ([]byte, error) {
	size := int(*s.sizeField)
	if size != len(s.payload) {
		// Rewrite only updates the calling process's own mapping, so a
		// peer's resize leaves this one stale.
		if len(s.payload) > 0 {
			if err := unix.Munmap(s.payload); err != nil {
				return nil, errors.Wrap(ipcerr.SharedMemoryError(int(errnoOf(err)), err.Error()), "failed to unmap stale payload")
			}
			s.payload = nil
		}
		payload, err := mmapPayload(s.fd, size)
		if err != nil {
			return nil, errors.Wrap(err, "failed to map resized payload")
		}
		s.payload = payload
	}
	out := make([]byte, size)
	copy(out, s.payload)
	return out, nil
}

// Rewrite overwrites the payload with b, growing or shrinking the backing
// object and remapping the payload region if b's length differs from the
// current payload size. Callers must hold the resource's mutex for the
// entire call.
func (s *Segment) Rewrite(b []byte) error {
	newSize := len(b)
	oldSize := int(*s.sizeField)
	if newSize != oldSize {
		newPayload, err := remapPayload(s.fd, s.payload, oldSize, newSize, int64(metaSize))
		if err != nil {
			return errors.Wrap(err, "failed to remap payload on resize")
		}
		s.payload = newPayload
		*s.sizeField = uint64(newSize)
	}
	copy(s.payload, b)
	return nil
}

// Close unmaps both regions and closes the descriptor. It does not
// remove the segment's kernel name -- use Unlink for that.
func (s *Segment) Close() error {
	var firstErr error
	if len(s.payload) > 0 {
		if err := unix.Munmap(s.payload); err != nil && firstErr == nil {
			firstErr = errors.Wrap(ipcerr.SharedMemoryError(int(errnoOf(err)), err.Error()), "failed to unmap payload")
		}
		s.payload = nil
	}
	if s.metaRegion != nil {
		if err := unix.Munmap(s.metaRegion); err != nil && firstErr == nil {
			firstErr = errors.Wrap(ipcerr.SharedMemoryError(int(errnoOf(err)), err.Error()), "failed to unmap metadata")
		}
		s.metaRegion = nil
	}
	if err := unix.Close(s.fd); err != nil && firstErr == nil {
		firstErr = errors.Wrap(ipcerr.SharedMemoryError(int(errnoOf(err)), err.Error()), "failed to close segment descriptor")
	}
	return firstErr
}

// Unlink removes the segment's name from the kernel namespace.
func (s *Segment) Unlink() error {
	if err := shmUnlink(s.posixName); err != nil {
		return errors.Wrap(err, "failed to unlink shared memory segment")
	}
	s.logger.Debug().Str("name", s.decoratedName).Msg("unlinked shared memory segment")
	return nil
}

// mmapPayload maps size bytes of fd at the payload offset. A zero size
// payload (a type whose codec produces an empty encoding) is represented
// as a nil slice rather than an mmap call, since mmap rejects a
// zero-length mapping outright.
func mmapPayload(fd int, size int) ([]byte, error) {
	if size == 0 {
		return nil, nil
	}
	payload, err := unix.Mmap(fd, int64(metaSize), size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, ipcerr.SharedMemoryError(int(errnoOf(err)), err.Error())
	}
	return payload, nil
}

func errnoOf(err error) int {
	if errno, ok := err.(unix.Errno); ok {
		return int(errno)
	}
	return 0
}
