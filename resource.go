// Copyright 2015 Aleksandr Demakin. All rights reserved.

// Package shared provides Resource, a typed value shared across an
// arbitrary number of cooperating POSIX processes: one named mutex for
// mutual exclusion, one named counter for attach/detach lifetime
// tracking, and one named shared-memory segment holding the serialized
// value, composed per the multi-process open/read/mutate/drop protocol
// this module exists to implement.
package shared

import (
	"os"

	"github.com/avd/go-shared-resource/shm"
	gsync "github.com/avd/go-shared-resource/sync"
	"github.com/pkg/errors"
)

// Resource is a handle to a named value shared across processes. It is
// not clonable; share it within a process by passing the handle around,
// and ensure only one goroutine calls Read/Mutate/Close on it at a time --
// the mutex it wraps is an inter-process primitive, and a second
// in-process caller locking it while the first holds it is undefined,
// just like recursive locking across processes is undefined.
type Resource[T any] struct {
	name    string
	mutex   *gsync.NamedMutex
	counter *gsync.NamedCounter
	segment *shm.Segment
	cfg     config[T]
}

// Open creates-or-attaches the named resource. If this process is the
// first to create the underlying shared-memory object, initial is
// encoded and stored; otherwise initial is ignored and the existing
// value is attached, per spec.md invariant 3 and 4.
//
// The open sequence is ordered exactly as spec.md §4.D requires:
// mutex open, counter open, counter increment (before the mutex is ever
// locked -- this is what lets a racing final detacher and a racing new
// attacher agree on whether teardown should happen), mutex lock, segment
// open, mutex unlock.
func Open[T any](name string, initial T, opts ...Option[T]) (*Resource[T], error) {
	cfg := defaultConfig[T]()
	for _, opt := range opts {
		opt(&cfg)
	}

	mutex, err := gsync.OpenMutex(name, false)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open resource mutex")
	}
	counter, err := gsync.OpenCounter(name, 0)
	if err != nil {
		mutex.Close()
		return nil, errors.Wrap(err, "failed to open resource counter")
	}

	// increment before locking: see the doc comment above.
	if err := counter.Increment(); err != nil {
		counter.Close()
		mutex.Close()
		return nil, errors.Wrap(err, "failed to increment attach counter")
	}

	if err := mutex.Lock(); err != nil {
		counter.Close()
		mutex.Close()
		return nil, errors.Wrap(err, "failed to lock resource mutex during open")
	}

	encoded, err := cfg.codec.Encode(initial)
	if err != nil {
		mutex.Unlock()
		counter.Close()
		mutex.Close()
		return nil, errors.Wrap(CodecError(err.Error()), "failed to encode initial value")
	}

	segment, _, err := shm.Open(name, encoded)
	if err != nil {
		mutex.Unlock()
		counter.Close()
		mutex.Close()
		return nil, errors.Wrap(err, "failed to open resource segment")
	}

	if err := mutex.Unlock(); err != nil {
		segment.Close()
		counter.Close()
		mutex.Close()
		return nil, errors.Wrap(err, "failed to unlock resource mutex after open")
	}

	return &Resource[T]{
		name:    name,
		mutex:   mutex,
		counter: counter,
		segment: segment,
		cfg:     cfg,
	}, nil
}

// Read locks the mutex, deserializes the current value, invokes fn with
// an immutable view of it, then unlocks. Mutations fn makes to the value
// it is given are discarded -- it is a snapshot, not a view into shared
// memory, because the codec's deserialized form typically contains
// indirections (owned buffers, maps, slices) that cannot safely live in
// a foreign process's mapping. Cost is O(payload size): every Read
// deserializes a fresh copy.
func (r *Resource[T]) Read(fn func(value *T) error) error {
	if err := r.mutex.Lock(); err != nil {
		return errors.Wrap(err, "failed to lock resource mutex for read")
	}
	defer r.mutex.Unlock()

	value, err := r.get()
	if err != nil {
		return err
	}
	return fn(&value)
}

// Mutate locks the mutex, deserializes the current value, invokes fn
// with a mutable view of it, re-serializes and writes back whatever fn
// left it as, then unlocks. If the write-back fails, the mutex is still
// released and the error is surfaced -- per spec.md §7, callers must then
// treat the shared value as in an undefined state (unchanged, or
// partially rewritten if the size changed mid-remap).
func (r *Resource[T]) Mutate(fn func(value *T) error) error {
	if err := r.mutex.Lock(); err != nil {
		return errors.Wrap(err, "failed to lock resource mutex for mutate")
	}
	defer r.mutex.Unlock()

	value, err := r.get()
	if err != nil {
		return err
	}
	if err := fn(&value); err != nil {
		return err
	}
	return r.set(value)
}

// get deserializes the current payload. Callers must already hold the
// mutex.
func (r *Resource[T]) get() (T, error) {
	var zero T
	raw, err := r.segment.Read()
	if err != nil {
		return zero, errors.Wrap(err, "failed to read resource segment")
	}
	value, err := r.cfg.codec.Decode(raw)
	if err != nil {
		return zero, errors.Wrap(CodecError(err.Error()), "failed to decode resource value")
	}
	return value, nil
}

// set serializes value and overwrites the payload. Callers must already
// hold the mutex.
func (r *Resource[T]) set(value T) error {
	encoded, err := r.cfg.codec.Encode(value)
	if err != nil {
		return errors.Wrap(CodecError(err.Error()), "failed to encode resource value")
	}
	if err := r.segment.Rewrite(encoded); err != nil {
		return errors.Wrap(err, "failed to rewrite resource segment")
	}
	return nil
}

// Close runs the drop sequence of spec.md §4.D: lock, decrement the
// attach counter, and either tear every kernel object down (if this was
// the last holder) or simply release this process's descriptors
// (otherwise). Once the counter has been read, every teardown step is
// attempted even if an earlier one fails, since skipping a step would
// leak a kernel object, and each failure is logged at Error level. Any
// teardown failure (including failing to lock the mutex or to read the
// counter) is then logged through the logger's Fatal level, and zerolog
// ends the process with os.Exit(1) after a Fatal event, even when the
// logger is disabled -- so Close does not return to its caller after a
// teardown failure, and returns nil when every step succeeds.
func (r *Resource[T]) Close() error {
	var errs []error
	record := func(err error, msg string) {
		if err == nil {
			return
		}
		r.cfg.logger.Error().Err(err).Str("resource", r.name).Msg(msg)
		errs = append(errs, errors.Wrap(err, msg))
	}

	if err := r.mutex.Lock(); err != nil {
		r.cfg.logger.Fatal().Err(err).Str("resource", r.name).Msg("failed to lock resource mutex during close")
		return errors.Wrap(err, "failed to lock resource mutex during close")
	}

	record(r.counter.Decrement(), "failed to decrement attach counter during close")

	count, err := r.counter.Value()
	if err != nil {
		r.cfg.logger.Fatal().Err(err).Str("resource", r.name).Msg("failed to read attach counter during close")
		r.mutex.Unlock()
		return errors.Wrap(err, "failed to read attach counter during close")
	}

	if count == 0 {
		r.cfg.logger.Debug().Str("resource", r.name).Int("pid", os.Getpid()).Str("branch", "final").Msg("last holder, tearing down kernel objects")
		record(r.counter.Close(), "failed to close attach counter during final teardown")
		record(r.counter.Unlink(), "failed to unlink attach counter during final teardown")
		record(r.segment.Close(), "failed to close shared memory during final teardown")
		record(r.segment.Unlink(), "failed to unlink shared memory during final teardown")
		// the mutex is unlinked while still locked: valid for POSIX
		// named semaphores, and it prevents a would-be new attacher
		// from racing into a partially-destroyed resource.
		record(r.mutex.Unlink(), "failed to unlink mutex during final teardown")
		record(r.mutex.Close(), "failed to close mutex during final teardown")
	} else {
		r.cfg.logger.Debug().Str("resource", r.name).Int("pid", os.Getpid()).Str("branch", "non_final").Msg("other holders remain, detaching only")
		record(r.counter.Close(), "failed to close attach counter during detach")
		record(r.segment.Close(), "failed to close shared memory during detach")
		record(r.mutex.Unlock(), "failed to unlock mutex during detach")
		record(r.mutex.Close(), "failed to close mutex during detach")
	}

	if len(errs) == 0 {
		return nil
	}
	for _, e := range errs {
		r.cfg.logger.Fatal().Err(e).Str("resource", r.name).Msg("teardown error")
	}
	return errs[0]
}
