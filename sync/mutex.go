// Copyright 2015 Aleksandr Demakin. All rights reserved.

// Package sync provides the two named-semaphore primitives the shared
// resource is built on: a binary-semaphore mutex (NamedMutex) and a
// counting semaphore used as an attach counter (NamedCounter).
package sync

import (
	"time"

	"github.com/avd/go-shared-resource/internal/ipcerr"
	"github.com/avd/go-shared-resource/internal/names"
	"github.com/avd/go-shared-resource/internal/telemetry"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// lockTimeout is the bounded wait spec.md §4.A mandates: a process
// crashing while holding the mutex would otherwise deadlock every peer
// forever, so Lock surfaces a SemaphoreError after this ceiling instead.
const lockTimeout = 5 * time.Second

// NamedMutex is a binary-semaphore-backed inter-process mutex keyed by a
// decorated resource name. It is not re-entrant: a second Lock call from
// the same process before Unlock is undefined, exactly like the
// semaphore it wraps.
type NamedMutex struct {
	sem    *semaphore
	name   string
	logger zerolog.Logger
}

// MutexOption configures OpenMutex.
type MutexOption func(*NamedMutex)

// WithMutexLogger overrides the default logger.
func WithMutexLogger(logger zerolog.Logger) MutexOption {
	return func(m *NamedMutex) { m.logger = logger }
}

// OpenMutex creates-or-attaches the named mutex. If this process wins the
// exclusive-create race it is initialized to initLocked; if it loses the
// race (the mutex already exists) the existing semaphore's state is left
// untouched and initLocked is ignored.
func OpenMutex(name string, initLocked bool, opts ...MutexOption) (*NamedMutex, error) {
	if err := ipcerr.CheckSupportedOS(); err != nil {
		return nil, err
	}
	decorated := names.Mutex(name)
	initValue := uint32(1)
	if initLocked {
		initValue = 0
	}
	sem, _, err := openSemaphore(names.POSIXName(decorated), initValue)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open named mutex")
	}
	m := &NamedMutex{sem: sem, name: decorated, logger: telemetry.NewLogger("sync.mutex")}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Lock blocks until the mutex is acquired or lockTimeout elapses.
func (m *NamedMutex) Lock() error {
	if err := m.sem.wait(int(lockTimeout.Seconds())); err != nil {
		m.logger.Error().Str("name", m.name).Err(err).Msg("failed to lock mutex")
		return errors.Wrap(err, "failed to lock mutex")
	}
	return nil
}

// Unlock releases the mutex. Calling it without holding the lock is
// undefined, matching the underlying sem_post semantics.
func (m *NamedMutex) Unlock() error {
	if err := m.sem.post(); err != nil {
		m.logger.Error().Str("name", m.name).Err(err).Msg("failed to unlock mutex")
		return errors.Wrap(err, "failed to unlock mutex")
	}
	return nil
}

// Close releases this process's descriptor without affecting other
// processes sharing the mutex.
func (m *NamedMutex) Close() error {
	if err := m.sem.close(); err != nil {
		return errors.Wrap(err, "failed to close mutex")
	}
	return nil
}

// Unlink removes the mutex's name from the kernel namespace. Existing
// descriptors, including this process's, remain valid until closed.
func (m *NamedMutex) Unlink() error {
	if err := m.sem.unlink(); err != nil {
		return errors.Wrap(err, "failed to unlink mutex")
	}
	m.logger.Debug().Str("name", m.name).Msg("unlinked mutex")
	return nil
}
