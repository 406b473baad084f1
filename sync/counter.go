// Copyright 2015 Aleksandr Demakin. All rights reserved.

package sync

import (
	"github.com/avd/go-shared-resource/internal/ipcerr"
	"github.com/avd/go-shared-resource/internal/names"
	"github.com/avd/go-shared-resource/internal/telemetry"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// NamedCounter is a counting semaphore used as a cross-process attach
// counter: every open increments it, every drop decrements it, and the
// process observing it reach zero on a decrement is responsible for
// tearing down the resource's kernel objects.
type NamedCounter struct {
	sem    *semaphore
	name   string
	logger zerolog.Logger
}

// CounterOption configures OpenCounter.
type CounterOption func(*NamedCounter)

// WithCounterLogger overrides the default logger.
func WithCounterLogger(logger zerolog.Logger) CounterOption {
	return func(c *NamedCounter) { c.logger = logger }
}

// OpenCounter creates-or-attaches the named counter, seeded at initValue
// only if this process wins the create race.
func OpenCounter(name string, initValue int32, opts ...CounterOption) (*NamedCounter, error) {
	if err := ipcerr.CheckSupportedOS(); err != nil {
		return nil, err
	}
	decorated := names.Counter(name)
	sem, _, err := openSemaphore(names.POSIXName(decorated), uint32(initValue))
	if err != nil {
		return nil, errors.Wrap(err, "failed to open named counter")
	}
	c := &NamedCounter{sem: sem, name: decorated, logger: telemetry.NewLogger("sync.counter")}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Increment posts the counter (attach).
func (c *NamedCounter) Increment() error {
	if err := c.sem.post(); err != nil {
		return errors.Wrap(err, "failed to increment counter")
	}
	return nil
}

// Decrement makes a non-blocking attempt to decrement the counter
// (detach). If the counter is already zero this is a no-op, not an
// error -- it tolerates a detach arriving after the resource has already
// been unlinked by a peer.
func (c *NamedCounter) Decrement() error {
	if _, err := c.sem.tryWait(); err != nil {
		return errors.Wrap(err, "failed to decrement counter")
	}
	return nil
}

// Value reads the counter's current count.
func (c *NamedCounter) Value() (int32, error) {
	v, err := c.sem.value()
	if err != nil {
		return 0, errors.Wrap(err, "failed to read counter value")
	}
	return v, nil
}

// Close releases this process's descriptor without affecting other
// processes sharing the counter.
func (c *NamedCounter) Close() error {
	if err := c.sem.close(); err != nil {
		return errors.Wrap(err, "failed to close counter")
	}
	return nil
}

// Unlink removes the counter's name from the kernel namespace.
func (c *NamedCounter) Unlink() error {
	if err := c.sem.unlink(); err != nil {
		return errors.Wrap(err, "failed to unlink counter")
	}
	c.logger.Debug().Str("name", c.name).Msg("unlinked counter")
	return nil
}
