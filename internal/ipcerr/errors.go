// Copyright 2015 Aleksandr Demakin. All rights reserved.

// Package ipcerr defines the error taxonomy shared by sync, shm and the
// root resource package. It lives below all three so none of them need
// to import one another just to construct an error.
package ipcerr

import "fmt"

// Kind classifies an Error per the error taxonomy: every failure surfaced
// by this module is one of a small, fixed set of kinds, so callers can
// branch on Kind without parsing messages.
type Kind int

const (
	// KindSemaphore covers any mutex or counter operation failing at the
	// OS layer, including a lock timeout.
	KindSemaphore Kind = iota
	// KindSharedMemory covers any shared-memory system call failing.
	KindSharedMemory
	// KindCodec covers serialization or deserialization failure.
	KindCodec
	// KindUnsupportedOS covers a host OS outside {linux, darwin}.
	KindUnsupportedOS
)

func (k Kind) String() string {
	switch k {
	case KindSemaphore:
		return "semaphore error"
	case KindSharedMemory:
		return "shared memory error"
	case KindCodec:
		return "codec error"
	case KindUnsupportedOS:
		return "unsupported operating system"
	default:
		return "unknown error"
	}
}

// Error is the single error type returned by every exported operation in
// this module and its sync/shm subpackages. Errno is 0 when Kind does not
// originate from a system call (KindCodec, KindUnsupportedOS).
type Error struct {
	Kind    Kind
	Errno   int
	Message string
}

func (e *Error) Error() string {
	if e.Errno != 0 {
		return fmt.Sprintf("[%s] [errno %d] %s", e.Kind, e.Errno, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Is reports whether target is an *Error of the same Kind, so callers can
// write errors.Is(err, &ipcerr.Error{Kind: ipcerr.KindUnsupportedOS}).
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

// SemaphoreError builds a KindSemaphore error from an errno and message.
func SemaphoreError(errno int, message string) *Error {
	return &Error{Kind: KindSemaphore, Errno: errno, Message: message}
}

// SharedMemoryError builds a KindSharedMemory error from an errno and message.
func SharedMemoryError(errno int, message string) *Error {
	return &Error{Kind: KindSharedMemory, Errno: errno, Message: message}
}

// CodecError wraps a codec failure.
func CodecError(message string) *Error {
	return &Error{Kind: KindCodec, Message: message}
}

// ErrUnsupportedOS is returned by Open when the host OS is not in
// {linux, darwin}.
var ErrUnsupportedOS = &Error{Kind: KindUnsupportedOS, Message: "host OS is not linux or darwin"}
