// Copyright 2015 Aleksandr Demakin. All rights reserved.

// Package names derives the decorated kernel-object names for a shared
// resource from a single user-supplied resource name, so that the mutex,
// counter and shared-memory object opened by every process all resolve
// to the same three kernel names.
package names

import "strings"

// Normalize strips a leading '/' and a trailing NUL from a user-supplied
// resource name, so that "/foo\x00" and "foo" decorate identically.
func Normalize(name string) string {
	name = strings.TrimPrefix(name, "/")
	name = strings.TrimSuffix(name, "\x00")
	return name
}

// Mutex returns the decorated name of the resource's mutex semaphore.
func Mutex(name string) string {
	return "/sem_mutex_" + Normalize(name)
}

// Counter returns the decorated name of the resource's attach-counter semaphore.
func Counter(name string) string {
	return "sem_counter_" + Normalize(name)
}

// SharedMemory returns the decorated name of the resource's shared-memory object.
func SharedMemory(name string) string {
	return "shm_" + Normalize(name)
}

// POSIXName rewrites a decorated name so that it starts with exactly one
// leading '/', the form sem_open/shm_open expect on both Linux and
// Darwin. The three decorators above intentionally differ in whether they
// carry a leading slash (matching the resource naming scheme the rest of
// this package documents), so every name is normalized again immediately
// before it crosses into cgo. Any '/' after the leading one is left in
// place.
func POSIXName(decorated string) string {
	return "/" + strings.TrimPrefix(decorated, "/")
}
