// Copyright 2015 Aleksandr Demakin. All rights reserved.

//go:build linux || darwin

package sync

/*
#include <semaphore.h>
#include <fcntl.h>
#include <sys/stat.h>
#include <errno.h>
#include <string.h>
#include <time.h>
#include <stdlib.h>

// open_or_create opens a named semaphore, creating it with value if it
// does not exist yet. created and err are out-parameters so the Go side
// never has to guess at errno from a racy global.
static sem_t *open_or_create(const char *name, unsigned int value, int *created, int *err) {
	sem_t *s = sem_open(name, O_CREAT | O_EXCL, S_IRUSR | S_IWUSR, value);
	if (s != SEM_FAILED) {
		*created = 1;
		*err = 0;
		return s;
	}
	if (errno != EEXIST) {
		*created = 0;
		*err = errno;
		return NULL;
	}
	s = sem_open(name, 0);
	*created = 0;
	*err = (s == SEM_FAILED) ? errno : 0;
	return (s == SEM_FAILED) ? NULL : s;
}

static int timed_wait(sem_t *s, int secs, int *err) {
	struct timespec ts;
	if (clock_gettime(CLOCK_REALTIME, &ts) != 0) {
		*err = errno;
		return -1;
	}
	ts.tv_sec += secs;
	int res = sem_timedwait(s, &ts);
	*err = (res < 0) ? errno : 0;
	return res;
}

static int try_wait(sem_t *s, int *err) {
	int res = sem_trywait(s);
	*err = (res < 0) ? errno : 0;
	return res;
}

static int do_post(sem_t *s, int *err) {
	int res = sem_post(s);
	*err = (res < 0) ? errno : 0;
	return res;
}

static int do_getvalue(sem_t *s, int *value, int *err) {
	int res = sem_getvalue(s, value);
	*err = (res < 0) ? errno : 0;
	return res;
}

static int do_close(sem_t *s, int *err) {
	int res = sem_close(s);
	*err = (res < 0) ? errno : 0;
	return res;
}

static int do_unlink(const char *name, int *err) {
	int res = sem_unlink(name);
	*err = (res < 0) ? errno : 0;
	return res;
}

static char *errno_string(int e) {
	return strerror(e);
}
*/
import "C"

import (
	"unsafe"

	"github.com/avd/go-shared-resource/internal/ipcerr"
)

// semaphore is a thin cgo wrapper around a single POSIX named semaphore.
// sem_open has no portable raw-syscall form (unlike mmap/ftruncate, which
// golang.org/x/sys/unix exposes directly), so this is the one place this
// module crosses into cgo -- the direct analogue of the original Rust
// crate's libc::sem_open/sem_timedwait/sem_post FFI calls.
type semaphore struct {
	sem  *C.sem_t
	name string
}

func semError(errno C.int) error {
	return ipcerr.SemaphoreError(int(errno), C.GoString(C.errno_string(errno)))
}

// openSemaphore creates the named semaphore with the given initial value
// if it does not exist yet, or opens the existing one otherwise. It
// reports which branch was taken via created.
func openSemaphore(posixName string, initValue uint32) (sem *semaphore, created bool, err error) {
	cName := C.CString(posixName)
	defer C.free(unsafe.Pointer(cName))

	var cCreated, cErrno C.int
	s := C.open_or_create(cName, C.uint(initValue), &cCreated, &cErrno)
	if s == nil {
		return nil, false, semError(cErrno)
	}
	return &semaphore{sem: s, name: posixName}, cCreated != 0, nil
}

// wait blocks for up to timeoutSecs seconds waiting to decrement the
// semaphore. Its sole caller is NamedMutex.Lock.
func (s *semaphore) wait(timeoutSecs int) error {
	var cErrno C.int
	if res := C.timed_wait(s.sem, C.int(timeoutSecs), &cErrno); res < 0 {
		return semError(cErrno)
	}
	return nil
}

// tryWait makes one non-blocking attempt to decrement the semaphore. ok is
// false both when the semaphore is already at zero and when the call
// itself failed; callers distinguish those cases via err.
func (s *semaphore) tryWait() (ok bool, err error) {
	var cErrno C.int
	res := C.try_wait(s.sem, &cErrno)
	if res == 0 {
		return true, nil
	}
	if cErrno == C.EAGAIN {
		return false, nil
	}
	return false, semError(cErrno)
}

// post increments the semaphore.
func (s *semaphore) post() error {
	var cErrno C.int
	if C.do_post(s.sem, &cErrno) < 0 {
		return semError(cErrno)
	}
	return nil
}

// value reads the semaphore's current count.
func (s *semaphore) value() (int32, error) {
	var v, cErrno C.int
	if C.do_getvalue(s.sem, &v, &cErrno) < 0 {
		return 0, semError(cErrno)
	}
	return int32(v), nil
}

// close releases this process's descriptor without affecting other
// processes' view of the semaphore.
func (s *semaphore) close() error {
	var cErrno C.int
	if C.do_close(s.sem, &cErrno) < 0 {
		return semError(cErrno)
	}
	return nil
}

// unlink removes the semaphore's name from the kernel namespace. Existing
// descriptors (this process's included) remain valid until closed.
func (s *semaphore) unlink() error {
	cName := C.CString(s.name)
	defer C.free(unsafe.Pointer(cName))
	var cErrno C.int
	if C.do_unlink(cName, &cErrno) < 0 {
		return semError(cErrno)
	}
	return nil
}
