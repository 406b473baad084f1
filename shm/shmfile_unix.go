// Copyright 2015 Aleksandr Demakin. All rights reserved.

//go:build linux || darwin

package shm

/*
#include <sys/mman.h>
#include <sys/stat.h>
#include <fcntl.h>
#include <errno.h>
#include <string.h>
#include <unistd.h>
#include <stdlib.h>

// shm_open_or_create opens a POSIX shared memory object, creating it if
// it does not exist yet. Like sem_open, shm_open is a libc wrapper with
// no portable raw-syscall form in golang.org/x/sys/unix (on Darwin it is
// not backed by any visible filesystem path at all), so it is called
// through cgo directly.
static int shm_open_or_create(const char *name, int *created, int *err) {
	int fd = shm_open(name, O_RDWR | O_CREAT | O_EXCL, S_IRUSR | S_IWUSR);
	if (fd >= 0) {
		*created = 1;
		*err = 0;
		return fd;
	}
	if (errno != EEXIST) {
		*created = 0;
		*err = errno;
		return -1;
	}
	fd = shm_open(name, O_RDWR, 0);
	*created = 0;
	*err = (fd < 0) ? errno : 0;
	return fd;
}

static int shm_unlink_named(const char *name, int *err) {
	int res = shm_unlink(name);
	*err = (res < 0) ? errno : 0;
	return res;
}

static char *shm_errno_string(int e) {
	return strerror(e);
}
*/
import "C"

import (
	"unsafe"

	"github.com/avd/go-shared-resource/internal/ipcerr"
)

func shmError(errno C.int) error {
	return ipcerr.SharedMemoryError(int(errno), C.GoString(C.shm_errno_string(errno)))
}

// shmOpen creates-or-opens the POSIX shared memory object under posixName,
// returning the raw file descriptor and whether this call created it.
func shmOpen(posixName string) (fd int, created bool, err error) {
	cName := C.CString(posixName)
	defer C.free(unsafe.Pointer(cName))

	var cCreated, cErrno C.int
	res := C.shm_open_or_create(cName, &cCreated, &cErrno)
	if res < 0 {
		return -1, false, shmError(cErrno)
	}
	return int(res), cCreated != 0, nil
}

// shmUnlink removes the shared memory object's name from the kernel
// namespace.
func shmUnlink(posixName string) error {
	cName := C.CString(posixName)
	defer C.free(unsafe.Pointer(cName))
	var cErrno C.int
	if C.shm_unlink_named(cName, &cErrno) < 0 {
		return shmError(cErrno)
	}
	return nil
}
