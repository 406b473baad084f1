// Copyright 2015 Aleksandr Demakin. All rights reserved.

//go:build !linux && !darwin

package sync

import "github.com/avd/go-shared-resource/internal/ipcerr"

// semaphore is the non-POSIX stand-in used on hosts outside {linux,
// darwin}. Every method returns ErrUnsupportedOS; the zero value is
// usable, matching spec.md's requirement that unsupported hosts fail
// with UnsupportedOS at open time rather than panicking deeper in the
// call stack.
type semaphore struct{}

func openSemaphore(posixName string, initValue uint32) (sem *semaphore, created bool, err error) {
	return nil, false, ipcerr.CheckSupportedOS()
}

func (s *semaphore) wait(timeoutSecs int) error   { return ipcerr.CheckSupportedOS() }
func (s *semaphore) tryWait() (bool, error)       { return false, ipcerr.CheckSupportedOS() }
func (s *semaphore) post() error                  { return ipcerr.CheckSupportedOS() }
func (s *semaphore) value() (int32, error)        { return 0, ipcerr.CheckSupportedOS() }
func (s *semaphore) close() error                 { return ipcerr.CheckSupportedOS() }
func (s *semaphore) unlink() error                { return ipcerr.CheckSupportedOS() }
