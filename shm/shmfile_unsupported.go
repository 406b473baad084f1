// Copyright 2015 Aleksandr Demakin. All rights reserved.

//go:build !linux && !darwin

package shm

import "github.com/avd/go-shared-resource/internal/ipcerr"

func shmOpen(posixName string) (fd int, created bool, err error) {
	return -1, false, ipcerr.CheckSupportedOS()
}

func shmUnlink(posixName string) error {
	return ipcerr.CheckSupportedOS()
}
