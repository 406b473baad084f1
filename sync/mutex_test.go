// Copyright 2015 Aleksandr Demakin. All rights reserved.

package sync_test

import (
	"fmt"
	"os"
	"testing"
	"time"

	gsync "github.com/avd/go-shared-resource/sync"
	"github.com/avd/go-shared-resource/internal/testutil"
	"github.com/stretchr/testify/require"
)

func uniqueName(t *testing.T) string {
	return fmt.Sprintf("gsr_test_%s_%d", t.Name(), os.Getpid())
}

func TestMutex_OpenLockUnlockClose(t *testing.T) {
	name := uniqueName(t)
	m, err := gsync.OpenMutex(name, false)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, m.Unlink())
		require.NoError(t, m.Close())
	}()

	require.NoError(t, m.Lock())
	require.NoError(t, m.Unlock())
}

func TestMutex_OpenLockedInitially(t *testing.T) {
	name := uniqueName(t)
	m, err := gsync.OpenMutex(name, true)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, m.Unlink())
		require.NoError(t, m.Close())
	}()

	// the creator initialized it locked, so a Lock without an intervening
	// Unlock must time out.
	start := time.Now()
	err = m.Lock()
	require.Error(t, err)
	require.GreaterOrEqual(t, time.Since(start), 4*time.Second)
}

// TestMutex_HungHolder is the failure-test scenario from spec.md §8: a
// child process locks the mutex and never unlocks; the parent's Lock
// call must fail after ~5s with a SemaphoreError.
func TestMutex_HungHolder(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping 5s timeout test in short mode")
	}
	name := "gsr_hung_" + fmt.Sprint(os.Getpid())

	if testutil.IsChild(t.Name()) {
		// lock the parent's mutex, not one named after this pid
		name = os.Getenv("GSR_TEST_MUTEX")
		m, err := gsync.OpenMutex(name, false)
		require.NoError(t, err)
		require.NoError(t, m.Lock())
		// intentionally never unlock: simulates a crashed holder.
		time.Sleep(10 * time.Second)
		return
	}

	child := testutil.Reexec(t.Name(), "GSR_TEST_MUTEX="+name)
	require.NoError(t, child.Start())
	defer func() { _ = child.Process.Kill() }()

	time.Sleep(500 * time.Millisecond) // let the child grab the lock first

	m, err := gsync.OpenMutex(name, false)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, m.Unlink())
		require.NoError(t, m.Close())
	}()

	start := time.Now()
	err = m.Lock()
	require.Error(t, err)
	require.GreaterOrEqual(t, time.Since(start), 4*time.Second)
}
