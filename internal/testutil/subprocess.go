// Package testutil re-execs the test binary as a child process, the
// Go-idiomatic analogue of the original Rust suite's rusty_fork_test!:
// Go has no safe raw fork() inside a running test binary, so multi-process
// scenarios spawn a fresh copy of the same binary instead and have it
// branch into "child" behavior via an environment variable.
package testutil

import (
	"fmt"
	"os"
	"os/exec"
)

// childEnvVar, when set to the name of the currently running test, marks
// this process as a child spawned by Reexec rather than the top-level
// `go test` run.
const childEnvVar = "GOSHAREDRESOURCE_TEST_CHILD"

// IsChild reports whether the current process is a child spawned by
// Reexec for the named test.
func IsChild(testName string) bool {
	return os.Getenv(childEnvVar) == testName
}

// Reexec launches a fresh copy of the test binary, restricted to the
// named test, with the child marker set so that a later IsChild(testName)
// call inside that process returns true. extraEnv is appended to the
// child's environment (e.g. a resource name to attach to).
func Reexec(testName string, extraEnv ...string) *exec.Cmd {
	cmd := exec.Command(os.Args[0], "-test.run=^"+testName+"$", "-test.v=true")
	cmd.Env = append(os.Environ(), fmt.Sprintf("%s=%s", childEnvVar, testName))
	cmd.Env = append(cmd.Env, extraEnv...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd
}
