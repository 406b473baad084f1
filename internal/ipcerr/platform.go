package ipcerr

import "runtime"

// CheckSupportedOS returns ErrUnsupportedOS unless the running host is
// Linux or Darwin, per spec: "the implementation must detect host OS at
// open time and fail with UnsupportedOS outside {Linux, macOS}".
func CheckSupportedOS() error {
	return CheckSupportedOSFor(runtime.GOOS)
}

// CheckSupportedOSFor is CheckSupportedOS parameterized on the GOOS
// value, so the failure path is exercisable from a test without
// depending on the host the test suite happens to run on.
func CheckSupportedOSFor(goos string) error {
	switch goos {
	case "linux", "darwin":
		return nil
	default:
		return &Error{Kind: KindUnsupportedOS, Message: "host OS " + goos + " is not linux or darwin"}
	}
}
