// Package assert holds invariant checks that only fire in builds tagged
// "debug". Release builds compile them to no-ops.
package assert

import "fmt"

// IsTrue panics with the formatted message when ok is false.
func IsTrue(ok bool, msg string, args ...any) {
	if Enabled && !ok {
		panic(fmt.Sprintf(msg, args...))
	}
}

// NoError panics when err is non-nil.
func NoError(err error) {
	if Enabled && err != nil {
		panic(err)
	}
}
