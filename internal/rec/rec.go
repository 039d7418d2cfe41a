// Package rec converts panics into errors and wraps errors at call boundaries.
package rec

import (
	"fmt"
	"runtime/debug"
)

// panicError must be handed recover() from the deferred function itself,
// since recover only stops a panic when called directly by a deferred call.
func panicError(r any) error {
	if r != nil {
		switch t := r.(type) {
		case error:
			return fmt.Errorf("recovered panic: %w\n%s", t, debug.Stack())
		default:
			return fmt.Errorf("recovered panic: %v\n%s", r, debug.Stack())
		}
	}
	return nil
}

// Error recovers a panic and assigns it to the provided error.
func Error(err *error) {
	if r := panicError(recover()); r != nil {
		*err = r
	}
}

// Wrap recovers a panic with the provided format and arguments
// and assigns it to the provided error.
// The recovered panic is appended to the end of the arguments.
// If no panic was recovered, but the error is not nil, it is wrapped
// with the provided format and arguments as well.
func Wrap(err *error, format string, a ...any) {
	if r := panicError(recover()); r != nil {
		*err = fmt.Errorf(format, append(a, r)...)
	} else if *err != nil {
		*err = fmt.Errorf(format, append(a, *err)...)
	}
}

// Func returns f with any panic it raises returned as an error instead.
// Used for goroutines, where a panic would otherwise take down the process.
func Func(f func() error) func() error {
	return func() (err error) {
		defer Error(&err)
		return f()
	}
}
