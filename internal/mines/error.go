package mines

import "fmt"

// AssertionError is the panic value for misuse of the engine by its embedder,
// such as touching a cell nobody observes.
type AssertionError struct {
	message string
}

func assertionf(format string, args ...any) AssertionError {
	return AssertionError{fmt.Sprintf(format, args...)}
}

// [AssertionError] implements [error]
func (e AssertionError) Error() string {
	return "assertion failed: " + e.message
}
