package analysis

import "fmt"

// errorf panics with a descriptive message. Analyses treat malformed IR
// (e.g. a CFG with no well-defined immediate dominator) as a programmer
// bug, not a recoverable error.
func errorf(format string, args ...any) {
	panic(fmt.Sprintf("analysis: "+format, args...))
}
