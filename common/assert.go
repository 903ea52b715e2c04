package common

import (
	"fmt"
	"runtime"

	"github.com/devlights/gomy/output"
)

// SH_Assert panics with msg when condition is false. Used at internal
// invariant checkpoints (pin counts, latch state) where a violation means a
// bug in this package, not a caller error.
func SH_Assert(condition bool, msg string) {
	if !condition {
		panic(msg)
	}
}

// DumpGoroutineStacks writes every goroutine's stack trace to stdout. Wired
// into buffer.BufferPoolManager.DumpState for post-mortem debugging of
// pin-count leaks.
func DumpGoroutineStacks() {
	buf := make([]byte, 1<<16)
	for {
		n := runtime.Stack(buf, true)
		if n < len(buf) {
			output.Stdoutl("=== stack-all ===", string(buf[:n]))
			return
		}
		buf = make([]byte, 2*len(buf))
	}
}

// AssertUnreachable panics, formatting msg as with fmt.Sprintf. Used at
// branches the algorithm's invariants should make impossible to reach.
func AssertUnreachable(msg string, args ...interface{}) {
	panic(fmt.Sprintf(msg, args...))
}
