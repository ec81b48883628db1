package terminal

import (
	"io"
	"os"
)

const resetSequence = "\033[?25h" + // show cursor
	"\033[0m" + // clear attributes
	"\033[?1049l" + // leave alt screen
	"\033[?1000l\033[?1002l\033[?1003l\033[?1006l" // mouse reporting off

// Reset undoes whatever the TUI left behind when it exits abnormally.
func Reset() {
	ResetTo(os.Stdout)
	os.Stdout.Sync()
}

func ResetTo(w io.Writer) {
	_, _ = io.WriteString(w, resetSequence)
}
