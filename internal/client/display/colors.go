package display

import (
	"os"

	"golang.org/x/term"
)

// Terminal color codes. Blanked at startup when stdout is not a
// terminal so piped output stays clean.
var (
	Reset   = "\033[0m"
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"
)

func init() {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		DisableColors()
	}
}

// DisableColors turns every color code into the empty string.
func DisableColors() {
	Reset, Red, Green, Yellow, Blue, Magenta, Cyan, White = "", "", "", "", "", "", "", ""
}

// Prompt returns a colored prompt string
func Prompt(text string) string {
	return Yellow + text + " > " + Reset
}
