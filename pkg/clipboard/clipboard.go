// Package clipboard copies exported markup to the system clipboard through
// the terminal, using the OSC 52 escape sequence. It works over SSH and
// inside tmux or screen, with no platform clipboard tool installed.
package clipboard

import (
	"io"
	"os"
	"strings"

	"github.com/aymanbagabas/go-osc52/v2"
	"github.com/mattn/go-isatty"
)

// Copy writes text to out as an OSC 52 clipboard sequence and reports
// whether the copy can have reached a terminal. Writes to anything but a
// terminal report false and write nothing.
func Copy(out io.Writer, text string) bool {
	f, ok := out.(*os.File)
	if !ok || !isatty.IsTerminal(f.Fd()) {
		return false
	}
	return Write(out, text, os.Getenv) == nil
}

// Write emits the sequence for text, wrapped for tmux or screen when the
// environment says the terminal is multiplexed.
func Write(out io.Writer, text string, getenv func(string) string) error {
	_, err := Sequence(text, getenv).WriteTo(out)
	return err
}

// Sequence builds the OSC 52 sequence for text.
func Sequence(text string, getenv func(string) string) osc52.Sequence {
	seq := osc52.New(text)
	switch {
	case getenv("TMUX") != "":
		seq = seq.Tmux()
	case strings.HasPrefix(getenv("TERM"), "screen"):
		seq = seq.Screen()
	}
	return seq
}
