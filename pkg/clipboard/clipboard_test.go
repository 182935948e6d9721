package clipboard

import (
	"bytes"
	"encoding/base64"
	"strings"
	"testing"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestWrite(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("<div></div>"))
	tests := []struct {
		name   string
		vars   map[string]string
		prefix string
	}{
		{"plain", nil, "\x1b]52;c;"},
		{"tmux", map[string]string{"TMUX": "/tmp/tmux-1000/default,1,0"}, "\x1bPtmux;"},
		{"screen", map[string]string{"TERM": "screen-256color"}, "\x1bP"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Write(&buf, "<div></div>", env(tt.vars)); err != nil {
				t.Fatal(err)
			}
			out := buf.String()
			if !strings.HasPrefix(out, tt.prefix) {
				t.Errorf("sequence = %q, want prefix %q", out, tt.prefix)
			}
			if !strings.Contains(out, payload) {
				t.Errorf("sequence %q lacks base64 payload", out)
			}
		})
	}
}

func TestCopyNonTerminal(t *testing.T) {
	var buf bytes.Buffer
	if Copy(&buf, "x") {
		t.Error("Copy to a buffer should report false")
	}
	if buf.Len() != 0 {
		t.Errorf("Copy wrote %q to a non-terminal", buf.String())
	}
}

func TestSequenceMatchesWrite(t *testing.T) {
	vars := env(map[string]string{"TMUX": "1"})
	var buf bytes.Buffer
	if err := Write(&buf, "card", vars); err != nil {
		t.Fatal(err)
	}
	if got := Sequence("card", vars).String(); got != buf.String() {
		t.Errorf("Sequence().String() = %q, Write() = %q", got, buf.String())
	}
}
