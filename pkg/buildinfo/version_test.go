package buildinfo

import (
	"strings"
	"testing"
)

func TestLdflagsWin(t *testing.T) {
	old := [3]string{Version, Commit, Date}
	t.Cleanup(func() { Version, Commit, Date = old[0], old[1], old[2] })

	Version, Commit, Date = "v1.2.3", "abc123", "2026-01-02T03:04:05Z"
	if got := Get(); got != (Info{Version: "v1.2.3", Commit: "abc123", Date: "2026-01-02T03:04:05Z"}) {
		t.Errorf("Get() = %+v", got)
	}
	if !strings.Contains(Template(), "{{.Name}} version v1.2.3") {
		t.Errorf("Template() = %q", Template())
	}
	if !strings.HasPrefix(String(), "version: v1.2.3\ncommit: abc123") {
		t.Errorf("String() = %q", String())
	}
}
