package cli

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/cardcomposer/pkg/config"
	"github.com/matzehuels/cardcomposer/pkg/errors"
)

// newTestCLI returns a CLI whose caches live in a temp directory.
func newTestCLI(t *testing.T) *CLI {
	t.Helper()
	t.Setenv("CARDCOMPOSER_CACHE_DIR", filepath.Join(t.TempDir(), "artifacts"))
	t.Setenv("CARDCOMPOSER_REDIS_ADDR", "")
	c := New(io.Discard, LogInfo)
	cfg, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	c.Config = cfg
	return c
}

// execute runs the root command with args and returns what it wrote.
func execute(t *testing.T, c *CLI, args ...string) (string, error) {
	t.Helper()
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// writeCard writes a one-layer document with a 120x60 image and returns
// its path.
func writeCard(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 120, 60))); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "hero.png"), buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	doc := "container_width = 600\n\n[[layers]]\nimage = \"hero.png\"\ny_align = \"bottom\"\nheight = 30\n"
	path := filepath.Join(dir, "card.toml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRootCommand(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	want := []string{"export", "inspect", "preview", "serve", "cache", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, newTestCLI(t), "--version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "cardcomposer version ") {
		t.Errorf("--version = %q", out)
	}
}

func TestExportFiles(t *testing.T) {
	path := writeCard(t)
	if _, err := execute(t, newTestCLI(t), "export", path, "--no-cache"); err != nil {
		t.Fatalf("export error: %v", err)
	}

	base := strings.TrimSuffix(path, ".toml")
	jsonOut, err := os.ReadFile(base + ".json")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(jsonOut), `"id": "layer-1"`) || !strings.Contains(string(jsonOut), `"width": 60,`) {
		t.Errorf("json export = %s", jsonOut)
	}
	htmlOut, err := os.ReadFile(base + ".html")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(htmlOut), "asset-container") {
		t.Errorf("html export lacks the default class prefix:\n%s", htmlOut)
	}
}

func TestExportStdout(t *testing.T) {
	path := writeCard(t)
	out, err := execute(t, newTestCLI(t), "export", path, "-f", "html", "-o", "-", "--class-prefix", "promo")
	if err != nil {
		t.Fatalf("export error: %v", err)
	}
	if !strings.Contains(out, "promo") || strings.Contains(out, "asset-container") {
		t.Errorf("stdout export = %s", out)
	}
}

func TestExportCompact(t *testing.T) {
	path := writeCard(t)
	out, err := execute(t, newTestCLI(t), "export", path, "-f", "json", "-o", "-", "--compact")
	if err != nil {
		t.Fatalf("export error: %v", err)
	}
	if strings.Contains(strings.TrimSpace(out), "\n") {
		t.Errorf("compact export spans lines: %s", out)
	}
}

func TestExportErrors(t *testing.T) {
	path := writeCard(t)
	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"stdout needs one format", []string{"export", path, "-o", "-"}, errors.ErrCodeInvalidInput},
		{"unknown format", []string{"export", path, "-f", "svg"}, errors.ErrCodeInvalidFormat},
		{"missing document", []string{"export", filepath.Join(t.TempDir(), "nope.toml")}, errors.ErrCodeFileNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, newTestCLI(t), tt.args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestOutputPaths(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		formats []string
		want    map[string]string
	}{
		{"next to input", "", []string{"json", "html"}, map[string]string{"json": "cards/a.json", "html": "cards/a.html"}},
		{"single file", "out/card.htm", []string{"html"}, map[string]string{"html": "out/card.htm"}},
		{"base path", "out/card", []string{"json", "html"}, map[string]string{"json": "out/card.json", "html": "out/card.html"}},
		{"known extension stripped", "out/card.html", []string{"json", "html"}, map[string]string{"json": "out/card.json", "html": "out/card.html"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := outputPaths(tt.output, "cards/a.toml", tt.formats)
			if len(got) != len(tt.want) {
				t.Fatalf("outputPaths() = %v, want %v", got, tt.want)
			}
			for f, p := range tt.want {
				if got[f] != p {
					t.Errorf("outputPaths()[%s] = %q, want %q", f, got[f], p)
				}
			}
		})
	}
}

func TestInspect(t *testing.T) {
	path := writeCard(t)
	c := newTestCLI(t)
	var out bytes.Buffer
	if err := c.runInspect(context.Background(), path, true, &out); err != nil {
		t.Fatalf("inspect error: %v", err)
	}
	for _, want := range []string{"layer-1", "hero.png", "center/bottom", "60px × 30px", "600px", "image"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("inspect output lacks %q:\n%s", want, out.String())
		}
	}
}

func TestCompletion(t *testing.T) {
	out, err := execute(t, newTestCLI(t), "completion", "bash")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "cardcomposer") {
		t.Error("bash completion does not mention the binary")
	}
}
