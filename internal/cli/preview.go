package cli

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cardcomposer/pkg/composition"
	"github.com/matzehuels/cardcomposer/pkg/errors"
	"github.com/matzehuels/cardcomposer/pkg/pipeline"
	"github.com/matzehuels/cardcomposer/pkg/render/layout"
	"github.com/matzehuels/cardcomposer/pkg/store"
)

// Canvas size of the terminal preview in cells.
const (
	canvasCols = 64
	canvasRows = 16
)

// Steps of the interactive controls.
const (
	nudgeStep     = 1
	containerStep = 50
)

var scalePresets = map[string]float64{"1": 0.5, "2": 1, "3": 2, "4": 3}

var (
	canvasStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	normalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	hiddenStyle   = lipgloss.NewStyle().Foreground(colorDim)
)

func (c *CLI) previewCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "preview [document.toml]",
		Short: "Arrange the layers of a card document in the terminal",
		Long: `Preview loads a card document and draws the approximate placement of its
layers. Layers can be selected, nudged, scaled, reordered and hidden; with
--output the edited card is exported as HTML on quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPreview(cmd.Context(), args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the edited card as HTML on quit")
	return cmd
}

func (c *CLI) runPreview(ctx context.Context, input, output string) error {
	sess, _, err := c.loadSession(ctx, input, false)
	if err != nil {
		return err
	}
	defer sess.Close()

	p := tea.NewProgram(newPreviewModel(sess.Store), tea.WithContext(ctx), tea.WithOutput(os.Stderr))
	if _, err := p.Run(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "preview")
	}
	if output == "" {
		return nil
	}

	runner, err := c.newRunner(ctx, true)
	if err != nil {
		return err
	}
	defer runner.Close()
	res, err := runner.Export(ctx, sess.Store.State(), pipeline.Options{
		Formats:     []string{pipeline.FormatHTML},
		ClassPrefix: c.Config.ClassPrefix,
		Logger:      loggerFromContext(ctx),
	})
	if err != nil {
		return err
	}
	if err := os.WriteFile(output, res.Artifacts[pipeline.FormatHTML], 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", output)
	}
	printSuccess("Saved preview")
	printFile(output)
	return nil
}

// =============================================================================
// previewModel - Interactive layer arrangement
// =============================================================================

// previewModel edits a store through key presses. The cursor indexes the
// layer list; the store selection follows it.
type previewModel struct {
	store  *store.Store
	state  composition.State
	cursor int
}

func newPreviewModel(s *store.Store) previewModel {
	m := previewModel{store: s, state: s.State()}
	if i := m.state.Index(string(m.state.Selected)); i >= 0 {
		m.cursor = i
	} else if n := len(m.state.Layers); n > 0 {
		m.cursor = n - 1
		m.selectCursor()
	}
	return m
}

func (m previewModel) Init() tea.Cmd {
	return nil
}

func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch k := key.String(); k {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "+", "=":
		m.store.SetContainerWidth(m.state.ContainerWidth + containerStep)
	case "-":
		m.store.SetContainerWidth(m.state.ContainerWidth - containerStep)
	default:
		if len(m.state.Layers) > 0 {
			m.layerKey(k)
		}
	}
	m.state = m.store.State()
	return m, nil
}

// layerKey applies a key that acts on the layer under the cursor.
func (m *previewModel) layerKey(k string) {
	l := m.state.Layers[m.cursor]
	switch k {
	case "up", "shift+tab":
		m.moveCursor(-1)
	case "down", "tab":
		m.moveCursor(1)
	case "[":
		if m.store.ReorderLayers(m.cursor, m.cursor-1) {
			m.cursor--
		}
	case "]":
		if m.store.ReorderLayers(m.cursor, m.cursor+1) {
			m.cursor++
		}
	case " ":
		m.store.ToggleVisibility(l.ID)
	case "h", "left":
		m.store.UpdateLayer(l.ID, store.LayerUpdate{XPosition: store.Ptr(l.XPosition - nudgeStep)})
	case "l", "right":
		m.store.UpdateLayer(l.ID, store.LayerUpdate{XPosition: store.Ptr(l.XPosition + nudgeStep)})
	case "k":
		m.store.UpdateLayer(l.ID, store.LayerUpdate{YPosition: store.Ptr(l.YPosition - nudgeStep)})
	case "j":
		m.store.UpdateLayer(l.ID, store.LayerUpdate{YPosition: store.Ptr(l.YPosition + nudgeStep)})
	case "r":
		m.store.UpdateLayer(l.ID, store.LayerUpdate{Retina: store.Ptr(!l.Retina)})
	default:
		if scale, ok := scalePresets[k]; ok {
			m.store.UpdateLayer(l.ID, store.LayerUpdate{Scale: store.Ptr(scale)})
		}
	}
}

func (m *previewModel) moveCursor(delta int) {
	m.cursor = min(max(m.cursor+delta, 0), len(m.state.Layers)-1)
	m.selectCursor()
}

func (m *previewModel) selectCursor() {
	m.store.SelectLayer(composition.Selection(m.state.Layers[m.cursor].ID))
}

func (m previewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Card Preview"))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %dpx", m.state.ContainerWidth)))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ select  hjkl move  [ ] reorder  1-4 scale  r retina  space hide  +/- width  q quit"))
	b.WriteString("\n")
	b.WriteString(canvasStyle.Render(m.canvas()))
	b.WriteString("\n")

	if len(m.state.Layers) == 0 {
		b.WriteString(StyleDim.Render("  no layers"))
		return b.String()
	}
	for i, l := range m.state.Layers {
		cursor := "  "
		style := normalStyle
		if !l.Visible {
			style = hiddenStyle
		}
		if i == m.cursor {
			cursor = "▸ "
			style = selectedStyle
		}
		line := fmt.Sprintf("%s%c %-10s %-24s %s/%s  %d,%d  %s × %s  z%d",
			cursor, glyph(i), l.ID, truncate(l.Image.Filename, 24),
			l.XAlign, l.YAlign, l.XPosition, l.YPosition, l.Width, l.Height, l.ZIndex)
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

// canvas draws every visible layer as a block of its glyph, later stack
// entries over earlier ones.
func (m previewModel) canvas() string {
	grid := make([][]rune, canvasRows)
	for r := range grid {
		grid[r] = []rune(strings.Repeat(" ", canvasCols))
	}

	size := layout.Size{Width: float64(m.state.ContainerWidth), Height: layout.DefaultContainerHeight}
	cellW := size.Width / canvasCols
	cellH := size.Height / canvasRows

	for _, l := range m.state.StackOrder() {
		if !l.Visible {
			continue
		}
		rect := layout.Measure(layout.Resolve(l), l, size)
		g := glyph(m.state.Index(l.ID))
		c0, c1 := cellSpan(rect.X, rect.W, cellW, canvasCols)
		r0, r1 := cellSpan(rect.Y, rect.H, cellH, canvasRows)
		for r := r0; r < r1; r++ {
			for c := c0; c < c1; c++ {
				grid[r][c] = g
			}
		}
	}

	lines := make([]string, canvasRows)
	for r, row := range grid {
		lines[r] = string(row)
	}
	return strings.Join(lines, "\n")
}

// cellSpan maps a pixel extent to the half-open range of cells it covers.
// A non-empty extent covers at least one cell.
func cellSpan(pos, extent, cell float64, cells int) (int, int) {
	start := int(math.Floor(pos / cell))
	end := int(math.Ceil((pos + extent) / cell))
	if extent > 0 && end <= start {
		end = start + 1
	}
	return min(max(start, 0), cells), min(max(end, 0), cells)
}

// glyph labels the layer at list index i.
func glyph(i int) rune {
	const labels = "123456789abcdefghijklmnopqrstuvwxyz"
	if i < 0 || i >= len(labels) {
		return '#'
	}
	return rune(labels[i])
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
