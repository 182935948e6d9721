package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cardcomposer/pkg/composition"
	"github.com/matzehuels/cardcomposer/pkg/render/layout"
)

var (
	tableHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	tableHiddenStyle = lipgloss.NewStyle().Foreground(colorDim)
	tableBorderStyle = lipgloss.NewStyle().Foreground(colorDim)
)

func (c *CLI) inspectCommand() *cobra.Command {
	var showCSS bool

	cmd := &cobra.Command{
		Use:   "inspect [document.toml]",
		Short: "Show the layers of a card document",
		Long:  `Inspect loads a card document and prints its layers in stacking order. With --css the resolved box and image declarations of every layer follow.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd.Context(), args[0], showCSS, cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&showCSS, "css", false, "print the resolved CSS of every layer")
	return cmd
}

func (c *CLI) runInspect(ctx context.Context, input string, showCSS bool, w io.Writer) error {
	sess, _, err := c.loadSession(ctx, input, false)
	if err != nil {
		return err
	}
	defer sess.Close()

	st := sess.Store.State()
	fmt.Fprintln(w, StyleTitle.Render("Background"))
	fmt.Fprintln(w, backgroundSummary(st.Background))
	fmt.Fprintf(w, "%s %dpx\n\n", StyleDim.Render("container"), st.ContainerWidth)

	if len(st.Layers) == 0 {
		fmt.Fprintln(w, StyleDim.Render("no layers"))
		return nil
	}
	fmt.Fprintln(w, StyleTitle.Render("Layers"))
	fmt.Fprintln(w, layerTable(st))

	if showCSS {
		for _, l := range st.StackOrder() {
			fmt.Fprintln(w)
			fmt.Fprint(w, layerCSS(l))
		}
	}
	return nil
}

func backgroundSummary(bg composition.Background) string {
	switch bg.Type {
	case composition.BackgroundGradient:
		return bg.Gradient()
	case composition.BackgroundImage:
		name := bg.Image.Filename
		if name == "" {
			name = "(none)"
		}
		return fmt.Sprintf("image %s, %s", name, bg.Sizing)
	default:
		return bg.Color
	}
}

// layerTable lists the layers from top to bottom of the stack.
func layerTable(st composition.State) string {
	order := st.StackOrder()
	rows := make([][]string, 0, len(order))
	hidden := make([]bool, 0, len(order))
	for i := len(order) - 1; i >= 0; i-- {
		l := order[i]
		rows = append(rows, []string{
			l.ID,
			l.Image.Filename,
			string(l.XAlign) + "/" + string(l.YAlign),
			fmt.Sprintf("%d,%d", l.XPosition, l.YPosition),
			l.Width.String() + " × " + l.Height.String(),
			strconv.FormatFloat(l.Scale, 'g', -1, 64),
			strconv.Itoa(l.ZIndex),
			strconv.Itoa(l.AnimSpeed),
			visibleMark(l.Visible),
		})
		hidden = append(hidden, !l.Visible)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(tableBorderStyle).
		Headers("ID", "Image", "Align", "Offset", "Size", "Scale", "Z", "Speed", "Visible").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return tableHeaderStyle
			case row >= 0 && row < len(hidden) && hidden[row]:
				return tableHiddenStyle
			}
			return lipgloss.NewStyle()
		})
	return t.Render()
}

func visibleMark(v bool) string {
	if v {
		return iconSuccess
	}
	return "—"
}

// layerCSS prints the resolved declarations of one layer.
func layerCSS(l composition.Layer) string {
	d := layout.Resolve(l)
	var b strings.Builder
	b.WriteString(StyleHighlight.Render(l.ID) + "\n")
	b.WriteString(StyleDim.Render("  box") + "\n")
	b.WriteString(d.Box().CSS("    ") + "\n")
	b.WriteString(StyleDim.Render("  image") + "\n")
	b.WriteString(d.Image().CSS("    ") + "\n")
	return b.String()
}
