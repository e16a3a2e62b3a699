package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/metricflow/pkg/canvas"
	"github.com/matzehuels/metricflow/pkg/canvas/svg"
	"github.com/matzehuels/metricflow/pkg/geom"
	"github.com/matzehuels/metricflow/pkg/spec"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

const defaultNudge = 10.0

type exploreOpts struct {
	inputFlags
	output string
	step   float64
}

func (c *CLI) exploreCommand() *cobra.Command {
	opts := exploreOpts{step: defaultNudge}

	cmd := &cobra.Command{
		Use:   "explore SPEC",
		Short: "Move nodes around in the terminal",
		Long: `Explore lays out a spec file and lists its nodes in a terminal table.
Select a node with tab or j/k and nudge it with the arrow keys; connectors are
re-routed as it moves. Press p to pan the whole canvas instead, r to redraw
every connector and s to save the SVG.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			return runExplore(cmd.Context(), cfg, args[0], opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "file written by s (default: SPEC with .svg)")
	cmd.Flags().Float64Var(&opts.step, "step", opts.step, "nudge distance in pixels")
	return cmd
}

func runExplore(ctx context.Context, cfg spec.Config, input string, opts exploreOpts) error {
	doc, err := loadDocument(input, opts.inputFlags)
	if err != nil {
		return err
	}
	c, surf, err := buildCanvas(cfg, doc, opts.inputFlags, loggerFromContext(ctx))
	if err != nil {
		return err
	}
	if !c.Options().DragEnabled {
		printWarning("Dragging is disabled for this canvas; nodes cannot be moved")
	}

	m := newExploreModel(c, surf, outputPath(opts.output, input, "svg"), opts.step)
	final, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(exploreModel); ok && fm.saved != "" {
		printSuccess("Saved canvas")
		printFile(fm.saved)
	}
	return nil
}

// =============================================================================
// exploreModel - Interactive node nudging
// =============================================================================

// exploreModel drives a canvas through its Controller with synthesized
// pointer events, the same way the live server does with browser events.
type exploreModel struct {
	canvas  *canvas.Canvas
	surface *svg.Surface
	ids     []string
	cursor  int
	pan     bool
	step    float64
	output  string
	saved   string
	status  string
}

func newExploreModel(c *canvas.Canvas, s *svg.Surface, output string, step float64) exploreModel {
	m := exploreModel{canvas: c, surface: s, step: step, output: output}
	for _, n := range c.Nodes() {
		m.ids = append(m.ids, n.ID)
	}
	s.Flush()
	return m
}

func (m exploreModel) Init() tea.Cmd {
	return nil
}

func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "tab", "j":
		if len(m.ids) > 0 {
			m.cursor = (m.cursor + 1) % len(m.ids)
		}
	case "shift+tab", "k":
		if len(m.ids) > 0 {
			m.cursor = (m.cursor + len(m.ids) - 1) % len(m.ids)
		}
	case "p":
		m.pan = !m.pan
		m.status = "mode: " + m.mode()
	case "up":
		m.nudge(geom.Point{Y: -m.step})
	case "down":
		m.nudge(geom.Point{Y: m.step})
	case "left", "h":
		m.nudge(geom.Point{X: -m.step})
	case "right", "l":
		m.nudge(geom.Point{X: m.step})
	case "r":
		n := m.canvas.RedrawConnectors()
		m.status = fmt.Sprintf("redrew %d connectors (%d patches)", n, len(m.surface.Flush()))
	case "s":
		if err := writeOutput(m.output, m.surface.Bytes()); err != nil {
			m.status = "save failed: " + err.Error()
		} else {
			m.saved = m.output
			m.status = "saved " + m.output
		}
	}
	return m, nil
}

// nudge drags the selected node, or the canvas in pan mode, by d.
func (m *exploreModel) nudge(d geom.Point) {
	target, from := "", geom.Point{}
	if !m.pan {
		n, ok := m.selected()
		if !ok {
			return
		}
		r := n.Rect()
		target, from = n.ID, geom.Point{X: r.CenterX(), Y: r.CenterY()}
	}
	to := from.Add(d)

	ctrl := m.canvas.Controller()
	ctrl.Handle(canvas.Event{Type: canvas.GestureMouseDown, Target: target, X: from.X, Y: from.Y})
	rerouted := ctrl.Handle(canvas.Event{Type: canvas.GestureMouseMove, Target: target, X: to.X, Y: to.Y})
	ctrl.Handle(canvas.Event{Type: canvas.GestureMouseUp, Target: target, X: to.X, Y: to.Y})

	m.status = fmt.Sprintf("%s: rerouted %d connectors (%d patches)", m.mode(), rerouted, len(m.surface.Flush()))
}

func (m exploreModel) selected() (*canvas.Node, bool) {
	if len(m.ids) == 0 {
		return nil, false
	}
	return m.canvas.Node(m.ids[m.cursor])
}

func (m exploreModel) mode() string {
	if m.pan {
		return "pan"
	}
	return "node"
}

func (m exploreModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Explore Canvas"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("tab/j/k select  ←↑↓→ move  p pan  r redraw  s save  q quit"))
	b.WriteString("\n\n")

	rows := make([][]string, 0, len(m.ids))
	for i, id := range m.ids {
		n, ok := m.canvas.Node(id)
		if !ok {
			continue
		}
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor, n.ID, string(n.Kind),
			fmt.Sprintf("%.0f", n.Pos.X), fmt.Sprintf("%.0f", n.Pos.Y),
			fmt.Sprintf("%.0f×%.0f", n.Size.W, n.Size.H),
			fmt.Sprintf("%d", n.Degree()),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Node", "Kind", "X", "Y", "Size", "Links").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case row == m.cursor && !m.pan:
				return listSelectedStyle
			case col >= 3:
				return listDimStyle
			}
			return listNormalStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render("  " + statsLine(m.canvas.Len(), len(m.canvas.Connectors()), string(m.canvas.Options().Flow))))
	if m.status != "" {
		b.WriteString("\n  " + m.status)
	}
	return b.String()
}
