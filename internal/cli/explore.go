package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	huherrors "github.com/PeterMaltzoff/huh/pkg/errors"
	"github.com/PeterMaltzoff/huh/pkg/graph"
	"github.com/PeterMaltzoff/huh/pkg/layout"
	"github.com/PeterMaltzoff/huh/pkg/session"
)

// exploreCommand creates the explore command.
func (c *CLI) exploreCommand() *cobra.Command {
	var (
		text   string
		remote string
	)

	cmd := &cobra.Command{
		Use:   "explore [file]",
		Short: "Explore a graph in the terminal",
		Long: `Explore a JSON document, a saved response or a fresh explanation one
level at a time.

Keys:
  ↑/↓ or k/j   select a node
  enter        make the selected node the root
  u            go up to the parent of the root
  l            cycle the layout kind
  t            toggle between the JSON and raw-text views
  c            clear the graph
  q            quit`,
		Example: `  huh explore doc.json
  huh explore --text "What is a monad?"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			if len(args) == 0 && text == "" {
				return fmt.Errorf("give a file or --text")
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			store, err := newCache(ctx, cfg)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer store.Close()

			pub, err := newPublisher(cfg)
			if err != nil {
				return fmt.Errorf("connect events: %w", err)
			}
			defer pub.Close()

			// The TUI owns the terminal; keep log lines out of it.
			quiet := newLogger(io.Discard, logger.GetLevel())

			ing, err := newIngestor(cfg, store, pub, quiet, remote)
			if err != nil {
				return err
			}
			ctrl := newController(cfg, newAdapter(cfg, store, quiet), pub, quiet, "explore")
			sess := session.New("explore", ing, ctrl,
				session.WithGraphOptions(graphOptions(cfg, quiet)...),
				session.WithLogger(quiet))

			var start tea.Cmd
			if text != "" {
				start = submitCmd(ctx, sess, text)
			} else {
				resp, err := loadResponse(args[0])
				if err != nil {
					return err
				}
				if err := sess.LoadResponse(ctx, resp); err != nil {
					return err
				}
			}

			m := newExploreModel(ctx, sess, start)
			defer m.unsubscribe()
			_, err = tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run()
			return err
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "ask the model to explain this text first")
	cmd.Flags().StringVar(&remote, "remote", "", "ask another huh server at this URL instead of Ollama")

	return cmd
}

// =============================================================================
// exploreModel - Interactive graph navigation
// =============================================================================

// Explore styles
var (
	exploreRootStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	exploreCursorStyle = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
	exploreLeafStyle   = lipgloss.NewStyle().Foreground(colorGray)
	exploreErrorStyle  = lipgloss.NewStyle().Foreground(colorRed)
)

// viewMsg carries a view pushed by the session.
type viewMsg session.View

// opMsg reports the outcome of a user operation.
type opMsg struct {
	status string
	err    error
}

type exploreModel struct {
	ctx     context.Context
	sess    *session.Session
	updates <-chan session.View
	start   tea.Cmd

	unsubscribe func()

	view   session.View
	cursor int
	status string
	err    error
	width  int
}

func newExploreModel(ctx context.Context, sess *session.Session, start tea.Cmd) exploreModel {
	updates, unsubscribe := sess.Subscribe()
	return exploreModel{
		ctx:         ctx,
		sess:        sess,
		updates:     updates,
		start:       start,
		unsubscribe: unsubscribe,
		view:        sess.View(),
		width:       80,
	}
}

func (m exploreModel) Init() tea.Cmd {
	return tea.Batch(m.start, waitForView(m.updates))
}

func waitForView(ch <-chan session.View) tea.Cmd {
	return func() tea.Msg {
		v, ok := <-ch
		if !ok {
			return nil
		}
		return viewMsg(v)
	}
}

func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case viewMsg:
		m.setView(session.View(msg))
		return m, waitForView(m.updates)
	case opMsg:
		m.status, m.err = msg.status, msg.err
		m.setView(m.sess.View())
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m exploreModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	nodes := m.view.View.Nodes
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(nodes)-1 {
			m.cursor++
		}
	case "enter":
		if m.cursor < len(nodes) {
			return m, promoteCmd(m.ctx, m.sess, nodes[m.cursor].ID)
		}
	case "u":
		if parent, ok := parentOf(m.sess.Graph(), m.view.RootID); ok {
			return m, promoteCmd(m.ctx, m.sess, parent)
		}
		m.status = "Already at the top"
	case "l":
		return m, layoutCmd(m.ctx, m.sess, m.view.Layout.Next())
	case "t":
		return m, toggleCmd(m.ctx, m.sess)
	case "c":
		return m, clearCmd(m.ctx, m.sess)
	}
	return m, nil
}

func (m *exploreModel) setView(v session.View) {
	if v.RootID != m.view.RootID {
		m.cursor = 0
	}
	m.view = v
	if m.cursor >= len(v.View.Nodes) {
		m.cursor = max(len(v.View.Nodes)-1, 0)
	}
}

func (m exploreModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("huh"))
	b.WriteString("  ")
	b.WriteString(StyleDim.Render(fmt.Sprintf("%s view · %s layout", m.view.Mode, m.view.Layout)))
	switch {
	case m.view.Submitting:
		b.WriteString("  " + StyleWarning.Render("asking…"))
	case m.view.Busy:
		b.WriteString("  " + StyleWarning.Render("laying out…"))
	}
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ select  ⏎ expand  u up  l layout  t raw/json  c clear  q quit"))
	b.WriteString("\n\n")

	if m.view.View.IsEmpty() {
		b.WriteString(StyleDim.Render("  nothing to show"))
		b.WriteString("\n")
	}

	limit := max(m.width-24, 20)
	for i, n := range m.view.View.Nodes {
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		indent := "  "
		if n.IsRoot {
			indent = ""
		}
		marker := " "
		if n.HasChildren && !n.IsRoot {
			marker = "+"
		}
		label := cursor + indent + marker + " " + clip(n.Label, limit)

		switch {
		case i == m.cursor:
			label = exploreCursorStyle.Render(label)
		case n.IsRoot:
			label = exploreRootStyle.Render(label)
		case !n.HasChildren:
			label = exploreLeafStyle.Render(label)
		}
		b.WriteString(label)
		b.WriteString("  ")
		b.WriteString(StyleNumber.Render(fmt.Sprintf("(%.0f, %.0f)", n.Position.X, n.Position.Y)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.view.LayoutError != "" {
		b.WriteString(exploreErrorStyle.Render("layout failed: " + m.view.LayoutError))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(exploreErrorStyle.Render(huherrors.UserMessage(m.err)))
		b.WriteString("\n")
	} else if m.status != "" {
		b.WriteString(StyleHighlight.Render(m.status))
		b.WriteString("\n")
	}
	return b.String()
}

// =============================================================================
// Commands
// =============================================================================

func submitCmd(ctx context.Context, sess *session.Session, text string) tea.Cmd {
	return func() tea.Msg {
		resp, err := sess.Submit(ctx, text)
		if err != nil {
			return opMsg{err: err}
		}
		if !resp.IsValidJSON {
			return opMsg{status: "The model did not return valid JSON; showing raw text"}
		}
		return opMsg{status: "Explained"}
	}
}

func promoteCmd(ctx context.Context, sess *session.Session, id string) tea.Cmd {
	return func() tea.Msg {
		ok, err := sess.Promote(ctx, id)
		if err != nil {
			return opMsg{err: err}
		}
		if !ok {
			return opMsg{status: "Nothing to expand"}
		}
		return opMsg{}
	}
}

func layoutCmd(ctx context.Context, sess *session.Session, kind layout.Kind) tea.Cmd {
	return func() tea.Msg {
		if err := sess.SetLayout(ctx, kind); err != nil {
			return opMsg{err: err}
		}
		return opMsg{status: "Layout: " + string(kind)}
	}
}

func toggleCmd(ctx context.Context, sess *session.Session) tea.Cmd {
	return func() tea.Msg {
		mode, err := sess.Toggle(ctx)
		if err != nil {
			return opMsg{err: err}
		}
		return opMsg{status: "Showing " + string(mode) + " view"}
	}
}

func clearCmd(ctx context.Context, sess *session.Session) tea.Cmd {
	return func() tea.Msg {
		if err := sess.Clear(ctx); err != nil {
			return opMsg{err: err}
		}
		return opMsg{status: "Cleared"}
	}
}

// =============================================================================
// Helpers
// =============================================================================

// parentOf returns the source of the edge pointing at id.
func parentOf(g *graph.Graph, id string) (string, bool) {
	if g == nil {
		return "", false
	}
	for _, e := range g.Edges() {
		if e.Target == id {
			return e.Source, true
		}
	}
	return "", false
}

func clip(s string, limit int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}
