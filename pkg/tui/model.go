// Package tui renders the chat session in the terminal. It is a plain
// subscriber of the client's session store: every state change arrives as an
// immutable snapshot, and all commands go back through the client API.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/rosettacloud/shellchat/pkg/client"
	"github.com/rosettacloud/shellchat/pkg/session"
)

type snapshotMsg session.Snapshot

// Model is the bubbletea model for one chat session.
type Model struct {
	client *client.Client
	snaps  <-chan session.Snapshot

	snap   session.Snapshot
	input  textarea.Model
	vp     viewport.Model
	spin   spinner.Model
	md     *glamour.TermRenderer
	width  int
	height int
	ready  bool
}

func New(c *client.Client, snaps <-chan session.Snapshot) Model {
	input := textarea.New()
	input.Placeholder = "Ask about shell scripting..."
	input.Prompt = "> "
	input.SetHeight(3)
	input.CharLimit = 4000
	input.ShowLineNumbers = false
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	md, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)

	return Model{
		client: c,
		snaps:  snaps,
		input:  input,
		spin:   spin,
		md:     md,
	}
}

func waitForSnapshot(ch <-chan session.Snapshot) tea.Cmd {
	return func() tea.Msg {
		sn, ok := <-ch
		if !ok {
			return tea.Quit()
		}
		return snapshotMsg(sn)
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spin.Tick, waitForSnapshot(m.snaps))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		logHeight := msg.Height - m.input.Height() - 3
		if logHeight < 1 {
			logHeight = 1
		}
		if !m.ready {
			m.vp = viewport.New(msg.Width, logHeight)
			m.ready = true
		} else {
			m.vp.Width = msg.Width
			m.vp.Height = logHeight
		}
		m.input.SetWidth(msg.Width - 2)
		m.refresh()
		return m, nil

	case snapshotMsg:
		m.snap = session.Snapshot(msg)
		m.refresh()
		return m, waitForSnapshot(m.snaps)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "ctrl+l":
			m.client.ClearChat()
			return m, nil
		case "enter":
			prompt := strings.TrimSpace(m.input.Value())
			if prompt != "" {
				m.client.SendMessage(prompt)
				m.input.Reset()
			}
			return m, nil
		}
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.vp, cmd = m.vp.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.vp.SetContent(m.renderLog())
	m.vp.GotoBottom()
}

func (m Model) renderLog() string {
	var b strings.Builder
	for _, msg := range m.snap.Messages {
		switch msg.Role {
		case session.RoleUser:
			b.WriteString(userStyle.Render("You"))
			b.WriteString("\n")
			b.WriteString(msg.Content)
		case session.RoleAssistant:
			b.WriteString(assistantLabelStyle.Render("Assistant"))
			b.WriteString("\n")
			b.WriteString(m.renderMarkdown(msg.Content))
		case session.RoleError:
			b.WriteString(errorStyle.Render("! " + msg.Content))
		default:
			b.WriteString(systemStyle.Render(msg.Content))
		}
		b.WriteString("\n\n")
	}
	if len(m.snap.Sources) > 0 {
		b.WriteString(sourceStyle.Render("Sources:"))
		b.WriteString("\n")
		for _, src := range m.snap.Sources {
			b.WriteString(sourceStyle.Render(fmt.Sprintf("  - %s (%s)", src.Filename, src.Path)))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) renderMarkdown(content string) string {
	if m.md == nil || strings.TrimSpace(content) == "" {
		return content
	}
	out, err := m.md.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n")
}

func (m Model) statusLine() string {
	var parts []string
	if m.snap.Connected {
		parts = append(parts, statusConnected.Render("● connected"))
	} else {
		parts = append(parts, statusOffline.Render("○ reconnecting..."))
	}
	if m.snap.Loading {
		parts = append(parts, m.spin.View()+"thinking")
	}
	parts = append(parts, footerStyle.Render("enter send · ctrl+l clear · esc quit"))
	return strings.Join(parts, "  ")
}

func (m Model) View() string {
	if !m.ready {
		return "loading..."
	}
	return m.vp.View() + "\n" + m.statusLine() + "\n" + m.input.View()
}
