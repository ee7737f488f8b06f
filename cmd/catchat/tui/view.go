package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"catchat/internal/catapi"
	"catchat/internal/chat"
)

// View implements tea.Model.
func (m Model) View() string {
	if m.view == loginView {
		return m.loginScreen()
	}
	return m.mainScreen()
}

func (m Model) loginScreen() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("catchat — Cheshire Cat"))
	b.WriteString("\n\n")
	b.WriteString("Login\n\n")
	b.WriteString(m.username.View())
	b.WriteString("\n")
	b.WriteString(m.password.View())
	b.WriteString("\n\n")
	if m.busy {
		b.WriteString(m.spin.View() + " signing in...\n")
	}
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter: login · tab: switch field · ctrl+c: quit"))
	return b.String()
}

func (m Model) mainScreen() string {
	sidebar := sidebarStyle.Render(m.chatListPane())
	main := m.chatPane()
	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " ", main)

	var b strings.Builder
	b.WriteString(titleStyle.Render("catchat"))
	if m.busy {
		b.WriteString("  " + m.spin.View())
	}
	b.WriteString("\n")
	b.WriteString(body)
	b.WriteString("\n")

	if m.prompt != promptNone {
		kind := "Create chat"
		if m.prompt == promptRename {
			kind = "Rename chat"
		}
		b.WriteString(promptStyle.Render(kind+": "+m.promptInput.View()) + "\n")
	}

	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(
		"tab: focus · enter: select/send · ctrl+n: new · ctrl+r: rename · ctrl+d: delete · ctrl+l: refresh · ctrl+q: logout"))
	return b.String()
}

func (m Model) chatListPane() string {
	var b strings.Builder
	b.WriteString("Chats\n\n")
	if len(m.chats) == 0 {
		b.WriteString(labelStyle.Render("(none)"))
		b.WriteString("\n")
	}
	for i, c := range m.chats {
		line := c.Name
		switch {
		case i == m.cursor && m.focus == focusChats:
			line = chatCursorStyle.Render("> " + line)
		case c.ID == m.selectedID:
			line = chatSelectedStyle.Render(line)
		default:
			line = chatItemStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) chatPane() string {
	var b strings.Builder
	if m.label != "" {
		b.WriteString(labelStyle.Render(m.label))
	}
	b.WriteString("\n")
	if m.ready {
		b.WriteString(m.viewport.View())
		b.WriteString("\n")
	}
	b.WriteString(m.input.View())
	return b.String()
}

// refreshViewport re-renders the history into the viewport and scrolls to
// the newest turn.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
}

// renderHistory formats the turn list. Assistant turns go through the
// markdown renderer; user turns are shown verbatim.
func (m Model) renderHistory() string {
	if len(m.history) == 0 {
		return labelStyle.Render("No messages yet.")
	}

	var b strings.Builder
	for _, t := range m.history {
		if t.Role == catapi.RoleUser {
			b.WriteString(userTurnStyle.Render("You: "))
			b.WriteString(t.Content)
			b.WriteString("\n")
			continue
		}
		rendered := t.Content
		if m.renderer != nil {
			if out, err := m.renderer.Render(t.Content); err == nil {
				rendered = strings.TrimRight(out, "\n")
			}
		}
		b.WriteString(fmt.Sprintf("Cat:%s\n", rendered))
	}
	return b.String()
}

// statusLine shows the notices from the last operation.
func (m Model) statusLine() string {
	if len(m.notices) == 0 {
		return ""
	}
	parts := make([]string, 0, len(m.notices))
	for _, n := range m.notices {
		switch n.Level {
		case chat.NoticeWarn:
			parts = append(parts, warnStyle.Render(n.Text))
		case chat.NoticeSuccess:
			parts = append(parts, successStyle.Render(n.Text))
		default:
			parts = append(parts, infoStyle.Render(n.Text))
		}
	}
	return strings.Join(parts, "  ")
}
