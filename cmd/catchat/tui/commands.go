package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"catchat/internal/chat"
)

// One message type per operation result. The Update loop applies each
// result's returned values verbatim; nothing else mutates display state.

type loginMsg chat.LoginResult
type logoutMsg chat.LogoutResult
type refreshMsg chat.RefreshResult
type selectMsg chat.SelectResult
type createMsg chat.CreateResult
type deleteMsg chat.DeleteResult
type renameMsg chat.RenameResult
type sendMsg chat.SendResult

func (m Model) loginCmd(username, password string) tea.Cmd {
	return func() tea.Msg {
		return loginMsg(m.ops.Login(context.Background(), username, password))
	}
}

func (m Model) logoutCmd() tea.Cmd {
	return func() tea.Msg {
		return logoutMsg(m.ops.Logout())
	}
}

func (m Model) refreshCmd() tea.Cmd {
	return func() tea.Msg {
		return refreshMsg(m.ops.RefreshChats(context.Background()))
	}
}

func (m Model) selectCmd(id string) tea.Cmd {
	return func() tea.Msg {
		return selectMsg(m.ops.SelectChat(context.Background(), id))
	}
}

func (m Model) createCmd(name string) tea.Cmd {
	return func() tea.Msg {
		return createMsg(m.ops.CreateChat(context.Background(), name))
	}
}

func (m Model) deleteCmd() tea.Cmd {
	return func() tea.Msg {
		return deleteMsg(m.ops.DeleteChat(context.Background()))
	}
}

func (m Model) renameCmd(name string) tea.Cmd {
	return func() tea.Msg {
		return renameMsg(m.ops.RenameChat(context.Background(), name))
	}
}

func (m Model) sendCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return sendMsg(m.ops.SendMessage(context.Background(), text))
	}
}
