package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"findmark/internal/find"
	"findmark/internal/session"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	headerHeight = 1
	footerHeight = 1
	wheelStep    = 3
)

type editorDoneMsg struct {
	err error
}

type model struct {
	app  *app
	sess *session.Session

	width  int
	height int

	input     textinput.Model
	searching bool

	status string
	errMsg string
}

func newModel(a *app) model {
	input := textinput.New()
	input.Prompt = "find> "
	input.CharLimit = 256
	input.Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(appTheme.Accent))

	sess := session.New(a.doc,
		session.WithMarkers(a.markers),
		session.WithTabMode(a.tabs),
		session.WithLogger(a.logger),
	)
	return model{
		app:   a,
		sess:  sess,
		input: input,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(16, m.width-24)
		m.app.doc.Resize(m.bodyHeight())
		m.syncSearch()
		return m, nil

	case tea.BlurMsg:
		if m.searching {
			m.sess.Blur()
			m.syncSearch()
		}
		return m, nil

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress {
			return m, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.app.doc.ScrollBy(-wheelStep)
		case tea.MouseButtonWheelDown:
			m.app.doc.ScrollBy(wheelStep)
		}
		return m, nil

	case editorDoneMsg:
		if msg.err != nil {
			m.status = "editor failed: " + msg.err.Error()
			return m, nil
		}
		if err := m.app.reload(); err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.syncSearch()
		m.status = "reloaded"
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateBrowse(msg)
	}

	return m, nil
}

// scroll handles the keys that move the viewport in either mode.
func (m *model) scroll(key string) bool {
	doc := m.app.doc
	page := max(1, m.bodyHeight()-1)
	switch key {
	case "up":
		doc.ScrollBy(-1)
	case "down":
		doc.ScrollBy(1)
	case "pgup":
		doc.ScrollBy(-page)
	case "pgdown":
		doc.ScrollBy(page)
	case "home":
		doc.ScrollTo(0)
	case "end":
		doc.ScrollTo(doc.Len())
	default:
		return false
	}
	return true
}

func (m model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "enter":
		m.sess.HandleKey(session.KeyEnter)
		m.syncSearch()
		return m, nil
	case "esc":
		m.sess.HandleKey(session.KeyEscape)
		m.syncSearch()
		return m, nil
	}
	if m.scroll(msg.String()) {
		return m, nil
	}

	prev := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if next := m.input.Value(); next != prev {
		m.applyQuery(next)
	}
	return m, cmd
}

func (m *model) applyQuery(query string) {
	m.errMsg = ""
	err := m.sess.ApplyHighlights(query)
	switch {
	case errors.Is(err, find.ErrInvalidPattern):
		m.errMsg = "invalid pattern"
	case err != nil:
		m.errMsg = err.Error()
	}
}

func (m model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "/", "ctrl+f":
		m.sess.Start()
		m.searching = true
		m.status = ""
		m.errMsg = ""
		m.input.SetValue("")
		cmd := m.input.Focus()
		return m, cmd
	case "k":
		key = "up"
	case "j":
		key = "down"
	case "e":
		return m, m.openEditor()
	case "r":
		if err := m.app.reload(); err != nil {
			m.status = err.Error()
		} else {
			m.status = "reloaded"
		}
		return m, nil
	}
	m.scroll(key)
	return m, nil
}

// openEditor opens the file at the top visible line. Terminal editors take
// over the screen; the document is reloaded when they exit.
func (m *model) openEditor() tea.Cmd {
	line := m.app.doc.First() + 1
	cmd, inTerminal, err := editorCommand(m.app.path, line, 1, m.app.cfg.EditorCmd)
	if err != nil {
		m.status = "open failed: " + err.Error()
		return nil
	}
	if inTerminal {
		return tea.ExecProcess(cmd, func(err error) tea.Msg { return editorDoneMsg{err: err} })
	}
	if err := cmd.Start(); err != nil {
		m.status = "open failed: " + err.Error()
		return nil
	}
	m.status = fmt.Sprintf("opened %s:%d", filepath.Base(m.app.path), line)
	return nil
}

// syncSearch follows the session back to idle when it closed itself, on a
// key, a blur or a document change.
func (m *model) syncSearch() {
	if m.searching && m.sess.State() == session.Idle {
		m.searching = false
		m.errMsg = ""
		m.input.Blur()
		m.input.SetValue("")
	}
}

func (m model) bodyHeight() int {
	return max(m.height-headerHeight-footerHeight, 1)
}
