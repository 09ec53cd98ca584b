package tuicmder

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/muesli/termenv"

	"github.com/parleylabs/parley/cmd/parley/bootstrap"
	"github.com/parleylabs/parley/pkg/chat"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	userStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	botStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// streamChunkMsg is one text fragment of the in-flight reply.
type streamChunkMsg string

// streamDoneMsg signals that the reply stream has closed.
type streamDoneMsg struct{}

// chatModel is the full-screen chat interface: a transcript viewport over a
// textarea, with a spinner while a reply is streaming.
type chatModel struct {
	app *bootstrap.App

	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	sessionID string
	style     chat.ResponseStyle
	blocks    []string
	partial   string
	stream    <-chan string
	waiting   bool
	ready     bool
	width     int
}

func newChatModel(app *bootstrap.App, style chat.ResponseStyle) chatModel {
	ta := textarea.New()
	ta.Placeholder = "Send a message..."
	ta.Prompt = "┃ "
	ta.SetHeight(2)
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return chatModel{
		app:       app,
		textarea:  ta,
		spinner:   sp,
		sessionID: "tui_" + uuid.NewString()[:8],
		style:     style,
		blocks:    []string{statusStyle.Render(app.Settings.UI.AppMessage)},
	}
}

func (m chatModel) Init() tea.Cmd {
	return textarea.Blink
}

// waitForChunk reads the next stream fragment as a tea message.
func waitForChunk(ch <-chan string) tea.Cmd {
	return func() tea.Msg {
		text, ok := <-ch
		if !ok {
			return streamDoneMsg{}
		}
		return streamChunkMsg(text)
	}
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		headerHeight := 1
		footerHeight := m.textarea.Height() + 1
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - headerHeight - footerHeight
		}
		m.textarea.SetWidth(msg.Width - 2)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyCtrlR:
			m.style = nextStyle(m.style)
			return m, nil
		case tea.KeyEnter:
			return m.submit()
		}

	case streamChunkMsg:
		m.partial += string(msg)
		m.refresh()
		return m, waitForChunk(m.stream)

	case streamDoneMsg:
		label := botStyle.Render(m.app.Settings.Chatbot.Name)
		m.blocks = append(m.blocks, label+"\n"+m.renderMarkdown(m.partial))
		m.partial = ""
		m.stream = nil
		m.waiting = false
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var taCmd, vpCmd tea.Cmd
	m.textarea, taCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(taCmd, vpCmd)
}

// submit starts streaming a reply for the typed message.
func (m chatModel) submit() (tea.Model, tea.Cmd) {
	if m.waiting {
		return m, nil
	}
	input := strings.TrimSpace(m.textarea.Value())
	if input == "" {
		return m, nil
	}

	m.textarea.Reset()
	m.blocks = append(m.blocks, userStyle.Render("You")+"\n"+input)
	m.partial = ""
	m.waiting = true
	m.stream = m.app.Service.RespondStream(context.Background(), chat.ChatRequest{
		UserInput:     input,
		ResponseStyle: m.style,
		SessionID:     m.sessionID,
	})
	m.refresh()

	return m, tea.Batch(m.spinner.Tick, waitForChunk(m.stream))
}

// refresh rebuilds the viewport content from the transcript.
func (m *chatModel) refresh() {
	if !m.ready {
		return
	}

	var view strings.Builder
	for _, block := range m.blocks {
		view.WriteString(block)
		view.WriteString("\n\n")
	}
	if m.waiting {
		view.WriteString(botStyle.Render(m.app.Settings.Chatbot.Name))
		view.WriteString("\n")
		view.WriteString(m.partial)
	}

	m.viewport.SetContent(view.String())
	m.viewport.GotoBottom()
}

// renderMarkdown renders a completed reply, falling back to the raw text
// when rendering fails.
func (m *chatModel) renderMarkdown(text string) string {
	width := m.width - 2
	if width < 20 {
		width = 78
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(glamourStyle()),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return text
	}

	out, err := renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimSpace(out)
}

// glamourStyle picks a markdown style for the terminal background.
func glamourStyle() string {
	if termenv.HasDarkBackground() {
		return "dark"
	}
	return "light"
}

func nextStyle(s chat.ResponseStyle) chat.ResponseStyle {
	switch s {
	case chat.StyleStandard:
		return chat.StyleCreative
	case chat.StyleCreative:
		return chat.StyleFactual
	default:
		return chat.StyleStandard
	}
}

func (m chatModel) View() string {
	if !m.ready {
		return "Loading..."
	}

	status := statusStyle.Render(fmt.Sprintf(
		"style: %s  model: %s  ctrl+r: cycle style  esc: quit",
		m.style, m.app.Settings.ModelName(),
	))
	if m.waiting {
		status = m.spinner.View() + " " + status
	}

	return fmt.Sprintf("%s\n%s\n%s\n%s",
		titleStyle.Render(m.app.Settings.UI.AppTitle),
		m.viewport.View(),
		m.textarea.View(),
		status,
	)
}
