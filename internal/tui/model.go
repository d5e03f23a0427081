// Package tui is the terminal chat view: a bubbletea program driving a
// conversation.Conversation.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/futig/saarthi/internal/entity"
	"github.com/futig/saarthi/internal/pkg/formatter"
	"github.com/futig/saarthi/internal/usecase/conversation"
)

const (
	placeholder    = "Ask about startup funding... (Enter to send, /help for commands)"
	exportBaseName = "startupsaarthi-conversation"

	headerHeight = 2
	footerHeight = 5
)

const helpText = "/det toggle deterministic · /lang <code|auto> · /export <md|pdf|docx> [path] · /quit"

// FormatterFactory creates transcript exporters.
type FormatterFactory interface {
	Create(format entity.ResultFormat) (formatter.Formatter, error)
}

type responseMsg struct {
	result *entity.QueryResult
	err    error
}

type noticeMsg string

type errorMsg struct{ err error }

// Model is the bubbletea model of the chat view.
type Model struct {
	ctx        context.Context
	conv       *conversation.Conversation
	formatters FormatterFactory

	textinput textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model
	renderer  *glamour.TermRenderer

	exampleIdx int
	notice     string
	err        error
}

// New creates the chat view for conv. ctx is handed to backend calls.
func New(ctx context.Context, conv *conversation.Conversation, formatters FormatterFactory) Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "› "
	ti.CharLimit = 2000
	ti.Width = 76
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	vp := viewport.New(80, 20)
	vp.KeyMap = scrollKeys()

	m := Model{
		ctx:        ctx,
		conv:       conv,
		formatters: formatters,
		textinput:  ti,
		viewport:   vp,
		spinner:    sp,
	}
	m.refresh()
	return m
}

// Run starts the full screen chat view and blocks until the user quits.
func Run(ctx context.Context, conv *conversation.Conversation, formatters FormatterFactory) error {
	p := tea.NewProgram(New(ctx, conv, formatters), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

// scrollKeys keeps letter keys free for typing.
func scrollKeys() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown: key.NewBinding(key.WithKeys("pgdown")),
		PageUp:   key.NewBinding(key.WithKeys("pgup")),
		Up:       key.NewBinding(key.WithKeys("up")),
		Down:     key.NewBinding(key.WithKeys("down")),
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyEnter:
			if m.conv.InFlight() {
				return m, nil
			}
			return m.handleSubmit()

		case tea.KeyTab:
			if m.conv.Len() == 0 && !m.conv.InFlight() {
				m.fillExample()
				return m, nil
			}
		}

		// Input is disabled while a request is in flight.
		if !m.conv.InFlight() {
			m.textinput, tiCmd = m.textinput.Update(msg)
			m.conv.SetInput(m.textinput.Value())
		}

	case tea.WindowSizeMsg:
		m.resize(msg)

	case spinner.TickMsg:
		if m.conv.InFlight() {
			var spCmd tea.Cmd
			m.spinner, spCmd = m.spinner.Update(msg)
			return m, spCmd
		}
		return m, nil

	case responseMsg:
		if _, ok := m.conv.Complete(msg.result, msg.err); ok {
			m.textinput.Focus()
			m.refresh()
		}

	case noticeMsg:
		m.notice = string(msg)
		m.err = nil

	case errorMsg:
		m.notice = ""
		m.err = msg.err
	}

	m.viewport, vpCmd = m.viewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd)
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("StartupSaarthi"))
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	switch {
	case m.conv.InFlight():
		b.WriteString(m.spinner.View() + " Thinking...")
	case m.err != nil:
		b.WriteString(errorStyle.Render(m.err.Error()))
	case m.notice != "":
		b.WriteString(statusStyle.Render(m.notice))
	}
	b.WriteString("\n")

	b.WriteString(inputStyle.Render(m.textinput.View()))
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(m.statusLine()))

	return b.String()
}

func (m Model) statusLine() string {
	det := "off"
	if m.conv.Deterministic() {
		det = "on"
	}
	lang := m.conv.Language()
	if lang == "" {
		lang = conversation.LanguageAuto
	}
	return fmt.Sprintf("deterministic: %s · language: %s · /help", det, lang)
}

func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.textinput.Value())
	if strings.HasPrefix(input, "/") {
		m.textinput.Reset()
		m.conv.SetInput("")
		return m.handleCommand(input)
	}

	m.conv.SetInput(m.textinput.Value())
	req, err := m.conv.Begin()
	if err != nil {
		// Empty input: nothing to send.
		return m, nil
	}

	m.textinput.Reset()
	m.textinput.Blur()
	m.notice = ""
	m.err = nil
	m.refresh()

	return m, tea.Batch(m.spinner.Tick, m.fetch(req))
}

func (m Model) fetch(req *entity.QueryRequest) tea.Cmd {
	ctx, conv := m.ctx, m.conv
	return func() tea.Msg {
		result, err := conv.Fetch(ctx, req)
		return responseMsg{result: result, err: err}
	}
}

func (m Model) handleCommand(input string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(input)
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	m.notice = ""
	m.err = nil

	switch cmd {
	case "/quit", "/exit":
		return m, tea.Quit

	case "/help":
		m.notice = helpText

	case "/det", "/deterministic":
		if m.conv.ToggleDeterministic() {
			m.notice = "Deterministic mode on: answers are reproducible."
		} else {
			m.notice = "Deterministic mode off."
		}

	case "/lang":
		if len(args) != 1 {
			m.err = errors.New("usage: /lang <en|hi|ta|te|auto>")
			break
		}
		if err := m.conv.SetLanguage(args[0]); err != nil {
			m.err = err
			break
		}
		if lang := m.conv.Language(); lang != "" {
			m.notice = "Answers will be in " + lang + "."
		} else {
			m.notice = "Answer language follows the question."
		}

	case "/export":
		if len(args) < 1 || len(args) > 2 {
			m.err = errors.New("usage: /export <md|pdf|docx> [path]")
			break
		}
		path := ""
		if len(args) == 2 {
			path = args[1]
		}
		return m, m.export(entity.ResultFormat(strings.ToLower(args[0])), path)

	default:
		m.err = fmt.Errorf("unknown command %s (try /help)", cmd)
	}

	return m, nil
}

func (m Model) export(format entity.ResultFormat, path string) tea.Cmd {
	turns := m.conv.Transcript()
	factory := m.formatters
	return func() tea.Msg {
		if len(turns) == 0 {
			return errorMsg{err: errors.New("nothing to export yet")}
		}

		f, err := factory.Create(format)
		if err != nil {
			return errorMsg{err: err}
		}

		data, err := f.Format(turns)
		if err != nil {
			return errorMsg{err: fmt.Errorf("export %s: %w", format, err)}
		}

		if path == "" {
			path = exportBaseName + f.FileExtension()
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return errorMsg{err: fmt.Errorf("write %s: %w", path, err)}
		}
		return noticeMsg("Conversation saved to " + path)
	}
}

func (m *Model) fillExample() {
	q := conversation.ExampleQueries[m.exampleIdx%len(conversation.ExampleQueries)]
	m.exampleIdx++
	m.textinput.SetValue(q)
	m.textinput.CursorEnd()
	m.conv.SetInput(q)
}

func (m *Model) resize(msg tea.WindowSizeMsg) {
	m.viewport.Width = msg.Width
	m.viewport.Height = max(msg.Height-headerHeight-footerHeight, 3)
	m.textinput.Width = max(msg.Width-8, 10)

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(max(msg.Width-4, 20)),
	)
	if err == nil {
		m.renderer = renderer
	}
	m.refresh()
}

func (m *Model) refresh() {
	m.viewport.SetContent(renderTranscript(m.renderer, m.conv.Transcript()))
	m.viewport.GotoBottom()
}
