package demo

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nxpg/pgproto/pgproto"
)

// Frame is one decoded backend message pulled out of a capture, paired
// with the raw bytes it came from so the detail view can show both.
type Frame struct {
	Raw     []byte
	Message pgproto.BackendMessage
}

// DecodeFrames walks data with pgproto.Parse until it is exhausted,
// collecting every complete message found. It returns an error if a
// prefix of data is structurally invalid, or if a trailing partial
// message never completes.
func DecodeFrames(data []byte) ([]Frame, error) {
	var frames []Frame
	pos := 0
	for pos < len(data) {
		outcome, err := pgproto.Parse(data[pos:])
		if err != nil {
			return nil, fmt.Errorf("decoding frame at offset %d: %w", pos, err)
		}
		if !outcome.Complete() {
			if outcome.NeedAtLeast == 0 {
				return nil, fmt.Errorf("truncated message at offset %d: only %d header bytes", pos, len(data)-pos)
			}
			return nil, fmt.Errorf("truncated message at offset %d: need %d more bytes", pos, outcome.NeedAtLeast-(len(data)-pos))
		}
		frames = append(frames, Frame{
			Raw:     data[pos : pos+outcome.Consumed],
			Message: outcome.Message,
		})
		pos += outcome.Consumed
	}
	return frames, nil
}

// frameTag returns the short mnemonic rift-style tools print for a
// message kind, used as the list-view summary.
func frameTag(msg pgproto.BackendMessage) string {
	switch msg.(type) {
	case pgproto.ParseComplete:
		return "ParseComplete"
	case pgproto.BindComplete:
		return "BindComplete"
	case pgproto.CloseComplete:
		return "CloseComplete"
	case pgproto.CopyDoneBackend:
		return "CopyDone"
	case pgproto.NoData:
		return "NoData"
	case pgproto.EmptyQueryResponse:
		return "EmptyQueryResponse"
	case pgproto.PortalSuspended:
		return "PortalSuspended"
	case pgproto.BackendKeyData:
		return "BackendKeyData"
	case pgproto.NotificationResponse:
		return "NotificationResponse"
	case pgproto.ParameterStatus:
		return "ParameterStatus"
	case pgproto.CommandComplete:
		return "CommandComplete"
	case pgproto.CopyData:
		return "CopyData"
	case pgproto.DataRow:
		return "DataRow"
	case pgproto.CopyInResponse:
		return "CopyInResponse"
	case pgproto.CopyOutResponse:
		return "CopyOutResponse"
	case pgproto.RowDescription:
		return "RowDescription"
	case pgproto.ParameterDescription:
		return "ParameterDescription"
	case pgproto.ErrorResponse:
		return "ErrorResponse"
	case pgproto.NoticeResponse:
		return "NoticeResponse"
	case pgproto.ReadyForQuery:
		return "ReadyForQuery"
	default:
		return fmt.Sprintf("%T", msg)
	}
}

// frameDetail renders one message's fields as "Key: value" lines for
// the detail pane.
func frameDetail(msg pgproto.BackendMessage) []string {
	var lines []string
	switch m := msg.(type) {
	case pgproto.BackendKeyData:
		lines = append(lines, fmt.Sprintf("ProcessID: %d", m.ProcessID), fmt.Sprintf("SecretKey: %d", m.SecretKey))
	case pgproto.NotificationResponse:
		lines = append(lines, fmt.Sprintf("ProcessID: %d", m.ProcessID), "Channel: "+m.Channel, "Payload: "+m.Payload)
	case pgproto.ParameterStatus:
		lines = append(lines, m.Name+" = "+m.Value)
	case pgproto.CommandComplete:
		lines = append(lines, "Tag: "+m.Tag)
	case pgproto.CopyData:
		lines = append(lines, fmt.Sprintf("%d bytes", len(m.Data)))
	case pgproto.DataRow:
		values := m.Values()
		i := 0
		for values.Next() {
			data, null := values.Value()
			if null.IsNull() {
				lines = append(lines, fmt.Sprintf("[%d] NULL", i))
			} else {
				lines = append(lines, fmt.Sprintf("[%d] %q", i, data))
			}
			i++
		}
		if values.Err() != nil {
			lines = append(lines, "error: "+values.Err().Error())
		}
	case pgproto.RowDescription:
		fields := m.Fields()
		for fields.Next() {
			fd := fields.Value()
			lines = append(lines, fmt.Sprintf("%s  oid=%d size=%d", fd.Name, fd.TypeOID, fd.TypeSize))
		}
		if fields.Err() != nil {
			lines = append(lines, "error: "+fields.Err().Error())
		}
	case pgproto.ParameterDescription:
		oids := m.OIDs()
		for oids.Next() {
			lines = append(lines, fmt.Sprintf("oid=%d", oids.Value()))
		}
	case pgproto.ErrorResponse:
		fields := m.Fields()
		for fields.Next() {
			f := fields.Value()
			lines = append(lines, fmt.Sprintf("%c: %s", f.Code, f.Value))
		}
	case pgproto.NoticeResponse:
		fields := m.Fields()
		for fields.Next() {
			f := fields.Value()
			lines = append(lines, fmt.Sprintf("%c: %s", f.Code, f.Value))
		}
	case pgproto.ReadyForQuery:
		lines = append(lines, fmt.Sprintf("TxStatus: %c", m.TxStatus))
	}
	if len(lines) == 0 {
		lines = append(lines, "(no fields)")
	}
	return lines
}

// InspectorModel is a bubbletea.Model browsing a decoded frame list:
// up/down moves the cursor, the detail pane always shows the selected
// frame's fields. It decodes its capture in the background behind a
// spinner, since a large capture can take a moment to walk.
type InspectorModel struct {
	path    string
	spinner spinner.Model
	loading bool
	loadErr error

	frames []Frame
	cursor int
	width  int
	height int
}

// NewInspector builds an InspectorModel that decodes the capture at
// path on Init.
func NewInspector(path string) InspectorModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = mutedStyle
	return InspectorModel{path: path, spinner: s, loading: true}
}

type framesLoadedMsg struct {
	frames []Frame
	err    error
}

func loadFrames(path string) tea.Cmd {
	return func() tea.Msg {
		data, err := os.ReadFile(path)
		if err != nil {
			return framesLoadedMsg{err: fmt.Errorf("reading capture: %w", err)}
		}
		frames, err := DecodeFrames(data)
		if err != nil {
			return framesLoadedMsg{err: fmt.Errorf("decoding capture: %w", err)}
		}
		return framesLoadedMsg{frames: frames}
	}
}

func (m InspectorModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, loadFrames(m.path))
}

func (m InspectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case framesLoadedMsg:
		m.loading = false
		m.frames, m.loadErr = msg.frames, msg.err
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "j", "down":
			if m.cursor < len(m.frames)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		}
	}
	return m, nil
}

func (m InspectorModel) View() string {
	if m.loading {
		return fmt.Sprintf("%s decoding %s...\n", m.spinner.View(), m.path)
	}
	if m.loadErr != nil {
		return errTagStyle.Render("error: "+m.loadErr.Error()) + "\n"
	}
	if len(m.frames) == 0 {
		return mutedStyle.Render("no frames to inspect\n")
	}

	var list strings.Builder
	for i, f := range m.frames {
		tag := tagStyle.Render(frameTag(f.Message))
		if _, isErr := f.Message.(pgproto.ErrorResponse); isErr {
			tag = errTagStyle.Render(frameTag(f.Message))
		}
		line := fmt.Sprintf("%3d  %s  (%d bytes)", i, tag, len(f.Raw))
		if i == m.cursor {
			list.WriteString(selectedStyle.Render("> ") + line)
		} else {
			list.WriteString(mutedStyle.Render("  ") + line)
		}
		list.WriteString("\n")
	}

	detail := strings.Join(frameDetail(m.frames[m.cursor].Message), "\n")
	box := detailBoxStyle.Render(detail)

	help := mutedStyle.Render("j/k: move   q: quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("pgwiredump inspector"),
		list.String(),
		box,
		help,
	)
}

// RunInspector starts the interactive TUI decoding and browsing the
// capture at path, and blocks until the user quits.
func RunInspector(path string) error {
	_, err := tea.NewProgram(NewInspector(path)).Run()
	return err
}
