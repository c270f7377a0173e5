package tui

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/tormodhaugland/pv/internal/config"
)

// lineArgEditors accept a leading +N argument to jump to a line.
var lineArgEditors = map[string]bool{
	"vi":    true,
	"vim":   true,
	"nvim":  true,
	"nano":  true,
	"emacs": true,
	"hx":    true,
	"kak":   true,
	"micro": true,
}

// editorCommand builds the command opening path at line with editor, which
// may carry its own arguments.
func editorCommand(editor, path string, line int) *exec.Cmd {
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		parts = []string{"vi"}
	}
	args := append([]string{}, parts[1:]...)
	if line > 0 && lineArgEditors[filepath.Base(parts[0])] {
		args = append(args, fmt.Sprintf("+%d", line))
	}
	args = append(args, path)
	return exec.Command(parts[0], args...)
}

// openSelected opens the source of the selected route in the editor.
func (m Model) openSelected() tea.Cmd {
	r, ok := m.nav.Selected()
	if !ok || m.result == nil {
		return nil
	}

	var path string
	var line int
	switch {
	case m.result.Manifest != "":
		path = m.result.Manifest
	case r.Node.IsLeaf():
		src, e, found := m.result.Find(r.Node.Payload.Group, r.Node.Payload.Item)
		if !found {
			return nil
		}
		path, line = src.Path, e.Line
	default:
		src, found := m.result.FindGroup(strings.Join(r.Node.Path, m.nav.Separator()))
		if !found {
			return nil
		}
		path = src.Path
	}

	cmd := editorCommand(m.cfg.EditorCommand(), path, line)
	m.log.WithField("path", path).WithField("line", line).Debug("opening editor")
	return tea.ExecProcess(cmd, func(err error) tea.Msg {
		return editorFinishedMsg{err: err}
	})
}

// Run starts the interactive browser and blocks until the user quits.
func Run(cfg *config.Config, opts Options) error {
	// The TUI writes to stderr so stdout stays usable in pipelines; detect
	// colors from the same stream.
	lipgloss.SetDefaultRenderer(lipgloss.NewRenderer(os.Stderr, termenv.WithColorCache(true)))

	m := New(cfg, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithOutput(os.Stderr))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running preview browser: %w", err)
	}
	return nil
}
