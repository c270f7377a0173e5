package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
	"github.com/tormodhaugland/pv/internal/discover"
	"github.com/tormodhaugland/pv/internal/previewtree"
)

// maxSnippetLines caps the source shown for one preview.
const maxSnippetLines = 200

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	leftWidth := m.leftWidth()
	rightWidth := m.rightWidth()
	paneHeight := m.paneHeight()

	leftPane := paneStyle
	rightPane := paneStyle
	if m.activePane == PaneRoutes {
		leftPane = activePaneStyle
	} else {
		rightPane = activePaneStyle
	}

	main := lipgloss.JoinHorizontal(lipgloss.Top,
		leftPane.Width(leftWidth).Height(paneHeight).Render(m.renderRoutesPane(leftWidth-2)),
		rightPane.Width(rightWidth).Height(paneHeight).Render(m.renderDetailsPane()),
	)

	return lipgloss.JoinVertical(lipgloss.Left, main, m.renderStatus(), m.help.View(m.keys))
}

func (m Model) modeLabel() string {
	if m.nav.LeavesOnly() {
		return "expanded"
	}
	return "compact"
}

// renderRoutesPane renders the header, the filter line and the visible rows.
func (m Model) renderRoutesPane(width int) string {
	var sb strings.Builder

	header := headerStyle.Render("Previews") + " " + badgeStyle.Render(m.modeLabel())
	if m.loading {
		header += " " + spinnerFrames[m.spinnerFrame%len(spinnerFrames)]
	}
	sb.WriteString(header + "\n")

	switch {
	case m.filterActive:
		sb.WriteString(m.filterInput.View())
	case m.nav.Filter() != "":
		sb.WriteString(helpStyle.Render(truncate.StringWithTail(fmt.Sprintf("filter: %s (esc to clear)", m.nav.Filter()), uint(width), "…")))
	}
	sb.WriteString("\n")

	if m.nav.Empty() {
		sb.WriteString(placeholderStyle.Render(wordwrap.String(m.placeholder(), width-4)))
		return sb.String()
	}

	start, end := m.scroller.visibleRange(m.nav.Len())
	for i := start; i < end; i++ {
		r, _ := m.nav.Route(i)
		sb.WriteString(m.renderRow(r, i == m.nav.Cursor(), width) + "\n")
	}

	if m.nav.Len() > m.scroller.height {
		sb.WriteString(helpStyle.Render(fmt.Sprintf("(%d/%d)", m.nav.Cursor()+1, m.nav.Len())))
	}

	return sb.String()
}

// placeholder explains an empty routes pane.
func (m Model) placeholder() string {
	switch {
	case !m.loaded:
		return "Scanning previews..."
	case m.nav.PreviewCount() == 0:
		where := m.cfg.PreviewsDir
		if m.result != nil && m.result.Manifest != "" {
			where = m.result.Manifest
		}
		return fmt.Sprintf("No previews found in %s. Export preview functions from files in that directory, then press r to rescan.", where)
	case m.nav.Filter() != "":
		return fmt.Sprintf("No previews match %q.", m.nav.Filter())
	default:
		return "No preview items to list. Press c for the compact tree."
	}
}

// renderRow renders a single visible route.
func (m Model) renderRow(r previewtree.VisibleRoute, isSelected bool, width int) string {
	label := r.Node.Key
	if label == "" {
		label = "(empty)"
	}

	var prefix, styled string
	if m.nav.LeavesOnly() {
		// expanded rows carry their group so equal names stay distinguishable
		group := strings.Join(r.Node.Path[:len(r.Node.Path)-1], m.nav.Separator())
		if group != "" {
			group += m.nav.Separator()
		}
		group = truncate.StringWithTail(group, uint(max(width/2, 1)), "…")
		prefix = "  " + groupPrefixStyle.Render(group)
		label = truncate.StringWithTail(label, uint(max(width-2-lipgloss.Width(group), 1)), "…")
		styled = leafStyle.Render(label)
	} else {
		indent := strings.Repeat("  ", r.Depth)
		icon := "  "
		if r.Node.IsFolder() {
			if r.Collapsed {
				icon = "▶ "
			} else {
				icon = "▼ "
			}
		}
		prefix = indent + icon
		label = truncate.StringWithTail(label, uint(max(width-lipgloss.Width(prefix), 1)), "…")
		if r.Node.IsFolder() {
			styled = folderStyle.Render(label)
		} else {
			styled = leafStyle.Render(label)
		}
	}

	line := prefix + styled
	if isSelected {
		line = selectedStyle.Render(line)
	}
	return line
}

func (m Model) renderDetailsPane() string {
	title := "Details"
	if m.details.TotalLineCount() > m.details.VisibleLineCount() {
		title += helpStyle.Render(fmt.Sprintf(" %d%%", int(m.details.ScrollPercent()*100)))
	}
	return headerStyle.Render(title) + "\n\n" + m.details.View()
}

func (m Model) renderStatus() string {
	if m.message == "" {
		return ""
	}
	if m.messageIsError {
		return errorStyle.Render(truncate.StringWithTail(m.message, uint(max(m.width, 1)), "…"))
	}
	return successStyle.Render(truncate.StringWithTail(m.message, uint(max(m.width, 1)), "…"))
}

func field(label, value string, width int) string {
	value = wordwrap.String(value, max(width-9, 10))
	value = strings.ReplaceAll(value, "\n", "\n"+strings.Repeat(" ", 9))
	return labelStyle.Render(label) + " " + value + "\n"
}

// detailsContent describes the selected route.
func (m Model) detailsContent(width int) string {
	r, ok := m.nav.Selected()
	if !ok {
		return helpStyle.Render("Nothing selected")
	}

	var sb strings.Builder
	node := r.Node

	if node.IsFolder() {
		group := strings.Join(node.Path, m.nav.Separator())
		sb.WriteString(field("Folder", group, width))
		sb.WriteString(field("Entries", fmt.Sprint(len(node.Children)), width))
		sb.WriteString(field("Previews", fmt.Sprint(len(node.Leaves())), width))
		if !m.nav.LeavesOnly() {
			state := "expanded"
			if r.Collapsed {
				state = "collapsed"
			}
			sb.WriteString(field("State", state, width))
		}
		if src, ok := m.result.FindGroup(group); ok {
			sb.WriteString(field("File", m.relPath(src.Path), width))
		}
		return sb.String()
	}

	payload := node.Payload
	sb.WriteString(field("Group", payload.Group, width))
	sb.WriteString(field("Preview", payload.Item, width))
	if node.Ordinal > 0 {
		sb.WriteString(field("Copy", fmt.Sprintf("#%d", node.Ordinal+1), width))
	}

	if m.result != nil && m.result.Manifest != "" {
		sb.WriteString(field("Source", m.relPath(m.result.Manifest), width))
		return sb.String()
	}

	src, export, found := m.result.Find(payload.Group, payload.Item)
	if !found {
		return sb.String()
	}
	sb.WriteString(field("File", m.relPath(src.Path), width))
	sb.WriteString(field("Language", src.Language, width))
	sb.WriteString(field("Lines", fmt.Sprintf("%d-%d", export.Line, export.EndLine), width))
	sb.WriteString("\n" + m.snippet(src.Path, export, width))
	return sb.String()
}

func (m Model) relPath(path string) string {
	if m.cfg.PreviewsDir == "" {
		return path
	}
	root, err := filepath.Abs(m.cfg.PreviewsDir)
	if err != nil {
		return path
	}
	if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return path
}

// snippet renders the export's source lines with line numbers.
func (m Model) snippet(path string, e discover.Export, width int) string {
	lines, ok := m.sources[path]
	if !ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return errorStyle.Render(fmt.Sprintf("cannot read source: %v", err))
		}
		lines = strings.Split(strings.ReplaceAll(string(data), "\t", "  "), "\n")
		m.sources[path] = lines
	}

	start, end := e.Line, e.EndLine
	if start < 1 || start > len(lines) {
		return ""
	}
	if end > len(lines) {
		end = len(lines)
	}
	truncated := false
	if end-start+1 > maxSnippetLines {
		end = start + maxSnippetLines - 1
		truncated = true
	}

	numWidth := len(fmt.Sprint(end))
	var sb strings.Builder
	for n := start; n <= end; n++ {
		num := lineNumberStyle.Render(fmt.Sprintf("%*d ", numWidth, n))
		code := truncate.StringWithTail(lines[n-1], uint(max(width-numWidth-1, 1)), "…")
		sb.WriteString(num + codeStyle.Render(code) + "\n")
	}
	if truncated {
		sb.WriteString(helpStyle.Render(fmt.Sprintf("... %d more lines", e.EndLine-end)))
	}
	return sb.String()
}
