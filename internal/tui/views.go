package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles contains lipgloss styles for the browser
type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Status   lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Muted    lipgloss.Style
	Border   lipgloss.Style
	Selected lipgloss.Style
	Badge    lipgloss.Style
	Help     lipgloss.Style
	Key      lipgloss.Style
	KeyDesc  lipgloss.Style
}

// DefaultStyles returns the default lipgloss styles
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63")). // Purple
			MarginBottom(1),
		Subtitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")). // Gray
			MarginBottom(1),
		Status: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")), // Cyan
		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")), // Red
		Success: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("46")), // Green
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")), // Gray
		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")). // Purple
			Padding(1, 2),
		Selected: lipgloss.NewStyle().
			Background(lipgloss.Color("63")).  // Purple
			Foreground(lipgloss.Color("230")). // Light yellow
			Bold(true),
		Badge: lipgloss.NewStyle().
			Foreground(lipgloss.Color("226")), // Yellow
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")). // Gray
			MarginTop(1),
		Key: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63")), // Purple
		KeyDesc: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")), // Gray
	}
}

// renderCollections renders the collection list
func (m Model) renderCollections() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("📚 RefHub Collections"))
	b.WriteString("\n\n")
	b.WriteString(m.renderQueryLine())
	b.WriteString("\n\n")

	if m.loading {
		b.WriteString(m.spinner.View() + " Loading collections...")
		b.WriteString("\n")
	} else if len(m.collections) == 0 {
		b.WriteString(m.styles.Muted.Render("No collections. Press 'n' to create one."))
		b.WriteString("\n")
	} else {
		for i := range m.collections {
			b.WriteString(m.renderCollectionRow(i))
			b.WriteString("\n")
		}
	}

	b.WriteString(m.renderErrorLine())
	b.WriteString(m.renderHelpLine("enter open", "n new", "r rename", "d delete", "/ search", "s sort", "[/] page", "q quit", "? help"))
	return b.String()
}

func (m Model) renderCollectionRow(i int) string {
	col := m.collections[i]

	role := m.myRole(&col)
	badge := ""
	if col.IsShared {
		badge = " " + m.styles.Badge.Render("["+role.String()+"]")
	}

	line := fmt.Sprintf("%-40s %3d refs%s", truncate(col.Title, 40), col.RefCount, badge)
	if i == m.colCursor {
		return m.styles.Selected.Render("> " + line)
	}
	return "  " + line
}

// renderReferences renders the reference list of the open collection
func (m Model) renderReferences() string {
	var b strings.Builder

	title := "References"
	if col, ok := m.selectedCollection(); ok {
		title = col.Title
	}
	b.WriteString(m.styles.Title.Render("🔖 " + title))
	b.WriteString("\n\n")
	b.WriteString(m.renderQueryLine())
	b.WriteString("\n\n")

	if m.loading {
		b.WriteString(m.spinner.View() + " Loading references...")
		b.WriteString("\n")
	} else if len(m.references) == 0 {
		b.WriteString(m.styles.Muted.Render("No references in this collection."))
		b.WriteString("\n")
	} else {
		for i := range m.references {
			b.WriteString(m.renderReferenceRow(i))
			b.WriteString("\n")
		}
	}

	b.WriteString(m.renderErrorLine())
	b.WriteString(m.renderHelpLine("esc back", "d delete", "/ search", "s sort", "[/] page", "q quit", "? help"))
	return b.String()
}

func (m Model) renderReferenceRow(i int) string {
	ref := m.references[i]

	detail := ref.URL
	if detail == "" {
		detail = ref.FileName
	}
	line := fmt.Sprintf("%-36s %-6s %s", truncate(ref.Title, 36), ref.Kind, m.styles.Muted.Render(truncate(detail, 40)))
	if i == m.refCursor {
		return m.styles.Selected.Render("> " + line)
	}
	return "  " + line
}

// renderInputDialog renders the text input modals
func (m Model) renderInputDialog() string {
	var title string
	switch m.dialog {
	case DialogNewCollection:
		title = "New Collection"
	case DialogRenameCollection:
		title = "Rename Collection"
	case DialogSearch:
		title = "Search"
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render(title))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	if m.pending {
		b.WriteString("\n" + m.spinner.View() + " Working...")
	}
	if m.dialogErr != "" {
		b.WriteString("\n" + m.styles.Error.Render("✗ "+m.dialogErr))
	}

	b.WriteString("\n")
	b.WriteString(m.renderHelpLine("enter confirm", "esc cancel"))
	return m.styles.Border.Render(b.String())
}

// renderConfirm renders the y/n delete confirmation
func (m Model) renderConfirm() string {
	target := "this collection"
	if m.pane == PaneReferences {
		target = "this reference"
		if m.refCursor < len(m.references) {
			target = fmt.Sprintf("%q", m.references[m.refCursor].Title)
		}
	} else if col, ok := m.selectedCollection(); ok {
		target = fmt.Sprintf("%q and all its references", col.Title)
	}

	var b strings.Builder
	b.WriteString(m.styles.Error.Render("Delete " + target + "?"))
	b.WriteString("\n\n")

	if m.pending {
		b.WriteString(m.spinner.View() + " Deleting...")
	} else {
		b.WriteString(m.styles.Key.Render("y") + m.styles.KeyDesc.Render(" delete  "))
		b.WriteString(m.styles.Key.Render("n") + m.styles.KeyDesc.Render(" cancel"))
	}
	if m.dialogErr != "" {
		b.WriteString("\n\n" + m.styles.Error.Render("✗ "+m.dialogErr))
	}

	return m.styles.Border.Render(b.String())
}

// renderHelp renders the key reference overlay
func (m Model) renderHelp() string {
	rows := [][2]string{
		{"↑/k ↓/j", "Move cursor"},
		{"enter", "Open collection"},
		{"esc", "Back to collections"},
		{"n", "New collection"},
		{"r", "Rename collection (owner only)"},
		{"d", "Delete selected (role gated)"},
		{"/", "Search"},
		{"s", "Cycle sort order"},
		{"[ ]", "Previous / next page"},
		{"q", "Quit"},
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Help"))
	b.WriteString("\n\n")
	for _, row := range rows {
		b.WriteString(fmt.Sprintf("  %s  %s\n",
			m.styles.Key.Render(fmt.Sprintf("%-8s", row[0])),
			m.styles.KeyDesc.Render(row[1])))
	}
	b.WriteString("\n" + m.styles.Muted.Render("Press any key to close"))
	return b.String()
}

func (m Model) renderQueryLine() string {
	parts := []string{fmt.Sprintf("sort: %s", m.sort), fmt.Sprintf("page: %d", m.page)}
	if m.search != "" {
		parts = append(parts, fmt.Sprintf("search: %q", m.search))
	}
	return m.styles.Subtitle.Render(strings.Join(parts, "  ·  "))
}

func (m Model) renderErrorLine() string {
	if m.lastError == "" {
		return ""
	}
	return "\n" + m.styles.Error.Render("✗ "+m.lastError) + "\n"
}

func (m Model) renderHelpLine(hints ...string) string {
	rendered := make([]string, len(hints))
	for i, h := range hints {
		key, desc, found := strings.Cut(h, " ")
		if !found {
			rendered[i] = m.styles.Key.Render(key)
			continue
		}
		rendered[i] = m.styles.Key.Render(key) + " " + m.styles.KeyDesc.Render(desc)
	}
	return m.styles.Help.Render(strings.Join(rendered, "  "))
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
