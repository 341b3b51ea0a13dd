package preview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/afrojun/zenhub-data-export/internal/issue"
)

const (
	maxVisibleRows = 15
	maxColumnWidth = 60
)

// column maps a table column onto a value derived from an export row
type column struct {
	title string
	value func(issue.Row) string
}

var columns = []column{
	{title: "Type", value: func(r issue.Row) string { return r[issue.ColumnIssueType] }},
	{title: "Summary", value: func(r issue.Row) string { return r[issue.ColumnSummary] }},
	{title: "Created", value: func(r issue.Row) string { return r[issue.ColumnCreated] }},
	{title: "Assignee", value: func(r issue.Row) string { return r[issue.ColumnAssignee] }},
	{title: "Estimate", value: func(r issue.Row) string { return r[issue.ColumnEstimate] }},
	{title: "Labels", value: labels},
	{title: "Priority", value: func(r issue.Row) string { return r[issue.ColumnPriority] }},
}

func labels(r issue.Row) string {
	var nonEmpty []string
	for _, label := range r[issue.ColumnFirstLabel:issue.ColumnPriority] {
		if label != "" {
			nonEmpty = append(nonEmpty, label)
		}
	}
	return strings.Join(nonEmpty, ", ")
}

// Model represents the TUI model for previewing the rows of one pipeline
type Model struct {
	table table.Model
	title string
	rows  []issue.Row
	width int
}

// NewModel creates a new TUI model
func NewModel(title string, rows []issue.Row) Model {
	t := table.New(
		table.WithColumns(columnWidths(rows)),
		table.WithRows(tableRows(rows)),
		table.WithFocused(true),
		table.WithHeight(min(len(rows), maxVisibleRows)+1),
	)

	s := table.DefaultStyles()
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("230")).
		Background(lipgloss.Color("240")).
		Bold(true)
	t.SetStyles(s)

	return Model{
		table: t,
		title: title,
		rows:  rows,
	}
}

func tableRows(rows []issue.Row) []table.Row {
	result := make([]table.Row, 0, len(rows))
	for _, r := range rows {
		row := make(table.Row, 0, len(columns))
		for _, c := range columns {
			row = append(row, c.value(r))
		}
		result = append(result, row)
	}
	return result
}

// columnWidths sizes every column to its widest value, capped at maxColumnWidth
func columnWidths(rows []issue.Row) []table.Column {
	result := make([]table.Column, 0, len(columns))
	for _, c := range columns {
		width := lipgloss.Width(c.title)
		for _, r := range rows {
			width = max(width, lipgloss.Width(c.value(r)))
		}
		result = append(result, table.Column{Title: c.title, Width: min(width, maxColumnWidth)})
	}
	return result
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.table.SetWidth(msg.Width)
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// Selected returns the row under the cursor, false if there are no rows
func (m Model) Selected() (issue.Row, bool) {
	cursor := m.table.Cursor()
	if cursor < 0 || cursor >= len(m.rows) {
		return issue.Row{}, false
	}
	return m.rows[cursor], true
}

// View renders the model
func (m Model) View() string {
	var s strings.Builder

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("205")).
		MarginBottom(1)
	s.WriteString(headerStyle.Render(m.title))
	s.WriteString("\n")

	infoStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	s.WriteString(infoStyle.Render(fmt.Sprintf("%d rows", len(m.rows))))
	s.WriteString("\n")

	s.WriteString(m.table.View())
	s.WriteString("\n")

	if row, ok := m.Selected(); ok {
		detailStyle := lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")).
			MarginTop(1)
		detail := fmt.Sprintf("%s\nReporter: %s", row[issue.ColumnURL], row[issue.ColumnReporter])
		if m.width > 0 {
			detailStyle = detailStyle.Width(m.width)
		}
		s.WriteString(detailStyle.Render(detail))
		s.WriteString("\n")
	}

	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		MarginTop(1)
	s.WriteString(helpStyle.Render("Press 'q' to quit, arrow keys to navigate"))

	return s.String()
}
