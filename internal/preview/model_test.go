package preview

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afrojun/zenhub-data-export/internal/issue"
)

var rows = []issue.Row{
	{"Bug", "Widgets spin backwards", "2019-03-04 05:06:07", "bob", "alice", "", "5", "https://github.com/acme/widgets/issues/1", "", "UI_Polish", "backend", "Medium"},
	{"Epic", "Gears", "2019-03-04 05:06:07", "", "carol", "", "", "https://github.com/acme/widgets/issues/2", "", "", "", "Medium"},
}

func TestTableRows(t *testing.T) {
	got := tableRows(rows)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"Bug", "Widgets spin backwards", "2019-03-04 05:06:07", "bob", "5", "UI_Polish, backend", "Medium"}, []string(got[0]))
	assert.Equal(t, "", got[1][5])
}

func TestColumnWidths(t *testing.T) {
	long := issue.Row{"New Feature", strings.Repeat("x", 200)}
	widths := columnWidths([]issue.Row{rows[0], rows[1], long})

	require.Len(t, widths, len(columns))
	assert.Equal(t, "Type", widths[0].Title)
	assert.Equal(t, len("New Feature"), widths[0].Width)
	assert.Equal(t, maxColumnWidth, widths[1].Width)
	assert.Equal(t, len("Priority"), widths[6].Width)
}

func TestNavigation(t *testing.T) {
	var m tea.Model = NewModel("widgets / Backlog", rows)

	selected, ok := m.(Model).Selected()
	require.True(t, ok)
	assert.Equal(t, "Widgets spin backwards", selected[issue.ColumnSummary])
	assert.Contains(t, m.View(), "https://github.com/acme/widgets/issues/1")

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	selected, ok = m.(Model).Selected()
	require.True(t, ok)
	assert.Equal(t, "Gears", selected[issue.ColumnSummary])

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestEmpty(t *testing.T) {
	m := NewModel("widgets / Done", nil)

	_, ok := m.Selected()
	assert.False(t, ok)
	assert.Contains(t, m.View(), "0 rows")
}
