package issue

import (
	"strings"
)

const (
	TypeBug        = "Bug"
	TypeEpic       = "Epic"
	TypeNewFeature = "New Feature"

	// RowWidth is the number of columns in every exported row
	RowWidth = 12
	// LabelColumns is the number of label columns in every exported row
	LabelColumns = 3

	// CreatedLayout is the format of the Date Created column
	CreatedLayout = "2006-01-02 15:04:05"

	bugLabel = "bug"
)

// Column positions within a Row
const (
	ColumnIssueType = iota
	ColumnSummary
	ColumnCreated
	ColumnAssignee
	ColumnReporter
	ColumnDescription
	ColumnEstimate
	ColumnURL
	ColumnFirstLabel
	ColumnPriority = ColumnFirstLabel + LabelColumns
)

// Row is a single exported line, positionally matching Header
type Row [RowWidth]string

// Header is the first line of every exported file. Jira's CSV importer maps the
// repeated Labels columns by position, so the names are intentionally not unique.
var Header = Row{
	"Issue Type",
	"Summary",
	"Date Created",
	"Assignee",
	"Reporter",
	"Description",
	"Estimate",
	"GitHub URL",
	"Labels",
	"Labels",
	"Labels",
	"Priority",
}

// Fields returns the row as a slice, suitable for csv.Writer
func (r Row) Fields() []string {
	return r[:]
}

func isBug(label string) bool {
	return strings.EqualFold(label, bugLabel)
}

// Classify determines the Jira issue type of a record. A bug label wins over the
// epic flag, anything else is a feature.
func Classify(r *Record) string {
	for _, label := range r.core.Labels {
		if isBug(label) {
			return TypeBug
		}
	}
	if r.IsEpic() {
		return TypeEpic
	}
	return TypeNewFeature
}

// PaddedLabels returns exactly LabelColumns labels taken from the front of labels.
// Spaces become underscores and bug labels are blanked because the issue type
// column already carries them.
func PaddedLabels(labels []string) [LabelColumns]string {
	var padded [LabelColumns]string
	for i := 0; i < LabelColumns && i < len(labels); i++ {
		if isBug(labels[i]) {
			continue
		}
		padded[i] = strings.ReplaceAll(labels[i], " ", "_")
	}
	return padded
}

// FormatRow builds the export row for a reconciled record
func FormatRow(r *Record, priority string) Row {
	labels := PaddedLabels(r.core.Labels)
	return Row{
		Classify(r),
		r.core.Title,
		r.core.CreatedAt.UTC().Format(CreatedLayout),
		r.AssigneeName(),
		r.core.Reporter,
		r.core.Body,
		r.EstimateString(),
		r.core.URL,
		labels[0],
		labels[1],
		labels[2],
		priority,
	}
}

// FormatRows builds export rows for records, keeping their order
func FormatRows(records []*Record, priority string) []Row {
	rows := make([]Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, FormatRow(r, priority))
	}
	return rows
}
