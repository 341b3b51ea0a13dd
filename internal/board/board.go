package board

import (
	"strings"
)

const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"

	waitingPipeline = "Waiting"
)

// Reference is one issue's membership in a pipeline
type Reference struct {
	IssueNumber int
	IsEpic      bool
	Position    int
	// Estimate is nil when the board has no estimate for the issue
	Estimate *float64
}

// Pipeline is a named lane on the board, references are in display order
type Pipeline struct {
	ID         string
	Name       string
	References []Reference
}

// Snapshot is the board of a single repository, pipelines are in display order
type Snapshot struct {
	Pipelines []Pipeline
}

// BareName strips any path-like grouping prefix from a pipeline name
func BareName(name string) string {
	return name[strings.LastIndexAny(name, `/\`)+1:]
}

// BareName returns the pipeline name without its grouping prefix
func (p Pipeline) BareName() string {
	return BareName(p.Name)
}

// PriorityFor maps a bare pipeline name to the priority of the issues in it
func PriorityFor(bareName string) string {
	if bareName == waitingPipeline {
		return PriorityLow
	}
	return PriorityMedium
}
