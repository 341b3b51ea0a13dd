package issue

import (
	"slices"
	"strconv"
	"time"
)

// State is the lifecycle state of an issue
type State string

const (
	StateOpen   State = "open"
	StateClosed State = "closed"
)

// BoardMetadata holds the fields a board pipeline contributes to an issue
type BoardMetadata struct {
	IsEpic   bool
	Position int
	// Estimate is nil when the board carries no estimate for the issue
	Estimate *float64
}

// Core holds the fields of an issue as reported by the issue source
type Core struct {
	ID        int64
	URL       string
	Number    int
	Title     string
	Body      string
	State     State
	CreatedAt time.Time
	ClosedAt  *time.Time
	Labels    []string
	Reporter  string
	Assignee  *string
}

// Record represents a single GitHub issue with the fields the export cares about.
//
// Core fields are fixed by NewRecord. Board fields stay at their zero values until
// ApplyBoard is called by the reconciler.
type Record struct {
	core  Core
	board BoardMetadata
}

// NewRecord creates a record from the core fields of an issue
func NewRecord(c Core) *Record {
	c.Labels = slices.Clone(c.Labels)
	if c.Labels == nil {
		c.Labels = []string{}
	}
	return &Record{core: c}
}

// Core returns a copy of the core fields of the record
func (r *Record) Core() Core {
	c := r.core
	c.Labels = slices.Clone(c.Labels)
	return c
}

// Number returns the issue number, unique within a repository
func (r *Record) Number() int {
	return r.core.Number
}

// ApplyBoard overwrites the board-derived fields of the record
func (r *Record) ApplyBoard(m BoardMetadata) {
	r.board = m
}

// Board returns the board-derived fields of the record
func (r *Record) Board() BoardMetadata {
	return r.board
}

// IsEpic reports whether the board flagged the issue as an epic
func (r *Record) IsEpic() bool {
	return r.board.IsEpic
}

// Position returns the position of the issue within its pipeline
func (r *Record) Position() int {
	return r.board.Position
}

// AssigneeName returns the assignee login, empty string if the issue is unassigned
func (r *Record) AssigneeName() string {
	if r.core.Assignee == nil {
		return ""
	}
	return *r.core.Assignee
}

// EstimateString returns the estimate in its shortest decimal form, empty string if absent
func (r *Record) EstimateString() string {
	if r.board.Estimate == nil {
		return ""
	}
	return strconv.FormatFloat(*r.board.Estimate, 'f', -1, 64)
}
