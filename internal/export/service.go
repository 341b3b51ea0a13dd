package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/afrojun/zenhub-data-export/internal/board"
	"github.com/afrojun/zenhub-data-export/internal/github"
	"github.com/afrojun/zenhub-data-export/internal/issue"
)

// IssueSource provides repository descriptors and their issues
type IssueSource interface {
	FetchRepository(ctx context.Context, name string) (github.Repository, error)
	FetchIssues(ctx context.Context, name string) (map[int]*issue.Record, error)
}

// BoardSource provides the board of a repository
type BoardSource interface {
	FetchBoard(ctx context.Context, repoID int64) (board.Snapshot, error)
}

// Target identifies one exported artifact
type Target struct {
	Repository string
	// Pipeline is the bare pipeline name
	Pipeline string
}

func (t Target) String() string {
	return fmt.Sprintf("%s_%s", t.Repository, t.Pipeline)
}

// Sink receives the rows of a single target
type Sink interface {
	Write(ctx context.Context, target Target, rows []issue.Row) error
}

// Options selects what gets exported
type Options struct {
	// Repositories are exported in the given order
	Repositories []string
	// Pipelines is the allow-list, matched against full pipeline names
	Pipelines sets.Set[string]
}

// TargetSummary describes one exported target
type TargetSummary struct {
	Target
	Rows    int
	Dropped int
}

// Summary describes a finished export
type Summary struct {
	Targets []TargetSummary
}

// TotalRows returns the number of rows across all targets
func (s *Summary) TotalRows() int {
	total := 0
	for _, t := range s.Targets {
		total += t.Rows
	}
	return total
}

// Service orchestrates the export of repositories to sinks
type Service struct {
	issues IssueSource
	boards BoardSource
	sinks  []Sink
}

// NewService creates a new service instance
func NewService(issues IssueSource, boards BoardSource, sinks ...Sink) *Service {
	return &Service{
		issues: issues,
		boards: boards,
		sinks:  sinks,
	}
}

// repositoryData is everything fetched for a single repository
type repositoryData struct {
	snapshot board.Snapshot
	issues   map[int]*issue.Record
}

func (s *Service) fetch(ctx context.Context, name string) (*repositoryData, error) {
	repo, err := s.issues.FetchRepository(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("cannot fetch repository %q: %w", name, err)
	}

	snapshot, err := s.boards.FetchBoard(ctx, repo.ID)
	if err != nil {
		return nil, fmt.Errorf("cannot fetch board for repository %q: %w", name, err)
	}

	issues, err := s.issues.FetchIssues(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("cannot fetch issues for repository %q: %w", name, err)
	}

	return &repositoryData{snapshot: snapshot, issues: issues}, nil
}

// pipelineRows reconciles a pipeline and formats its rows
func pipelineRows(p board.Pipeline, issues map[int]*issue.Record) ([]issue.Row, int) {
	records := board.Reconcile(p, issues)
	return issue.FormatRows(records, board.PriorityFor(p.BareName())), len(p.References) - len(records)
}

// selectPipelines returns the allowed pipelines of a board in board order. Targets are
// keyed by bare name, so two allowed pipelines sharing one are rejected.
func selectPipelines(snapshot board.Snapshot, allowed sets.Set[string]) ([]board.Pipeline, error) {
	var selected []board.Pipeline
	byBareName := make(map[string]string)
	for _, p := range snapshot.Pipelines {
		if !allowed.Has(p.Name) {
			logrus.Debugf("Skipping pipeline %q", p.Name)
			continue
		}
		bare := p.BareName()
		if other, ok := byBareName[bare]; ok {
			return nil, fmt.Errorf("pipelines %q and %q would both be exported as %q", other, p.Name, bare)
		}
		byBareName[bare] = p.Name
		selected = append(selected, p)
	}
	return selected, nil
}

// Export writes every selected pipeline of every repository to all sinks. The first
// failure aborts the run; targets written before it are left in place.
func (s *Service) Export(ctx context.Context, opts Options) (*Summary, error) {
	summary := &Summary{}

	for _, name := range opts.Repositories {
		logrus.Infof("Exporting repository %s", name)

		data, err := s.fetch(ctx, name)
		if err != nil {
			return summary, err
		}

		selected, err := selectPipelines(data.snapshot, opts.Pipelines)
		if err != nil {
			return summary, fmt.Errorf("cannot export repository %q: %w", name, err)
		}

		for _, p := range selected {
			target := Target{Repository: name, Pipeline: p.BareName()}
			rows, dropped := pipelineRows(p, data.issues)

			for _, sink := range s.sinks {
				if err := sink.Write(ctx, target, rows); err != nil {
					return summary, fmt.Errorf("cannot write %s: %w", target, err)
				}
			}

			logrus.WithFields(logrus.Fields{
				"repository": name,
				"pipeline":   p.Name,
				"rows":       len(rows),
				"dropped":    dropped,
			}).Info("Exported pipeline")

			summary.Targets = append(summary.Targets, TargetSummary{Target: target, Rows: len(rows), Dropped: dropped})
		}

		logrus.Infof("Exported %d of %d pipelines of repository %s", len(selected), len(data.snapshot.Pipelines), name)
	}

	return summary, nil
}

// Rows returns the export rows of a single pipeline without writing them anywhere.
// The pipeline may be given by its full or its bare name; a full name match wins.
func (s *Service) Rows(ctx context.Context, repository, pipeline string) ([]issue.Row, error) {
	data, err := s.fetch(ctx, repository)
	if err != nil {
		return nil, err
	}

	var matches []board.Pipeline
	for _, p := range data.snapshot.Pipelines {
		if p.Name == pipeline {
			matches = []board.Pipeline{p}
			break
		}
		if p.BareName() == pipeline {
			matches = append(matches, p)
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("pipeline %q not found on the board of repository %q", pipeline, repository)
	case 1:
		rows, _ := pipelineRows(matches[0], data.issues)
		return rows, nil
	default:
		names := make([]string, 0, len(matches))
		for _, p := range matches {
			names = append(names, fmt.Sprintf("%q", p.Name))
		}
		return nil, fmt.Errorf("pipeline %q of repository %q is ambiguous, use one of %s", pipeline, repository, strings.Join(names, ", "))
	}
}
