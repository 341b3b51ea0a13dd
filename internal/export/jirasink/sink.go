package jirasink

import (
	"context"
	"fmt"
	"strings"

	"github.com/andygrunwald/go-jira"
	"github.com/sirupsen/logrus"

	"github.com/afrojun/zenhub-data-export/internal/export"
	"github.com/afrojun/zenhub-data-export/internal/issue"
)

// IssueClient is the part of the Jira client the sink needs
type IssueClient interface {
	SearchWithContext(context.Context, string, *jira.SearchOptions) ([]jira.Issue, *jira.Response, error)
	CreateIssue(*jira.Issue) (*jira.Issue, error)
	UpdateIssue(*jira.Issue) (*jira.Issue, error)
}

// Sink keeps one Jira issue per exported row. Issues are found again by a label
// derived from the GitHub URL, so repeated exports update instead of duplicating.
type Sink struct {
	client  IssueClient
	project string
}

// NewSink creates a sink creating issues in the given Jira project
func NewSink(client IssueClient, project string) *Sink {
	return &Sink{
		client:  client,
		project: project,
	}
}

// Write creates or updates Jira issues for all rows of the target, in row order
func (s *Sink) Write(ctx context.Context, target export.Target, rows []issue.Row) error {
	log := logrus.WithField("target", target.String())
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return err
		}

		url := row[issue.ColumnURL]
		existing, err := s.find(ctx, url)
		if err != nil {
			return err
		}

		desired := s.issueForRow(row)
		if existing == "" {
			created, err := s.client.CreateIssue(desired)
			if err != nil {
				return fmt.Errorf("cannot create Jira issue for %s: %w", url, err)
			}
			log.Infof("Created %s from %s", created.Key, url)
			continue
		}

		if _, err := s.client.UpdateIssue(&jira.Issue{
			Key: existing,
			Fields: &jira.IssueFields{
				Priority:    desired.Fields.Priority,
				Labels:      desired.Fields.Labels,
				Summary:     desired.Fields.Summary,
				Description: desired.Fields.Description,
			},
		}); err != nil {
			return fmt.Errorf("cannot update Jira issue %s for %s: %w", existing, url, err)
		}
		log.Infof("Updated %s from %s", existing, url)
	}
	return nil
}

// find returns the key of the issue previously created for a GitHub URL, empty if there is none
func (s *Sink) find(ctx context.Context, url string) (string, error) {
	if url == "" {
		return "", nil
	}

	jql := fmt.Sprintf(`project = "%s" AND labels = "%s"`, s.project, importLabel(url))
	found, _, err := s.client.SearchWithContext(ctx, jql, &jira.SearchOptions{MaxResults: 2, Fields: []string{"key"}})
	if err != nil {
		return "", fmt.Errorf("cannot search Jira issues for %s: %w", url, err)
	}

	switch len(found) {
	case 0:
		return "", nil
	case 1:
		return found[0].Key, nil
	default:
		return "", fmt.Errorf("found %s and %s imported from %s, resolve the duplicate first", found[0].Key, found[1].Key, url)
	}
}

// importLabel returns the label marking Jira issues imported from a GitHub URL
func importLabel(url string) string {
	url = strings.TrimPrefix(strings.TrimPrefix(url, "https://"), "http://")
	return "gh:" + strings.NewReplacer(" ", "_", "\"", "_").Replace(url)
}

func (s *Sink) issueForRow(row issue.Row) *jira.Issue {
	var labels []string
	for _, label := range row[issue.ColumnFirstLabel:issue.ColumnPriority] {
		if label != "" {
			labels = append(labels, label)
		}
	}

	description := row[issue.ColumnDescription]
	if url := row[issue.ColumnURL]; url != "" {
		labels = append(labels, importLabel(url))
		description = strings.TrimSpace(description + "\n\nImported from " + url)
	}

	return &jira.Issue{
		Fields: &jira.IssueFields{
			Type:        jira.IssueType{Name: row[issue.ColumnIssueType]},
			Project:     jira.Project{Key: s.project},
			Priority:    &jira.Priority{Name: row[issue.ColumnPriority]},
			Labels:      labels,
			Summary:     row[issue.ColumnSummary],
			Description: description,
		},
	}
}
