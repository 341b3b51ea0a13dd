package github

import (
	"context"
	"fmt"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/sirupsen/logrus"

	"github.com/afrojun/zenhub-data-export/internal/issue"
)

const (
	// DefaultEndpoint is the public GitHub API
	DefaultEndpoint = "https://api.github.com/"

	pageSize = 100
)

// Repository describes a GitHub repository
type Repository struct {
	ID       int64
	Name     string
	FullName string
}

// Client wraps the go-github client with the queries the export needs
type Client struct {
	gh    *github.Client
	owner string
}

// NewClient creates a client for repositories of the given owner. An endpoint other
// than DefaultEndpoint is treated as a GitHub Enterprise server.
func NewClient(owner, token, endpoint string) (*Client, error) {
	gh := github.NewClient(nil)
	if token != "" {
		gh = gh.WithAuthToken(token)
	}

	if endpoint != "" && endpoint != DefaultEndpoint {
		var err error
		gh, err = gh.WithEnterpriseURLs(endpoint, endpoint)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub endpoint %q: %w", endpoint, err)
		}
	}

	return &Client{
		gh:    gh,
		owner: owner,
	}, nil
}

// FetchRepository returns the descriptor of the named repository
func (c *Client) FetchRepository(ctx context.Context, name string) (Repository, error) {
	repo, _, err := c.gh.Repositories.Get(ctx, c.owner, name)
	if err != nil {
		return Repository{}, fmt.Errorf("failed to get repository %s/%s: %w", c.owner, name, err)
	}

	return Repository{
		ID:       repo.GetID(),
		Name:     repo.GetName(),
		FullName: repo.GetFullName(),
	}, nil
}

// FetchIssues returns all issues of the named repository, open and closed, keyed by number
func (c *Client) FetchIssues(ctx context.Context, name string) (map[int]*issue.Record, error) {
	opts := &github.IssueListByRepoOptions{
		State:       "all",
		ListOptions: github.ListOptions{PerPage: pageSize},
	}

	issues := make(map[int]*issue.Record)
	for {
		page, resp, err := c.gh.Issues.ListByRepo(ctx, c.owner, name, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list issues of %s/%s: %w", c.owner, name, err)
		}

		for _, i := range page {
			record := convertIssue(i)
			issues[record.Number()] = record
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	logrus.WithField("repository", name).Debugf("Fetched %d issues", len(issues))
	return issues, nil
}

// convertIssue converts a go-github Issue to our issue Record
func convertIssue(i *github.Issue) *issue.Record {
	labels := make([]string, 0, len(i.Labels))
	for _, label := range i.Labels {
		labels = append(labels, label.GetName())
	}

	var assignee *string
	if i.Assignee != nil {
		login := i.Assignee.GetLogin()
		assignee = &login
	}

	var closedAt *time.Time
	if i.ClosedAt != nil {
		t := i.ClosedAt.UTC()
		closedAt = &t
	}

	return issue.NewRecord(issue.Core{
		ID:        i.GetID(),
		URL:       i.GetHTMLURL(),
		Number:    i.GetNumber(),
		Title:     i.GetTitle(),
		Body:      i.GetBody(),
		State:     issue.State(i.GetState()),
		CreatedAt: i.GetCreatedAt().UTC(),
		ClosedAt:  closedAt,
		Labels:    labels,
		Reporter:  i.GetUser().GetLogin(),
		Assignee:  assignee,
	})
}
