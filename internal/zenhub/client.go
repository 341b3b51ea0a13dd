package zenhub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/afrojun/zenhub-data-export/internal/board"
)

const (
	// DefaultEndpoint is the public ZenHub API
	DefaultEndpoint = "https://api.zenhub.com"

	tokenHeader = "X-Authentication-Token"
)

// DefaultBackoff is used when ZenHub throttles requests or fails on its side
var DefaultBackoff = wait.Backoff{
	Duration: time.Second,
	Factor:   2,
	Steps:    5,
}

// Client fetches board snapshots from the ZenHub REST API
type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
	backoff    wait.Backoff
}

// NewClient creates a ZenHub client; an empty endpoint selects DefaultEndpoint
func NewClient(endpoint, token string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		endpoint:   strings.TrimSuffix(endpoint, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: time.Minute},
		backoff:    DefaultBackoff,
	}
}

type boardResponse struct {
	Pipelines []pipelineResponse `json:"pipelines"`
}

type pipelineResponse struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Issues []issueResponse `json:"issues"`
}

type issueResponse struct {
	IssueNumber int               `json:"issue_number"`
	Estimate    *estimateResponse `json:"estimate"`
	Position    int               `json:"position"`
	IsEpic      bool              `json:"is_epic"`
}

type estimateResponse struct {
	Value float64 `json:"value"`
}

// retryableError marks responses worth another attempt
type retryableError struct {
	status int
}

func (e *retryableError) Error() string {
	return fmt.Sprintf("ZenHub responded with retryable status %d", e.status)
}

// FetchBoard returns the board of the repository with the given GitHub ID
func (c *Client) FetchBoard(ctx context.Context, repoID int64) (board.Snapshot, error) {
	boardURL, err := url.JoinPath(c.endpoint, "p1", "repositories", strconv.FormatInt(repoID, 10), "board")
	if err != nil {
		return board.Snapshot{}, fmt.Errorf("cannot build board URL: %w", err)
	}

	var data []byte
	var lastErr error
	err = wait.ExponentialBackoffWithContext(ctx, c.backoff, func(ctx context.Context) (bool, error) {
		data, lastErr = c.get(ctx, boardURL)
		if lastErr == nil {
			return true, nil
		}
		var retryable *retryableError
		if errors.As(lastErr, &retryable) {
			logrus.WithError(lastErr).WithField("repository-id", repoID).Warn("Retrying ZenHub board request")
			return false, nil
		}
		return false, lastErr
	})
	if err != nil {
		if wait.Interrupted(err) && lastErr != nil {
			return board.Snapshot{}, fmt.Errorf("failed to get board of repository %d after retries: %w", repoID, lastErr)
		}
		return board.Snapshot{}, fmt.Errorf("failed to get board of repository %d: %w", repoID, err)
	}

	var resp boardResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return board.Snapshot{}, fmt.Errorf("failed to parse board of repository %d: %w", repoID, err)
	}

	return convertBoard(resp), nil
}

func (c *Client) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set(tokenHeader, c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode >= http.StatusInternalServerError:
		return nil, &retryableError{status: resp.StatusCode}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("ZenHub responded with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return body, nil
}

func convertBoard(resp boardResponse) board.Snapshot {
	snapshot := board.Snapshot{Pipelines: make([]board.Pipeline, 0, len(resp.Pipelines))}
	for _, p := range resp.Pipelines {
		pipeline := board.Pipeline{
			ID:         p.ID,
			Name:       p.Name,
			References: make([]board.Reference, 0, len(p.Issues)),
		}
		for _, i := range p.Issues {
			ref := board.Reference{
				IssueNumber: i.IssueNumber,
				IsEpic:      i.IsEpic,
				Position:    i.Position,
			}
			if i.Estimate != nil {
				value := i.Estimate.Value
				ref.Estimate = &value
			}
			pipeline.References = append(pipeline.References, ref)
		}
		snapshot.Pipelines = append(snapshot.Pipelines, pipeline)
	}
	return snapshot
}
