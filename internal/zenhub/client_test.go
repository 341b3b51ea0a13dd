package zenhub

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/afrojun/zenhub-data-export/internal/board"
)

const boardJSON = `{
	"pipelines": [
		{
			"id": "p1",
			"name": "Team/Backlog",
			"issues": [
				{"issue_number": 3, "estimate": {"value": 5}, "position": 0, "is_epic": false},
				{"issue_number": 1, "position": 1, "is_epic": true}
			]
		},
		{
			"id": "p2",
			"name": "Waiting",
			"issues": [
				{"issue_number": 2, "estimate": {"value": 0.5}, "position": 0}
			]
		},
		{
			"id": "p3",
			"name": "Done",
			"issues": []
		}
	]
}`

func newTestClient(server *httptest.Server) *Client {
	c := NewClient(server.URL+"/", "zh-token")
	c.backoff = wait.Backoff{Duration: time.Millisecond, Factor: 1, Steps: 3}
	return c
}

func ptr[T any](v T) *T {
	return &v
}

func TestFetchBoard(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/p1/repositories/42/board", r.URL.Path)
		assert.Equal(t, "zh-token", r.Header.Get("X-Authentication-Token"))
		fmt.Fprint(w, boardJSON)
	}))
	defer server.Close()

	snapshot, err := newTestClient(server).FetchBoard(context.Background(), 42)
	require.NoError(t, err)

	expected := board.Snapshot{
		Pipelines: []board.Pipeline{
			{
				ID:   "p1",
				Name: "Team/Backlog",
				References: []board.Reference{
					{IssueNumber: 3, Position: 0, Estimate: ptr(5.0)},
					{IssueNumber: 1, Position: 1, IsEpic: true},
				},
			},
			{
				ID:   "p2",
				Name: "Waiting",
				References: []board.Reference{
					{IssueNumber: 2, Position: 0, Estimate: ptr(0.5)},
				},
			},
			{
				ID:         "p3",
				Name:       "Done",
				References: []board.Reference{},
			},
		},
	}
	assert.Equal(t, expected, snapshot)
}

func TestFetchBoardRetries(t *testing.T) {
	tests := []struct {
		name        string
		statuses    []int
		expectError bool
		expectCalls int
	}{
		{
			name:        "recovers after throttling",
			statuses:    []int{http.StatusTooManyRequests, http.StatusOK},
			expectCalls: 2,
		},
		{
			name:        "recovers after server error",
			statuses:    []int{http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusOK},
			expectCalls: 3,
		},
		{
			name:        "gives up when retries are exhausted",
			statuses:    []int{http.StatusTooManyRequests, http.StatusTooManyRequests, http.StatusTooManyRequests},
			expectError: true,
			expectCalls: 3,
		},
		{
			name:        "does not retry auth failures",
			statuses:    []int{http.StatusUnauthorized},
			expectError: true,
			expectCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				status := tt.statuses[min(calls, len(tt.statuses)-1)]
				calls++
				w.WriteHeader(status)
				if status == http.StatusOK {
					fmt.Fprint(w, boardJSON)
				}
			}))
			defer server.Close()

			_, err := newTestClient(server).FetchBoard(context.Background(), 42)

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expectCalls, calls)
		})
	}
}

func TestFetchBoardMalformed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"pipelines": [`)
	}))
	defer server.Close()

	_, err := newTestClient(server).FetchBoard(context.Background(), 42)
	assert.ErrorContains(t, err, "failed to parse board of repository 42")
}
