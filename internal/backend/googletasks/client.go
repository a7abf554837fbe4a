// Package googletasks reads task lists from the Google Tasks API so they can
// be imported into the remote store.
package googletasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"todolists/internal/config"
	"todolists/internal/service"
)

const (
	// PageSize is the number of items requested per page.
	PageSize = 100

	// APITimeout is the timeout for a full import read.
	APITimeout = 30 * time.Second

	// Scope is the OAuth scope needed for importing.
	Scope = tasks.TasksReadonlyScope

	statusCompleted = "completed"
)

var (
	// ErrAuth is returned when Google rejects the stored credentials.
	ErrAuth = errors.New("google tasks: token expired or revoked (run: todolists login)")

	// ErrUnavailable is returned for timeouts and other API failures.
	ErrUnavailable = errors.New("google tasks unavailable")
)

// Client reads lists from Google Tasks.
type Client struct {
	svc *tasks.Service
}

// New creates a new Google Tasks client.
// Requires oauth_client.json and token.json to exist.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read oauth_client.json: %v", ErrAuth, err)
	}

	oauthConfig, err := google.ConfigFromJSON(clientJSON, Scope)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid oauth_client.json: %v", ErrAuth, err)
	}

	tokenData, err := os.ReadFile(cfg.TokenPath())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read token.json: %v", ErrAuth, err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenData, &token); err != nil {
		return nil, fmt.Errorf("%w: invalid token.json: %v", ErrAuth, err)
	}

	// Token source refreshes automatically.
	httpClient := oauth2.NewClient(ctx, oauthConfig.TokenSource(ctx, &token))
	return NewWithHTTPClient(ctx, httpClient)
}

// NewWithHTTPClient creates a client with a custom HTTP client. Extra options
// (such as option.WithEndpoint) are passed to the API service, for testing.
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// Lists returns every task list with all of its tasks as drafts ready for
// service.AddList. Deleted tasks are skipped; hidden (cleared) completed
// tasks are kept as completed.
func (c *Client) Lists(ctx context.Context) ([]service.NewList, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var lists []*tasks.TaskList
	err := c.svc.Tasklists.List().MaxResults(PageSize).Pages(ctx, func(resp *tasks.TaskLists) error {
		lists = append(lists, resp.Items...)
		return nil
	})
	if err != nil {
		return nil, wrapError(err)
	}

	result := make([]service.NewList, 0, len(lists))
	for _, l := range lists {
		draft := service.NewList{Name: strings.TrimSpace(l.Title)}
		if draft.Name == "" {
			draft.Name = "(untitled)"
		}

		err := c.svc.Tasks.List(l.Id).
			MaxResults(PageSize).
			ShowCompleted(true).
			ShowHidden(true).
			ShowDeleted(false).
			Pages(ctx, func(resp *tasks.Tasks) error {
				for _, t := range resp.Items {
					if t.Deleted || strings.TrimSpace(t.Title) == "" {
						continue
					}
					draft.Tasks = append(draft.Tasks, service.NewTask{
						Name:      strings.TrimSpace(t.Title),
						Completed: t.Status == statusCompleted,
					})
				}
				return nil
			})
		if err != nil {
			return nil, fmt.Errorf("list %q: %w", l.Title, wrapError(err))
		}
		result = append(result, draft)
	}
	return result, nil
}

// wrapError classifies API errors.
func wrapError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %v", ErrAuth, err)
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: request timed out", ErrUnavailable)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
