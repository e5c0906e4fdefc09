// Package remote fetches bookmarks from a remote link collection.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	bmerrors "github.com/nikbrunner/bmarks/internal/errors"
	"github.com/nikbrunner/bmarks/internal/model"
)

// DefaultBaseURL is the public Tagpacker endpoint.
const DefaultBaseURL = "https://tagpacker.com"

// ErrNoUserID is returned when the client is built without a user id.
var ErrNoUserID = errors.New("tagpacker user id is empty")

// Source produces bookmarks to import.
type Source interface {
	FetchLinks(ctx context.Context) ([]model.NewBookmarkParams, error)
}

// Tagpacker is a Source backed by a Tagpacker user's public links.
type Tagpacker struct {
	baseURL    string
	userID     string
	httpClient *http.Client
}

var _ Source = (*Tagpacker)(nil)

// NewTagpacker creates a Tagpacker client.
// An empty baseURL uses DefaultBaseURL.
func NewTagpacker(baseURL, userID string, timeout time.Duration) (*Tagpacker, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrNoUserID
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Tagpacker{
		baseURL: strings.TrimRight(baseURL, "/"),
		userID:  userID,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type link struct {
	Title     string    `json:"title"`
	SourceURL string    `json:"sourceUrl"`
	Tags      []linkTag `json:"tags"`
}

type linkTag struct {
	Name string `json:"name"`
}

// FetchLinks downloads all links of the user. Any transport, status or
// decoding failure is returned as a REMOTE error.
func (c *Tagpacker) FetchLinks(ctx context.Context) ([]model.NewBookmarkParams, error) {
	const op = "tagpacker.fetch_links"

	endpoint := fmt.Sprintf("%s/api/users/%s/links", c.baseURL, url.PathEscape(c.userID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, bmerrors.NewRemote(op, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, bmerrors.NewRemote(op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, bmerrors.NewRemote(op, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, bmerrors.NewRemote(op, fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(body), 200)))
	}

	var links []link
	if err := json.Unmarshal(body, &links); err != nil {
		return nil, bmerrors.NewRemote(op, fmt.Errorf("unmarshal response: %w", err))
	}

	params := make([]model.NewBookmarkParams, 0, len(links))
	for _, l := range links {
		tags := make([]string, 0, len(l.Tags))
		for _, t := range l.Tags {
			tags = append(tags, t.Name)
		}
		params = append(params, model.NewBookmarkParams{
			Title: model.OptionalString(l.Title),
			URL:   l.SourceURL,
			Tags:  tags,
		})
	}

	return params, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
