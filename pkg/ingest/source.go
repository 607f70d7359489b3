// Package ingest pulls news headlines from a feed and registers them
package ingest // import "github.com/joincivil/civil-content-registry/pkg/ingest"

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"

	"github.com/joincivil/civil-content-registry/pkg/model"
)

const (
	defaultFeedTimeout = 15 * time.Second
	maxFeedSize        = 4 << 20
)

// HeadlineSource returns the current headlines of a feed
type HeadlineSource interface {
	Headlines(ctx context.Context) ([]*model.Headline, error)
}

// NewHTTPHeadlineSource returns a HeadlineSource for a JSON headline feed.
// The api key, if set, is sent in the X-Api-Key header.
func NewHTTPHeadlineSource(feedURL string, apiKey string, pageSize int) *HTTPHeadlineSource {
	return &HTTPHeadlineSource{
		feedURL:  feedURL,
		apiKey:   apiKey,
		pageSize: pageSize,
		client:   &http.Client{Timeout: defaultFeedTimeout},
	}
}

// HTTPHeadlineSource reads headlines from a top-headlines style JSON feed
type HTTPHeadlineSource struct {
	feedURL  string
	apiKey   string
	pageSize int
	client   *http.Client
}

type feedResponse struct {
	Status   string        `json:"status"`
	Message  string        `json:"message"`
	Articles []feedArticle `json:"articles"`
}

type feedArticle struct {
	Source struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"publishedAt"`
}

// Headlines fetches and decodes the feed. Articles without a title are dropped.
func (h *HTTPHeadlineSource) Headlines(ctx context.Context) ([]*model.Headline, error) {
	reqURL, err := url.Parse(h.feedURL)
	if err != nil {
		return nil, errors.Wrap(err, "invalid feed url")
	}
	if h.pageSize > 0 {
		q := reqURL.Query()
		q.Set("pageSize", fmt.Sprintf("%d", h.pageSize))
		reqURL.RawQuery = q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "error building feed request")
	}
	if h.apiKey != "" {
		req.Header.Set("X-Api-Key", h.apiKey)
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(model.ErrDependencyUnavailable, err.Error())
	}
	defer resp.Body.Close() // nolint: errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedSize))
	if err != nil {
		return nil, errors.Wrap(model.ErrDependencyUnavailable, err.Error())
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrapf(model.ErrDependencyUnavailable, "feed returned %v", resp.StatusCode)
	}
	feed := &feedResponse{}
	err = json.Unmarshal(body, feed)
	if err != nil {
		return nil, errors.Wrap(err, "error decoding feed")
	}
	if feed.Status != "" && feed.Status != "ok" {
		return nil, errors.Wrapf(model.ErrDependencyUnavailable, "feed error: %v", feed.Message)
	}

	headlines := make([]*model.Headline, 0, len(feed.Articles))
	for _, a := range feed.Articles {
		if a.Title == "" {
			continue
		}
		sourceID := a.Source.ID
		if sourceID == "" {
			sourceID = a.Source.Name
		}
		headlines = append(headlines, model.NewHeadline(a.Title, sourceID, a.URL, a.Description,
			a.PublishedAt))
	}
	return headlines, nil
}
