package model // import "github.com/joincivil/civil-content-registry/pkg/model"

import (
	"time"
)

// NewHeadline is a convenience function to init a new Headline
func NewHeadline(title string, sourceID string, url string, description string,
	publishedAt time.Time) *Headline {
	return &Headline{
		title:       title,
		sourceID:    sourceID,
		url:         url,
		description: description,
		publishedAt: publishedAt,
	}
}

// Headline is a news item pulled from a headline feed by the ingester
type Headline struct {
	title       string
	sourceID    string
	url         string
	description string
	publishedAt time.Time
}

// Title returns the headline title
func (h *Headline) Title() string {
	return h.title
}

// SourceID returns the identifier of the publishing source
func (h *Headline) SourceID() string {
	return h.sourceID
}

// URL returns the article URL
func (h *Headline) URL() string {
	return h.url
}

// Description returns the headline summary
func (h *Headline) Description() string {
	return h.description
}

// PublishedAt returns the original publish time
func (h *Headline) PublishedAt() time.Time {
	return h.publishedAt
}

// Metadata returns the ContentMetadata describing this headline
func (h *Headline) Metadata(contentHash string) *ContentMetadata {
	return NewContentMetadata(h.title, h.description, h.sourceID, h.url, h.publishedAt,
		CategoryArticle, contentHash)
}
