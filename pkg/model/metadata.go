package model // import "github.com/joincivil/civil-content-registry/pkg/model"

import (
	"context"
	"encoding/json"
	"time"
)

// MetadataFetcher is the interface for implementations that resolve a metadata
// pointer into ContentMetadata
type MetadataFetcher interface {
	FetchMetadata(ctx context.Context, pointer string) (*ContentMetadata, error)
}

// NewContentMetadata is a convenience function to init a new ContentMetadata
func NewContentMetadata(title string, description string, source string, url string,
	publishedAt time.Time, category Category, contentHash string) *ContentMetadata {
	return &ContentMetadata{
		title:       title,
		description: description,
		source:      source,
		url:         url,
		publishedAt: publishedAt,
		category:    category,
		contentHash: contentHash,
	}
}

// ContentMetadata represents the off-registry description of a piece of
// content. It is stored as JSON in content-addressed storage and referenced
// from a record by its metadata pointer.
type ContentMetadata struct {
	title       string
	description string
	source      string
	url         string
	publishedAt time.Time
	category    Category
	contentHash string
}

// Title returns the title of the content, used by search
func (c *ContentMetadata) Title() string {
	return c.title
}

// Description returns the description of the content
func (c *ContentMetadata) Description() string {
	return c.description
}

// Source returns the identifier of the source that published the content
func (c *ContentMetadata) Source() string {
	return c.source
}

// URL returns the canonical URL of the content
func (c *ContentMetadata) URL() string {
	return c.url
}

// PublishedAt returns the original publish time of the content
func (c *ContentMetadata) PublishedAt() time.Time {
	return c.publishedAt
}

// Category returns the content category
func (c *ContentMetadata) Category() Category {
	return c.category
}

// ContentHash returns the hex fingerprint of the content
func (c *ContentMetadata) ContentHash() string {
	return c.contentHash
}

type contentMetadataJSON struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Source      string    `json:"source,omitempty"`
	URL         string    `json:"url,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
	Category    Category  `json:"category,omitempty"`
	ContentHash string    `json:"contentHash,omitempty"`
}

// MarshalJSON implements json.Marshaler
func (c *ContentMetadata) MarshalJSON() ([]byte, error) {
	return json.Marshal(&contentMetadataJSON{
		Title:       c.title,
		Description: c.description,
		Source:      c.source,
		URL:         c.url,
		PublishedAt: c.publishedAt,
		Category:    c.category,
		ContentHash: c.contentHash,
	})
}

// UnmarshalJSON implements json.Unmarshaler
func (c *ContentMetadata) UnmarshalJSON(data []byte) error {
	m := &contentMetadataJSON{}
	err := json.Unmarshal(data, m)
	if err != nil {
		return err
	}
	c.title = m.Title
	c.description = m.Description
	c.source = m.Source
	c.url = m.URL
	c.publishedAt = m.PublishedAt
	c.category = m.Category
	c.contentHash = m.ContentHash
	return nil
}
