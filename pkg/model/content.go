// Package model contains the general data models and interfaces for the Civil content registry.
package model // import "github.com/joincivil/civil-content-registry/pkg/model"

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Category is the kind of content a fingerprint was registered as
type Category string

const (
	// CategoryArticle is a text article
	CategoryArticle Category = "article"
	// CategoryImage is an image file
	CategoryImage Category = "image"
	// CategoryVideo is a video file
	CategoryVideo Category = "video"
)

// Categories returns the valid categories in their canonical order
func Categories() []Category {
	return []Category{CategoryArticle, CategoryImage, CategoryVideo}
}

// Valid returns true if the category is one of the supported categories
func (c Category) Valid() bool {
	switch c {
	case CategoryArticle, CategoryImage, CategoryVideo:
		return true
	}
	return false
}

// String returns the string value of the category
func (c Category) String() string {
	return string(c)
}

// CategoryFromName returns the category for a name, matching case-insensitively.
// Returns ErrInvalidCategory if it is not a supported category.
func CategoryFromName(name string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(name)))
	if !c.Valid() {
		return "", ErrInvalidCategory
	}
	return c, nil
}

// NewContentRecord is a convenience function to init a new ContentRecord
func NewContentRecord(fingerprint common.Hash, publisher common.Address,
	category Category, metadataPointer string, timestamp int64) *ContentRecord {
	return &ContentRecord{
		fingerprint:     fingerprint,
		publisher:       publisher,
		category:        category,
		metadataPointer: metadataPointer,
		timestamp:       timestamp,
	}
}

// ContentRecord represents a single registered piece of content. Once created
// it is never modified or deleted.
type ContentRecord struct {
	fingerprint common.Hash

	publisher common.Address

	category Category

	metadataPointer string

	timestamp int64
}

// Fingerprint returns the content fingerprint, the registry key
func (c *ContentRecord) Fingerprint() common.Hash {
	return c.fingerprint
}

// Publisher returns the address of the account that registered the content
func (c *ContentRecord) Publisher() common.Address {
	return c.publisher
}

// Category returns the content category
func (c *ContentRecord) Category() Category {
	return c.category
}

// MetadataPointer returns the content-addressed locator of the external metadata
func (c *ContentRecord) MetadataPointer() string {
	return c.metadataPointer
}

// Timestamp returns the registration time in seconds since epoch
func (c *ContentRecord) Timestamp() int64 {
	return c.timestamp
}

// NewVerificationResult returns the result of a Verify call. A nil record
// means the fingerprint was not registered.
func NewVerificationResult(fingerprint common.Hash, record *ContentRecord) *VerificationResult {
	return &VerificationResult{fingerprint: fingerprint, record: record}
}

// VerificationResult is the outcome of a Verify call on the registry. When the
// content does not exist all record fields return their zero values.
type VerificationResult struct {
	fingerprint common.Hash
	record      *ContentRecord
}

// Fingerprint returns the fingerprint that was checked
func (v *VerificationResult) Fingerprint() common.Hash {
	return v.fingerprint
}

// Exists returns true if the fingerprint is registered
func (v *VerificationResult) Exists() bool {
	return v.record != nil
}

// Record returns the registered record or nil
func (v *VerificationResult) Record() *ContentRecord {
	return v.record
}

// Publisher returns the publisher or the zero address
func (v *VerificationResult) Publisher() common.Address {
	if v.record == nil {
		return common.Address{}
	}
	return v.record.Publisher()
}

// Timestamp returns the registration timestamp or 0
func (v *VerificationResult) Timestamp() int64 {
	if v.record == nil {
		return 0
	}
	return v.record.Timestamp()
}

// Category returns the category or an empty category
func (v *VerificationResult) Category() Category {
	if v.record == nil {
		return ""
	}
	return v.record.Category()
}

// MetadataPointer returns the metadata pointer or an empty string
func (v *VerificationResult) MetadataPointer() string {
	if v.record == nil {
		return ""
	}
	return v.record.MetadataPointer()
}
