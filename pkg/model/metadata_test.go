package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/joincivil/civil-content-registry/pkg/model"
)

const (
	testContentMetadata = `{"title":"Council approves new transit budget","description":"The city council voted 7-2 on Tuesday","source":"metro-daily","url":"https://metrodaily.example/2024/03/05/transit-budget","publishedAt":"2024-03-05T14:30:00Z","category":"article","contentHash":"0x574b0d5e64c30dc27d5728d5725fdecd35fddd9cfa8af522709deaa77421aa5f"}`
)

func checkMetadataValues(t *testing.T, metadata *model.ContentMetadata) {
	if metadata.Title() != "Council approves new transit budget" {
		t.Errorf("Did not have correct title: %v", metadata.Title())
	}
	if metadata.Description() != "The city council voted 7-2 on Tuesday" {
		t.Errorf("Did not have correct description: %v", metadata.Description())
	}
	if metadata.Source() != "metro-daily" {
		t.Errorf("Did not have correct source: %v", metadata.Source())
	}
	if metadata.URL() != "https://metrodaily.example/2024/03/05/transit-budget" {
		t.Errorf("Did not have correct url: %v", metadata.URL())
	}
	if !metadata.PublishedAt().Equal(time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)) {
		t.Errorf("Did not have correct published at: %v", metadata.PublishedAt())
	}
	if metadata.Category() != model.CategoryArticle {
		t.Errorf("Did not have correct category: %v", metadata.Category())
	}
	if metadata.ContentHash() != "0x574b0d5e64c30dc27d5728d5725fdecd35fddd9cfa8af522709deaa77421aa5f" {
		t.Errorf("Did not have correct content hash: %v", metadata.ContentHash())
	}
}

func TestContentMetadataUnmarshal(t *testing.T) {
	metadata := &model.ContentMetadata{}
	err := json.Unmarshal([]byte(testContentMetadata), metadata)
	if err != nil {
		t.Fatalf("Should not have failed to unmarshal JSON: err: %v", err)
	}
	checkMetadataValues(t, metadata)
}

func TestContentMetadataMarshal(t *testing.T) {
	metadata := &model.ContentMetadata{}
	err := json.Unmarshal([]byte(testContentMetadata), metadata)
	if err != nil {
		t.Fatalf("Should not have failed to unmarshal JSON: err: %v", err)
	}

	bytes, err := json.Marshal(metadata)
	if err != nil {
		t.Errorf("Should not have failed to marshal: err: %v", err)
	}

	metadata = &model.ContentMetadata{}
	err = json.Unmarshal(bytes, metadata)
	if err != nil {
		t.Fatalf("Should not have failed to unmarshal JSON: err: %v", err)
	}

	checkMetadataValues(t, metadata)
}

func TestContentMetadataMissingTitle(t *testing.T) {
	metadata := &model.ContentMetadata{}
	err := json.Unmarshal([]byte(`{"description":"no title here"}`), metadata)
	if err != nil {
		t.Fatalf("Should not have failed to unmarshal JSON: err: %v", err)
	}
	if metadata.Title() != "" {
		t.Errorf("Should have had an empty title: %v", metadata.Title())
	}
}
