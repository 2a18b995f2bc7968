package service

import (
	"encoding/json"
	"testing"

	"github.com/meilisearch/meilisearch-go"
	"github.com/stretchr/testify/assert"
)

func TestHitIDs_DecodesRawFields(t *testing.T) {
	hits := []meilisearch.Hit{
		{
			"id":   json.RawMessage(`"3f1d8a1e-0c92-4f1b-9a51-2f6f9a3a1b10"`),
			"name": json.RawMessage(`"Naffles"`),
		},
		{
			"id": json.RawMessage(`"7c2e4b90-55aa-4d0e-8f13-6d1a2c3b4d5e"`),
		},
	}

	ids := hitIDs(hits)

	assert.Equal(t, []string{
		"3f1d8a1e-0c92-4f1b-9a51-2f6f9a3a1b10",
		"7c2e4b90-55aa-4d0e-8f13-6d1a2c3b4d5e",
	}, ids)
}

func TestHitIDs_SkipsMalformedHits(t *testing.T) {
	hits := []meilisearch.Hit{
		{"name": json.RawMessage(`"no id field"`)},
		{"id": json.RawMessage(`42`)},
		{"id": json.RawMessage(`""`)},
		{"id": json.RawMessage(`"good"`)},
	}

	assert.Equal(t, []string{"good"}, hitIDs(hits))
}

func TestHitIDs_EmptyResult(t *testing.T) {
	assert.Empty(t, hitIDs(nil))
}
