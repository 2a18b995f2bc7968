package service

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/meilisearch/meilisearch-go"
	"naffles.com/pointsbackend/internal/model"
)

const communityIndex = "communities"

// CommunitySearchService maintains the Meilisearch discovery index for
// communities. All methods degrade to no-ops or empty results when the
// client is nil so search stays optional in local setups.
type CommunitySearchService interface {
	IndexCommunity(community *model.Community) error
	DeleteCommunity(id string) error
	Search(query string, limit int) ([]string, error)
}

type communitySearchService struct {
	client meilisearch.ServiceManager
}

func NewCommunitySearchService(client meilisearch.ServiceManager) CommunitySearchService {
	s := &communitySearchService{client: client}
	if client != nil {
		s.initIndex()
	}
	return s
}

func (s *communitySearchService) initIndex() {
	searchable := []string{"name", "slug", "description"}
	if _, err := s.client.Index(communityIndex).UpdateSearchableAttributes(&searchable); err != nil {
		log.Printf("Failed to update community searchable attributes: %v", err)
	}
}

func (s *communitySearchService) IndexCommunity(community *model.Community) error {
	if s.client == nil {
		return nil
	}

	doc := map[string]any{
		"id":          community.ID.String(),
		"name":        community.Name,
		"slug":        community.Slug,
		"description": community.Description,
		"points_name": community.PointsName,
	}

	if _, err := s.client.Index(communityIndex).AddDocuments([]map[string]any{doc}, nil); err != nil {
		return fmt.Errorf("failed to index community %s: %w", community.Slug, err)
	}
	return nil
}

func (s *communitySearchService) DeleteCommunity(id string) error {
	if s.client == nil {
		return nil
	}
	_, err := s.client.Index(communityIndex).DeleteDocument(id)
	return err
}

// Search returns the matching community IDs in relevance order.
func (s *communitySearchService) Search(query string, limit int) ([]string, error) {
	if s.client == nil {
		return nil, nil
	}

	resp, err := s.client.Index(communityIndex).Search(query, &meilisearch.SearchRequest{
		Limit: int64(limit),
	})
	if err != nil {
		return nil, err
	}

	return hitIDs(resp.Hits), nil
}

// hitIDs extracts the "id" field of each hit. Hits arrive as raw JSON
// fields, so the id is unmarshalled rather than type-asserted.
func hitIDs(hits []meilisearch.Hit) []string {
	ids := make([]string, 0, len(hits))
	for _, hit := range hits {
		raw, ok := hit["id"]
		if !ok {
			continue
		}
		var id string
		if err := json.Unmarshal(raw, &id); err != nil || id == "" {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
