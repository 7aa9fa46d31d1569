package service

import (
	"html"
	"strings"

	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"peerlearn.app/server/internal/log"
	"peerlearn.app/server/internal/model"
)

const profilesIndex = "profiles"

// PeerSearchParams narrows a peer search; empty fields are skipped.
type PeerSearchParams struct {
	Query      string `form:"q"`
	University string `form:"university"`
	Course     string `form:"course"`
	Subject    string `form:"subject"`
	Limit      int64  `form:"limit"`
}

type PeerHit struct {
	ID          string   `json:"id"`
	FullName    string   `json:"full_name"`
	AvatarURL   string   `json:"avatar_url"`
	Bio         string   `json:"bio"`
	College     string   `json:"college"`
	University  string   `json:"university"`
	Course      string   `json:"course"`
	YearOfStudy int      `json:"year_of_study"`
	Subjects    []string `json:"subjects"`
	Rating      float64  `json:"rating"`
}

type SearchService interface {
	IndexProfile(profile *model.Profile) error
	RemoveProfile(id string) error
	SearchPeers(params PeerSearchParams) ([]PeerHit, error)
}

type searchService struct {
	client    meilisearch.ServiceManager
	sanitizer *bluemonday.Policy
}

func NewSearchService(client meilisearch.ServiceManager) SearchService {
	s := &searchService{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
	}
	s.initIndexes()
	return s
}

func (s *searchService) initIndexes() {
	filterableAttrs := []string{"university", "course", "subjects"}
	filterableInterface := make([]any, len(filterableAttrs))
	for i, v := range filterableAttrs {
		filterableInterface[i] = v
	}
	if _, err := s.client.Index(profilesIndex).UpdateFilterableAttributes(&filterableInterface); err != nil {
		log.L().Warn("failed to update profiles filterable attributes", zap.Error(err))
	}

	sortableAttrs := []string{"rating", "last_active"}
	if _, err := s.client.Index(profilesIndex).UpdateSortableAttributes(&sortableAttrs); err != nil {
		log.L().Warn("failed to update profiles sortable attributes", zap.Error(err))
	}
}

type meiliProfileDoc struct {
	ID          string   `json:"id"`
	FullName    string   `json:"full_name"`
	AvatarURL   string   `json:"avatar_url"`
	Bio         string   `json:"bio"`
	College     string   `json:"college"`
	University  string   `json:"university"`
	Course      string   `json:"course"`
	YearOfStudy int      `json:"year_of_study"`
	Subjects    []string `json:"subjects"`
	Rating      float64  `json:"rating"`
	LastActive  int64    `json:"last_active"`
}

func (s *searchService) cleanForIndex(content string) string {
	sanitized := s.sanitizer.Sanitize(content)
	cleanText := html.UnescapeString(sanitized)
	return strings.Join(strings.Fields(cleanText), " ")
}

func (s *searchService) IndexProfile(profile *model.Profile) error {
	doc := meiliProfileDoc{
		ID:         profile.AccountID.String(),
		FullName:   profile.FullName,
		AvatarURL:  getStringOrEmpty(profile.AvatarURL),
		College:    getStringOrEmpty(profile.College),
		University: getStringOrEmpty(profile.University),
		Course:     getStringOrEmpty(profile.Course),
		Subjects:   profile.Subjects,
		Rating:     profile.Rating,
		LastActive: profile.LastActive.Unix(),
	}
	if profile.Bio != nil {
		doc.Bio = s.cleanForIndex(*profile.Bio)
	}
	if profile.YearOfStudy != nil {
		doc.YearOfStudy = *profile.YearOfStudy
	}
	if doc.Subjects == nil {
		doc.Subjects = []string{}
	}

	task, err := s.client.Index(profilesIndex).AddDocuments([]meiliProfileDoc{doc}, strPtr("id"))
	if err != nil {
		return err
	}
	log.L().Debug("indexed profile",
		zap.String("profile_id", doc.ID),
		zap.Int64("task_id", task.TaskUID))
	return nil
}

func (s *searchService) RemoveProfile(id string) error {
	_, err := s.client.Index(profilesIndex).DeleteDocument(id)
	return err
}

func (s *searchService) SearchPeers(params PeerSearchParams) ([]PeerHit, error) {
	limit := params.Limit
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	filters := []string{}
	if params.University != "" {
		filters = append(filters, "university = "+quoteFilterValue(params.University))
	}
	if params.Course != "" {
		filters = append(filters, "course = "+quoteFilterValue(params.Course))
	}
	if params.Subject != "" {
		filters = append(filters, "subjects = "+quoteFilterValue(params.Subject))
	}

	req := &meilisearch.SearchRequest{
		Limit: limit,
		Sort:  []string{"rating:desc"},
	}
	if len(filters) > 0 {
		req.Filter = strings.Join(filters, " AND ")
	}

	resp, err := s.client.Index(profilesIndex).Search(params.Query, req)
	if err != nil {
		return nil, err
	}

	hits := make([]PeerHit, 0, len(resp.Hits))
	for _, raw := range resp.Hits {
		hit, ok := decodePeerHit(raw)
		if !ok {
			continue
		}
		hits = append(hits, hit)
	}

	return hits, nil
}

func decodePeerHit(raw any) (PeerHit, bool) {
	m, ok := raw.(map[string]any)
	if !ok {
		return PeerHit{}, false
	}

	hit := PeerHit{
		ID:         stringField(m, "id"),
		FullName:   stringField(m, "full_name"),
		AvatarURL:  stringField(m, "avatar_url"),
		Bio:        stringField(m, "bio"),
		College:    stringField(m, "college"),
		University: stringField(m, "university"),
		Course:     stringField(m, "course"),
		Subjects:   []string{},
	}
	if year, ok := m["year_of_study"].(float64); ok {
		hit.YearOfStudy = int(year)
	}
	if rating, ok := m["rating"].(float64); ok {
		hit.Rating = rating
	}
	if subjects, ok := m["subjects"].([]any); ok {
		for _, subject := range subjects {
			if s, ok := subject.(string); ok {
				hit.Subjects = append(hit.Subjects, s)
			}
		}
	}

	return hit, hit.ID != ""
}

func stringField(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return v
}

func quoteFilterValue(v string) string {
	return `"` + strings.ReplaceAll(v, `"`, ``) + `"`
}

func logIndexFailure(accountID uuid.UUID, err error) {
	log.L().Warn("failed to index profile",
		zap.String("account_id", accountID.String()),
		zap.Error(err))
}

func getStringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func strPtr(s string) *string {
	return &s
}
