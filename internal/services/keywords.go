package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"myblog/internal/models"

	"gorm.io/gorm"
)

// NormalizeKeywords splits comma separated text into keyword titles: only
// ASCII letters, digits, hyphens and spaces survive, then each token is
// trimmed and lower-cased. Empty tokens are dropped; duplicates are kept.
func NormalizeKeywords(text string) []string {
	var titles []string
	for _, token := range strings.Split(text, ",") {
		var b strings.Builder
		for _, r := range token {
			if isKeywordRune(r) {
				b.WriteRune(r)
			}
		}
		title := strings.ToLower(strings.TrimSpace(b.String()))
		if title != "" {
			titles = append(titles, title)
		}
	}
	return titles
}

func isKeywordRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == ' '
}

// EncodeKeywords renders resolved keywords as "id1,id2|title1, title2".
func EncodeKeywords(ids, titles []string) string {
	return strings.Join(ids, ",") + "|" + strings.Join(titles, ", ")
}

// KeywordChoice is one keyword offered for toggling on an object.
type KeywordChoice struct {
	ID       uint   `json:"id"`
	Title    string `json:"title"`
	Assigned bool   `json:"assigned"`
}

type KeywordService struct {
	db *gorm.DB
}

func NewKeywordService(db *gorm.DB) *KeywordService {
	return &KeywordService{db: db}
}

// Resolve normalises text and returns the ids and titles of the matching
// keywords, creating missing ones. Ids are unique and keep first-seen order.
func (s *KeywordService) Resolve(ctx context.Context, text string) ([]string, []string, error) {
	ids, titles := []string{}, []string{}
	seen := make(map[uint]bool)

	for _, title := range NormalizeKeywords(text) {
		kw, err := s.getOrCreate(ctx, title)
		if err != nil {
			return nil, nil, err
		}
		if seen[kw.ID] {
			continue
		}
		seen[kw.ID] = true
		ids = append(ids, strconv.FormatUint(uint64(kw.ID), 10))
		titles = append(titles, title)
	}
	return ids, titles, nil
}

func (s *KeywordService) getOrCreate(ctx context.Context, title string) (*models.Keyword, error) {
	var kw models.Keyword
	err := s.db.WithContext(ctx).Where(models.Keyword{Title: title}).FirstOrCreate(&kw).Error
	if err == nil {
		return &kw, nil
	}
	// Lost a race with a concurrent create; the row exists now.
	if lookupErr := s.db.WithContext(ctx).Where("title = ?", title).First(&kw).Error; lookupErr == nil {
		return &kw, nil
	}
	return nil, fmt.Errorf("failed to get or create keyword %q: %w", title, err)
}

// Assign replaces the keywords of an object with the given comma separated
// keyword ids. Unknown ids are ignored.
func (s *KeywordService) Assign(ctx context.Context, label string, pk uint, idList string) error {
	var ids []uint
	seen := make(map[uint]bool)
	for _, raw := range strings.Split(idList, ",") {
		id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
		if err != nil || id == 0 || seen[uint(id)] {
			continue
		}
		seen[uint(id)] = true
		ids = append(ids, uint(id))
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("content_type = ? AND object_pk = ?", label, pk).
			Delete(&models.AssignedKeyword{}).Error; err != nil {
			return fmt.Errorf("failed to clear keywords: %w", err)
		}
		if len(ids) == 0 {
			return nil
		}

		var existing []models.Keyword
		if err := tx.Where("id IN ?", ids).Find(&existing).Error; err != nil {
			return fmt.Errorf("failed to load keywords: %w", err)
		}
		known := make(map[uint]bool, len(existing))
		for _, k := range existing {
			known[k.ID] = true
		}

		var rows []models.AssignedKeyword
		for _, id := range ids {
			if known[id] {
				rows = append(rows, models.AssignedKeyword{KeywordID: id, ContentType: label, ObjectPK: pk})
			}
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to assign keywords: %w", err)
		}
		return nil
	})
}

// Assigned returns an object's keywords in assignment order.
func (s *KeywordService) Assigned(ctx context.Context, label string, pk uint) ([]models.Keyword, error) {
	var rows []models.AssignedKeyword
	err := s.db.WithContext(ctx).Preload("Keyword").
		Where("content_type = ? AND object_pk = ?", label, pk).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load assigned keywords: %w", err)
	}
	keywords := make([]models.Keyword, 0, len(rows))
	for _, r := range rows {
		keywords = append(keywords, r.Keyword)
	}
	return keywords, nil
}

// Choices lists every keyword ordered by title, flagging those assigned to
// the given object.
func (s *KeywordService) Choices(ctx context.Context, label string, pk uint) ([]KeywordChoice, error) {
	var all []models.Keyword
	if err := s.db.WithContext(ctx).Order("title ASC").Find(&all).Error; err != nil {
		return nil, fmt.Errorf("failed to list keywords: %w", err)
	}

	assigned := make(map[uint]bool)
	if label != "" && pk != 0 {
		current, err := s.Assigned(ctx, label, pk)
		if err != nil {
			return nil, err
		}
		for _, k := range current {
			assigned[k.ID] = true
		}
	}

	choices := make([]KeywordChoice, 0, len(all))
	for _, k := range all {
		choices = append(choices, KeywordChoice{ID: k.ID, Title: k.Title, Assigned: assigned[k.ID]})
	}
	return choices, nil
}

// SplitAssigned turns keywords into the "ids" and "titles" halves of the
// encoded form.
func SplitAssigned(keywords []models.Keyword) (string, string) {
	ids := make([]string, 0, len(keywords))
	titles := make([]string, 0, len(keywords))
	for _, k := range keywords {
		ids = append(ids, strconv.FormatUint(uint64(k.ID), 10))
		titles = append(titles, k.Title)
	}
	return strings.Join(ids, ","), strings.Join(titles, ", ")
}
