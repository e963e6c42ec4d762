package services

import (
	"context"
	"fmt"
	"time"

	"myblog/internal/contenttypes"
	"myblog/internal/models"
	"myblog/internal/utils"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type RatingService struct {
	db       *gorm.DB
	registry *contenttypes.Registry
	log      zerolog.Logger
}

func NewRatingService(db *gorm.DB, registry *contenttypes.Registry, log zerolog.Logger) *RatingService {
	return &RatingService{db: db, registry: registry, log: log.With().Str("component", "ratings").Logger()}
}

// Save records a rating and refreshes the target's aggregates. An
// authenticated user's earlier rating of the same object is overwritten;
// anonymous ratings always add a row.
//
// The lookup and the write are not atomic across requests: two concurrent
// first ratings by one user can both insert.
func (s *RatingService) Save(ctx context.Context, label string, target contenttypes.Object, value int, user *models.User) (*models.Rating, models.RatingSummary, error) {
	var rating models.Rating
	var summary models.RatingSummary

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found := false
		if user != nil {
			// A miss is the common case, so Find rather than First.
			result := tx.Where("content_type = ? AND object_pk = ? AND user_id = ?", label, target.ContentID(), user.ID).
				Limit(1).Find(&rating)
			if result.Error != nil {
				return fmt.Errorf("failed to look up rating: %w", result.Error)
			}
			found = result.RowsAffected > 0
		}

		rating.Value = value
		rating.RatingDate = time.Now()
		if found {
			if err := tx.Save(&rating).Error; err != nil {
				return fmt.Errorf("failed to update rating: %w", err)
			}
		} else {
			rating.ContentType = label
			rating.ObjectPK = target.ContentID()
			if user != nil {
				rating.UserID = &user.ID
			}
			if err := tx.Create(&rating).Error; err != nil {
				return fmt.Errorf("failed to save rating: %w", err)
			}
		}

		var err error
		summary, err = s.refresh(tx, label, target.ContentID())
		return err
	})
	if err != nil {
		return nil, models.RatingSummary{}, err
	}

	utils.GetCache().Delete(utils.ObjectKey(label, target.ContentID()))
	s.log.Info().
		Str("content_type", label).
		Uint("object_pk", target.ContentID()).
		Int("value", value).
		Bool("authenticated", user != nil).
		Msg("Rating saved")
	return &rating, summary, nil
}

// refresh recomputes count/sum/average and writes them to the object's row
// when its type is rateable.
func (s *RatingService) refresh(tx *gorm.DB, label string, pk uint) (models.RatingSummary, error) {
	var agg struct {
		Count int
		Sum   int
	}
	err := tx.Model(&models.Rating{}).
		Select("COUNT(*) AS count, COALESCE(SUM(value), 0) AS sum").
		Where("content_type = ? AND object_pk = ?", label, pk).
		Scan(&agg).Error
	if err != nil {
		return models.RatingSummary{}, fmt.Errorf("failed to aggregate ratings: %w", err)
	}

	summary := models.RatingSummary{Count: agg.Count, Sum: agg.Sum}
	if agg.Count > 0 {
		summary.Average = float64(agg.Sum) / float64(agg.Count)
	}

	t, ok := s.registry.Lookup(label)
	if !ok || t.Table == "" {
		return summary, nil
	}
	err = tx.Table(t.Table).Where("id = ?", pk).Updates(map[string]any{
		"rating_count": summary.Count,
		"rating_sum":   summary.Sum,
		"rating_avg":   summary.Average,
	}).Error
	if err != nil {
		return models.RatingSummary{}, fmt.Errorf("failed to update rating aggregates: %w", err)
	}
	return summary, nil
}
