package models

import (
	"time"
)

// Rating is one vote on a content object. Authenticated users own at most
// one row per object (enforced in code, not by an index); anonymous votes
// each get their own row.
type Rating struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Value       int       `gorm:"not null" json:"value"`
	RatingDate  time.Time `json:"rating_date"`
	ContentType string    `gorm:"size:100;not null;index:idx_rating_target" json:"content_type"`
	ObjectPK    uint      `gorm:"not null;index:idx_rating_target" json:"object_pk"`
	UserID      *uint     `gorm:"index" json:"user_id"`
}

// RatingSummary is the aggregate returned to asynchronous rating requests.
type RatingSummary struct {
	Average float64 `json:"rating_avg"`
	Count   int     `json:"rating_count"`
	Sum     int     `json:"rating_sum"`
}
