package models

import (
	"fmt"
	"time"
)

// PostContentType is the "app.model" label blog posts are registered under.
const PostContentType = "blog.post"

type Post struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	User        User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	Title       string    `gorm:"not null" json:"title"`
	Slug        string    `gorm:"uniqueIndex;size:200;not null" json:"slug"`
	Content     string    `gorm:"type:text" json:"content"`
	RatingCount int       `gorm:"default:0" json:"rating_count"`
	RatingSum   int       `gorm:"default:0" json:"rating_sum"`
	RatingAvg   float64   `gorm:"default:0" json:"rating_avg"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (p *Post) ContentID() uint { return p.ID }

func (p *Post) AbsoluteURL() string {
	return fmt.Sprintf("/blog/%s/", p.Slug)
}

// OwnerID is the author; comments by this user are flagged by_author.
func (p *Post) OwnerID() *uint {
	id := p.UserID
	return &id
}

func (p *Post) String() string { return p.Title }

// Ratings exposes the denormalised rating aggregates.
func (p *Post) Ratings() RatingSummary {
	return RatingSummary{Average: p.RatingAvg, Count: p.RatingCount, Sum: p.RatingSum}
}
