package models

import (
	"fmt"
	"time"
)

// ThreadedComment is a comment attached to any registered content object.
// RepliedToID points at another comment and is stored as submitted.
type ThreadedComment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ContentType string    `gorm:"size:100;not null;index:idx_comment_target" json:"content_type"`
	ObjectPK    uint      `gorm:"not null;index:idx_comment_target" json:"object_pk"`
	UserID      *uint     `gorm:"index" json:"user_id"`
	User        *User     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"user,omitempty"`
	UserName    string    `gorm:"size:50" json:"user_name"`
	UserEmail   string    `gorm:"size:254" json:"-"`
	UserURL     string    `gorm:"size:200" json:"user_url"`
	Comment     string    `gorm:"type:text;not null" json:"comment"`
	SubmitDate  time.Time `gorm:"index" json:"submit_date"`
	IPAddress   string    `gorm:"size:45" json:"-"`
	IsPublic    bool      `gorm:"default:true" json:"is_public"`
	IsRemoved   bool      `gorm:"default:false" json:"is_removed"`
	IsSpam      bool      `gorm:"default:false" json:"-"`
	ByAuthor    bool      `gorm:"default:false" json:"by_author"`
	RepliedToID *uint     `gorm:"index" json:"replied_to_id"`
}

// AbsoluteURL anchors the comment inside its content object's page.
func (c *ThreadedComment) AbsoluteURL(objectURL string) string {
	return fmt.Sprintf("%s#comment-%d", objectURL, c.ID)
}
