package models

// Keyword is a normalised tag: lowercase, alphanumerics, spaces and hyphens.
type Keyword struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Title string `gorm:"uniqueIndex;size:100;not null" json:"title"`
}

// AssignedKeyword joins a keyword to any registered content object.
type AssignedKeyword struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	KeywordID   uint    `gorm:"not null;index" json:"keyword_id"`
	Keyword     Keyword `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"keyword"`
	ContentType string  `gorm:"size:100;not null;index:idx_assigned_target" json:"content_type"`
	ObjectPK    uint    `gorm:"not null;index:idx_assigned_target" json:"object_pk"`
}
