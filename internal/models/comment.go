package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment represents a comment on a post. Comments are append-only.
type Comment struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	PostID    string    `json:"post_id" gorm:"index"` // MongoDB ObjectID as hex
	AuthorID  string    `json:"author_id" gorm:"index"`
	Text      string    `json:"text" gorm:"size:500"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	Pending   bool      `json:"-" gorm:"-"` // optimistic entry not yet confirmed
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	Text string `json:"text" validate:"required,notblank,max=500"`
}
