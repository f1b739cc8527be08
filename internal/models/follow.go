package models

import "time"

// Follow represents a follow relationship
type Follow struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	FollowerID  string    `json:"follower_id" gorm:"index;uniqueIndex:idx_follower_following"`
	FollowingID string    `json:"following_id" gorm:"index;uniqueIndex:idx_follower_following"`
	CreatedAt   time.Time `json:"created_at"`
}

// FollowStatus is returned by the follow endpoints.
type FollowStatus struct {
	UserID    string `json:"user_id"`
	Following bool   `json:"following"`
}
