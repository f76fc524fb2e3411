package models

import "time"

// ArticleLike is one member of an article's likedBy set.
// The (ArticleID, UserID) pair is unique so a user can like an article once.
type ArticleLike struct {
	ArticleID string    `gorm:"type:varchar(36);primaryKey"`
	UserID    string    `gorm:"type:varchar(36);primaryKey;index"`
	CreatedAt time.Time
}

// AuthorLike is one member of an author's likedBy set.
type AuthorLike struct {
	AuthorID  string    `gorm:"type:varchar(36);primaryKey"`
	UserID    string    `gorm:"type:varchar(36);primaryKey;index"`
	CreatedAt time.Time
}

// Follow is one member of an author's followers set.
type Follow struct {
	AuthorID   string    `gorm:"type:varchar(36);primaryKey"`
	FollowerID string    `gorm:"type:varchar(36);primaryKey;index"`
	CreatedAt  time.Time
}
