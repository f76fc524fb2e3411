package models

import "time"

type Article struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	Excerpt     string    `gorm:"type:text" json:"excerpt"`
	Category    string    `gorm:"type:varchar(64);index" json:"category"`
	Tags        string    `json:"tags"`
	Image       string    `json:"image"`
	Author      string    `gorm:"type:varchar(36);index;not null" json:"author"`
	AuthorName  string    `json:"authorName"`
	AuthorEmail string    `json:"authorEmail"`
	Published   bool      `gorm:"not null;default:true" json:"published"`
	ReadTime    string    `json:"readTime"`
	Views       int       `gorm:"not null;default:0" json:"views"`
	Likes       int       `gorm:"not null;default:0" json:"likes"`
	CreatedAt   time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	LikedBy []string `gorm:"-" json:"likedBy"`
}
