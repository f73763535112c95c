package models

import (
	"time"
)

type Post struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	GUID      string    `json:"guid" gorm:"type:text;uniqueIndex;not null"`
	AuthorID  int64     `json:"authorID" gorm:"index:idx_posts_author_created,priority:1;index:idx_posts_author_updated,priority:1;not null"`
	Author    Person    `json:"-" gorm:"foreignKey:AuthorID;references:ID;constraint:OnDelete:CASCADE;"`
	Type      string    `json:"type" gorm:"type:text;index;not null"`
	Text      string    `json:"text" gorm:"type:text"`
	Public    bool      `json:"public" gorm:"not null"`
	Pending   bool      `json:"pending" gorm:"not null"`
	CreatedAt time.Time `json:"cdate" gorm:"index:idx_posts_author_created,priority:2;not null"`
	UpdatedAt time.Time `json:"mdate" gorm:"index:idx_posts_author_updated,priority:2;index;not null"`
}

type PostVisibility struct {
	PostID   int64  `json:"postID" gorm:"primaryKey;autoIncrement:false"`
	Post     Post   `json:"-" gorm:"foreignKey:PostID;references:ID;constraint:OnDelete:CASCADE;"`
	AspectID int64  `json:"aspectID" gorm:"primaryKey;autoIncrement:false;index"`
	Aspect   Aspect `json:"-" gorm:"foreignKey:AspectID;references:ID;constraint:OnDelete:CASCADE;"`
	Hidden   bool   `json:"hidden" gorm:"not null"`
}
