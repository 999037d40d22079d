package models

import "time"

const (
	MinScore = 0
	MaxScore = 10
)

type Review struct {
	ID       int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Text     string    `json:"text" gorm:"size:400;not null"`
	Score    int       `json:"score" gorm:"not null;check:chk_reviews_score,score >= 0 AND score <= 10"`
	AuthorID string    `json:"-" gorm:"type:varchar(36);not null;uniqueIndex:idx_reviews_author_title,priority:1"`
	TitleID  int64     `json:"-" gorm:"not null;uniqueIndex:idx_reviews_author_title,priority:2;index"`
	PubDate  time.Time `json:"pub_date" gorm:"autoCreateTime;index"`

	// Associations
	Author User  `json:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE;"`
	Title  Title `json:"-" gorm:"foreignKey:TitleID;constraint:OnDelete:CASCADE;"`
}

func (Review) TableName() string {
	return "reviews"
}
