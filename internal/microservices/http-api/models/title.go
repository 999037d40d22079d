package models

// DefaultDescription is stored when a title is created without a description.
const DefaultDescription = "description not provided"

type Title struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string    `json:"name" gorm:"size:300;not null"`
	Year        *int      `json:"year" gorm:"index"`
	Description *string   `json:"description" gorm:"size:400"`
	CategoryID  *int64    `json:"-" gorm:"index"`
	Category    *Category `json:"category" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL;"`
	Genres      []Genre   `json:"genre" gorm:"many2many:title_genres;constraint:OnDelete:CASCADE;"`

	// Rating is only filled by queries that select it; never written.
	Rating *int `json:"rating" gorm:"->;-:migration"`
}

func (Title) TableName() string {
	return "titles"
}
