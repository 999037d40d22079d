package models

// Taxon is the shared shape of categories and genres: a unique name and a
// unique slug used as the lookup key in URLs and title payloads.
// Repositories address it with an explicit table name.
type Taxon struct {
	ID   int64  `json:"-" gorm:"primaryKey;autoIncrement"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type Category struct {
	ID   int64  `json:"-" gorm:"primaryKey;autoIncrement"`
	Name string `json:"name" gorm:"size:256;uniqueIndex:idx_categories_name;not null"`
	Slug string `json:"slug" gorm:"size:50;uniqueIndex:idx_categories_slug;not null"`
}

func (Category) TableName() string {
	return "categories"
}

type Genre struct {
	ID   int64  `json:"-" gorm:"primaryKey;autoIncrement"`
	Name string `json:"name" gorm:"size:256;uniqueIndex:idx_genres_name;not null"`
	Slug string `json:"slug" gorm:"size:50;uniqueIndex:idx_genres_slug;not null"`
}

func (Genre) TableName() string {
	return "genres"
}
