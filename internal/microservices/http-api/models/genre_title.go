package models

// explicit join model for titles <-> genres
type GenreTitle struct {
	TitleID int64 `json:"title_id" gorm:"primaryKey"`
	GenreID int64 `json:"genre_id" gorm:"primaryKey;index"`
}

func (GenreTitle) TableName() string {
	return "genre_titles"
}
