package models

import "gorm.io/gorm"

type Title struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string    `json:"name" gorm:"size:256;not null;index"`
	Year        int       `json:"year" gorm:"not null;index"`
	Description *string   `json:"description,omitempty" gorm:"type:text"`
	CategoryID  *int64    `json:"-" gorm:"index"`
	Category    *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL;"`
	Genres      []Genre   `json:"genre" gorm:"many2many:genre_titles;"`

	// Rating is filled by queries that select the review average; never written.
	Rating float64 `json:"rating" gorm:"->;-:migration"`
}

func (Title) TableName() string {
	return "titles"
}

// BeforeDelete drops the genre links; reviews go with the title via FK cascade.
func (t *Title) BeforeDelete(tx *gorm.DB) error {
	return tx.Where("title_id = ?", t.ID).Delete(&GenreTitle{}).Error
}
