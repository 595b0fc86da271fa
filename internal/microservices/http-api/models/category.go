package models

import "gorm.io/gorm"

// NameSlug is the shape shared by categories and genres.
type NameSlug struct {
	ID   int64  `gorm:"primaryKey;autoIncrement" json:"-"`
	Name string `gorm:"size:256;uniqueIndex;not null" json:"name"`
	Slug string `gorm:"size:50;uniqueIndex;not null" json:"slug"`
}

type Category struct {
	NameSlug
}

func (Category) TableName() string {
	return "categories"
}

// BeforeDelete detaches titles so deleting a category never deletes them.
func (c *Category) BeforeDelete(tx *gorm.DB) error {
	return tx.Model(&Title{}).Where("category_id = ?", c.ID).Update("category_id", nil).Error
}

type Genre struct {
	NameSlug
}

func (Genre) TableName() string {
	return "genres"
}

// BeforeDelete removes only the genre-title links.
func (g *Genre) BeforeDelete(tx *gorm.DB) error {
	return tx.Where("genre_id = ?", g.ID).Delete(&GenreTitle{}).Error
}

// Base exposes the shared fields; promoted to *Category and *Genre.
func (n *NameSlug) Base() *NameSlug {
	return n
}
