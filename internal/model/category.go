package model

import "time"

// Category groups tasks by area (work, health, study, etc.).
// A user cannot own two categories with the same name.
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OwnerID   uint      `gorm:"index:idx_owner_category_name,unique" json:"ownerId"`
	Name      string    `gorm:"index:idx_owner_category_name,unique" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
	Tasks     []Task    `gorm:"foreignKey:CategoryID" json:"-"`
}
