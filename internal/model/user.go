package model

import "time"

type User struct {
	ID             uint      `gorm:"primaryKey"`
	Email          string    `gorm:"size:255;uniqueIndex;not null"`
	HashedPassword string    `gorm:"size:255;not null"`
	Name           string    `gorm:"size:255;not null"`
	Avatar         string    `gorm:"type:text"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`

	Tasks []Task `gorm:"constraint:OnDelete:CASCADE"`
}
