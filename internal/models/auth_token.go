package models

import "time"

// AuthToken is an opaque bearer credential bound one-to-one to a user.
type AuthToken struct {
	Key       string    `gorm:"type:varchar(40);primarykey" json:"key"`
	UserID    uint64    `gorm:"uniqueIndex;not null" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
