package domain

import "time"

// Guide is a tour guide. Guides are never hard-deleted; Active gates
// eligibility for new visits.
type Guide struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name      string    `json:"name" gorm:"type:text;not null"`
	Phone     string    `json:"phone" gorm:"type:text;not null"`
	Active    bool      `json:"active" gorm:"not null;default:true;index"`
	CreatedAt time.Time `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Guide) TableName() string { return "guides" }
