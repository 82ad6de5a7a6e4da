package models

import (
	"time"
)

// Domain is a mail domain the server accepts mail for. Inactive domains
// are rejected at RCPT time.
type Domain struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null;size:255" json:"name"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Mailboxes []Mailbox `gorm:"foreignKey:DomainID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Domain) TableName() string {
	return "domains"
}
