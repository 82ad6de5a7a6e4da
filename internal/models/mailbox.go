package models

import (
	"time"
)

// Mailbox is a receiving address within a domain. Messages ingested over
// SMTP are classified and threaded per mailbox.
type Mailbox struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	LocalPart      string     `gorm:"not null;size:255" json:"local_part"`
	DomainID       uint       `gorm:"not null;index" json:"domain_id"`
	FullAddress    string     `gorm:"uniqueIndex;not null;size:255" json:"full_address"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	LastAccessedAt *time.Time `json:"last_accessed_at,omitempty"`

	// Relationships
	Domain   Domain    `gorm:"foreignKey:DomainID;constraint:OnDelete:CASCADE" json:"-"`
	Messages []Message `gorm:"foreignKey:MailboxID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName returns the table name for Mailbox
func (Mailbox) TableName() string {
	return "mailboxes"
}

// MailboxSummary is the listing shape for API responses: the mailbox plus
// the unread and spam tallies derived from its messages.
type MailboxSummary struct {
	Mailbox
	UnreadCount int64 `json:"unread_count"`
	SpamCount   int64 `json:"spam_count"`
}
