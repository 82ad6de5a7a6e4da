package models

import (
	"time"
)

// Thread is the persisted aggregate over a conversation's member messages.
// All of its fields except ID and MailboxID are derived: they are recomputed
// from the member messages whenever membership or member flags change. A
// thread has no existence independent of its messages.
type Thread struct {
	ID        string `gorm:"primaryKey;size:36" json:"id"`
	MailboxID uint   `gorm:"not null;index" json:"mailbox_id"`

	Subject      string `gorm:"size:500" json:"subject,omitempty"`
	Snippet      string `gorm:"size:500" json:"snippet,omitempty"`
	MessageCount int    `json:"message_count"`
	UnreadCount  int    `json:"unread_count"`

	// OR'd across member messages
	HasAttachments bool `gorm:"default:false" json:"has_attachments"`
	IsStarred      bool `gorm:"default:false" json:"is_starred"`
	IsImportant    bool `gorm:"default:false" json:"is_important"`
	// AND'd across member messages
	IsArchived bool `gorm:"default:false" json:"is_archived"`
	IsTrashed  bool `gorm:"default:false" json:"is_trashed"`

	LastMessageAt time.Time `gorm:"index" json:"last_message_at"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Mailbox Mailbox `gorm:"foreignKey:MailboxID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName returns the table name for Thread
func (Thread) TableName() string {
	return "threads"
}
