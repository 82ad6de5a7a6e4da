package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// AddressList stores a list of email addresses as a JSON text column.
type AddressList []string

// Value implements driver.Valuer.
func (l AddressList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (l *AddressList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported address list column type %T", value)
	}
}

// Message represents an email message received by a mailbox. The threading
// fields (MessageID, InReplyTo, References, ThreadID) drive conversation
// assembly; SpamScore and IsSpam hold the classifier verdict.
type Message struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	MailboxID uint   `gorm:"not null;index" json:"mailbox_id"`
	ThreadID  string `gorm:"size:36;index" json:"thread_id,omitempty"`

	SenderEmail  string      `gorm:"not null;size:255" json:"sender_email"`
	SenderName   string      `gorm:"size:255" json:"sender_name,omitempty"`
	ToAddresses  AddressList `gorm:"type:text" json:"to_addresses,omitempty"`
	CcAddresses  AddressList `gorm:"type:text" json:"cc_addresses,omitempty"`
	BccAddresses AddressList `gorm:"type:text" json:"bcc_addresses,omitempty"`

	Subject  string `json:"subject,omitempty"`
	Snippet  string `gorm:"size:500" json:"snippet,omitempty"`
	BodyText string `json:"body_text,omitempty"`
	BodyHTML string `json:"body_html,omitempty"`

	// RFC 5322 threading headers with angle brackets stripped. References
	// keeps the raw header value because ancestor order matters for thread
	// resolution.
	MessageID  string `gorm:"size:255;index" json:"message_id,omitempty"`
	InReplyTo  string `gorm:"size:255" json:"in_reply_to,omitempty"`
	References string `gorm:"type:text" json:"references,omitempty"`

	SizeBytes int64   `json:"size_bytes"`
	SpamScore float64 `json:"spam_score"`

	IsSpam         bool `gorm:"default:false;index" json:"is_spam"`
	IsRead         bool `gorm:"default:false;index" json:"is_read"`
	IsStarred      bool `gorm:"default:false" json:"is_starred"`
	IsImportant    bool `gorm:"default:false" json:"is_important"`
	IsArchived     bool `gorm:"default:false" json:"is_archived"`
	IsTrashed      bool `gorm:"default:false" json:"is_trashed"`
	IsDraft        bool `gorm:"default:false" json:"is_draft"`
	IsSent         bool `gorm:"default:false" json:"is_sent"`
	HasAttachments bool `gorm:"default:false" json:"has_attachments"`

	ReceivedAt time.Time `gorm:"autoCreateTime;index" json:"received_at"`

	// Relationships
	Mailbox     Mailbox      `gorm:"foreignKey:MailboxID;constraint:OnDelete:CASCADE" json:"-"`
	Attachments []Attachment `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE" json:"attachments,omitempty"`
}

// TableName returns the table name for Message
func (Message) TableName() string {
	return "messages"
}

// MessageListItem is a lightweight version for list views
type MessageListItem struct {
	ID              uint      `json:"id"`
	MailboxID       uint      `json:"mailbox_id"`
	ThreadID        string    `json:"thread_id,omitempty"`
	SenderEmail     string    `json:"sender_email"`
	SenderName      string    `json:"sender_name,omitempty"`
	Subject         string    `json:"subject,omitempty"`
	Snippet         string    `json:"snippet,omitempty"`
	IsRead          bool      `json:"is_read"`
	IsSpam          bool      `json:"is_spam"`
	SpamScore       float64   `json:"spam_score"`
	ReceivedAt      time.Time `json:"received_at"`
	AttachmentCount int       `json:"attachment_count"`
}
