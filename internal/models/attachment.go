package models

// Attachment is the metadata row for a stored attachment blob. FilePath is
// the relative path handed back by the storage layer.
type Attachment struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	MessageID   uint   `gorm:"not null;index" json:"message_id"`
	Filename    string `gorm:"size:255" json:"filename"`
	ContentType string `gorm:"size:100" json:"content_type"`
	FilePath    string `gorm:"size:500" json:"file_path"`
	SizeBytes   int64  `json:"size_bytes"`

	Message Message `gorm:"belongsTo:Message;foreignKey:MessageID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Attachment) TableName() string {
	return "attachments"
}
