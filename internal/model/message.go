package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Message struct {
	ID             string    `gorm:"type:char(36);primaryKey" json:"id"`
	ConversationID string    `gorm:"column:conversation_id;type:char(36);index" json:"conversationId"`
	SenderID       string    `gorm:"column:sender_id;type:varchar(128);index" json:"senderId"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	Read           bool      `gorm:"default:false" json:"read"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (Message) TableName() string {
	return "messages"
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
