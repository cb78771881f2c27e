package repository

import (
	"context"
	"errors"

	"github.com/ProgrammerOm1407/farm-marketplace/internal/model"
	"gorm.io/gorm"
)

type ConversationRepository interface {
	Create(ctx context.Context, cv *model.Conversation) error
	FindOrCreate(ctx context.Context, listingID, buyerID, farmerID, subject string) (*model.Conversation, error)
	FindByID(ctx context.Context, id string) (*model.Conversation, error)
	ListByUser(ctx context.Context, userID string) ([]model.Conversation, error)
	CreateMessage(ctx context.Context, m *model.Message) error
	ListMessages(ctx context.Context, conversationID string) ([]model.Message, error)
	MarkRead(ctx context.Context, conversationID, readerID string) error
	CountUnread(ctx context.Context, userID string) (int64, error)
}

type conversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepository{db: db}
}

func (r *conversationRepository) Create(ctx context.Context, cv *model.Conversation) error {
	return r.db.WithContext(ctx).Create(cv).Error
}

func (r *conversationRepository) FindOrCreate(ctx context.Context, listingID, buyerID, farmerID, subject string) (*model.Conversation, error) {
	var cv model.Conversation
	err := r.db.WithContext(ctx).
		Where("listing_id = ? AND buyer_id = ?", listingID, buyerID).
		First(&cv).Error
	if err == nil {
		return &cv, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	cv = model.Conversation{
		ListingID: listingID,
		BuyerID:   buyerID,
		FarmerID:  farmerID,
		Subject:   subject,
	}
	if err := r.db.WithContext(ctx).Create(&cv).Error; err != nil {
		return nil, err
	}
	return &cv, nil
}

func (r *conversationRepository) FindByID(ctx context.Context, id string) (*model.Conversation, error) {
	var cv model.Conversation
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&cv).Error; err != nil {
		return nil, err
	}
	return &cv, nil
}

func (r *conversationRepository) ListByUser(ctx context.Context, userID string) ([]model.Conversation, error) {
	var list []model.Conversation
	if err := r.db.WithContext(ctx).
		Where("buyer_id = ? OR farmer_id = ?", userID, userID).
		Order("updated_at DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *conversationRepository) CreateMessage(ctx context.Context, m *model.Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *conversationRepository) ListMessages(ctx context.Context, conversationID string) ([]model.Message, error) {
	var list []model.Message
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// MarkRead flags every message in the conversation not sent by the reader.
func (r *conversationRepository) MarkRead(ctx context.Context, conversationID, readerID string) error {
	return r.db.WithContext(ctx).
		Model(&model.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND `read` = ?", conversationID, readerID, false).
		Update("read", true).Error
}

// CountUnread counts messages addressed to the user across all of their
// conversations, feeding the dashboard badge.
func (r *conversationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Message{}).
		Joins("JOIN conversations ON conversations.id = messages.conversation_id").
		Where("(conversations.buyer_id = ? OR conversations.farmer_id = ?)", userID, userID).
		Where("messages.sender_id <> ? AND messages.`read` = ?", userID, false).
		Count(&n).Error
	return n, err
}
