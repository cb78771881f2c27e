package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ProgrammerOm1407/farm-marketplace/internal/events"
	"github.com/ProgrammerOm1407/farm-marketplace/internal/model"
	"github.com/ProgrammerOm1407/farm-marketplace/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ConversationService interface {
	Start(ctx context.Context, buyerID, listingID, farmerID, subject, message string) (*model.Conversation, error)
	Reply(ctx context.Context, userID, conversationID, content string) (*model.Message, error)
	List(ctx context.Context, userID string) ([]model.Conversation, error)
	ListMessages(ctx context.Context, userID, conversationID string) ([]model.Message, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
}

type conversationService struct {
	convRepo    repository.ConversationRepository
	listingRepo repository.ListingRepository
	publisher   events.Publisher
	log         *zap.Logger
}

func NewConversationService(
	convRepo repository.ConversationRepository,
	listingRepo repository.ListingRepository,
	publisher events.Publisher,
	log *zap.Logger,
) ConversationService {
	return &conversationService{convRepo: convRepo, listingRepo: listingRepo, publisher: publisher, log: log}
}

func (s *conversationService) Start(ctx context.Context, buyerID, listingID, farmerID, subject, message string) (*model.Conversation, error) {
	if listingID == "" || farmerID == "" || strings.TrimSpace(subject) == "" || strings.TrimSpace(message) == "" {
		return nil, invalid("missing required fields")
	}
	if buyerID == farmerID {
		return nil, invalid("you cannot message yourself")
	}
	if _, err := s.listingRepo.FindByID(ctx, listingID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	cv, err := s.convRepo.FindOrCreate(ctx, listingID, buyerID, farmerID, subject)
	if err != nil {
		return nil, err
	}
	msg := &model.Message{
		ConversationID: cv.ID,
		SenderID:       buyerID,
		Content:        message,
	}
	if err := s.convRepo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}
	s.publishMessage(ctx, msg)
	return cv, nil
}

func (s *conversationService) Reply(ctx context.Context, userID, conversationID, content string) (*model.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, invalid("message is required")
	}
	cv, err := s.convRepo.FindByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if userID != cv.BuyerID && userID != cv.FarmerID {
		return nil, forbidden("you are not part of this conversation")
	}
	msg := &model.Message{
		ConversationID: cv.ID,
		SenderID:       userID,
		Content:        content,
	}
	if err := s.convRepo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}
	s.publishMessage(ctx, msg)
	return msg, nil
}

func (s *conversationService) List(ctx context.Context, userID string) ([]model.Conversation, error) {
	return s.convRepo.ListByUser(ctx, userID)
}

// ListMessages returns the thread and marks the other side's messages read.
func (s *conversationService) ListMessages(ctx context.Context, userID, conversationID string) ([]model.Message, error) {
	cv, err := s.convRepo.FindByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if userID != cv.BuyerID && userID != cv.FarmerID {
		return nil, forbidden("you are not part of this conversation")
	}
	msgs, err := s.convRepo.ListMessages(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if err := s.convRepo.MarkRead(ctx, conversationID, userID); err != nil {
		s.log.Warn("mark read failed", zap.String("conversation_id", conversationID), zap.Error(err))
	}
	return msgs, nil
}

func (s *conversationService) CountUnread(ctx context.Context, userID string) (int64, error) {
	return s.convRepo.CountUnread(ctx, userID)
}

func (s *conversationService) publishMessage(ctx context.Context, msg *model.Message) {
	if err := s.publisher.Publish(ctx, events.SubjectMessageCreated, msg); err != nil {
		s.log.Warn("event publish failed",
			zap.String("subject", events.SubjectMessageCreated),
			zap.String("conversation_id", msg.ConversationID),
			zap.Error(err))
	}
}
