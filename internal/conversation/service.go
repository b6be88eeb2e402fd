// Package conversation manages chat logs: the per-source conversations
// seeded during ingestion and free-standing general chats.
package conversation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/studyloom/studyloom/internal/generation"
	"github.com/studyloom/studyloom/internal/model"
	"github.com/studyloom/studyloom/internal/store"
	"github.com/studyloom/studyloom/pkg/locking"
	"github.com/studyloom/studyloom/pkg/logging"
)

// HistoryWindow is how many messages, counting the incoming question, are
// sent to the model per turn. Older messages stay persisted but are not
// part of the request.
const HistoryWindow = 10

// Service reads and writes conversations and relays questions to the
// generation backend with source context attached.
type Service struct {
	store   store.Store
	gateway generation.Gateway
	locks   *locking.KeyedMutex
	log     zerolog.Logger
}

// NewService wires the conversation service.
func NewService(st store.Store, gw generation.Gateway) *Service {
	return &Service{
		store:   st,
		gateway: gw,
		locks:   locking.NewKeyedMutex(),
		log:     logging.GetLogger("conversation"),
	}
}

// Create starts a general conversation not linked to any source.
func (s *Service) Create(ctx context.Context, ownerID, title string) (*model.Conversation, error) {
	if title == "" {
		title = "New Chat"
	}
	now := time.Now().UTC()
	conv := &model.Conversation{
		ID:           uuid.New().String(),
		OwnerID:      ownerID,
		Title:        title,
		Kind:         model.KindGeneral,
		Active:       true,
		LastActivity: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.PutConversation(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// Get returns one conversation with its full message log.
func (s *Service) Get(ctx context.Context, ownerID, id string) (*model.Conversation, error) {
	return s.store.GetConversation(ctx, ownerID, id)
}

// List returns the owner's active conversations, most recent activity
// first.
func (s *Service) List(ctx context.Context, ownerID string) ([]*model.Conversation, error) {
	all, err := s.store.ListConversations(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, c := range all {
		if c.Active {
			out = append(out, c)
		}
	}
	return out, nil
}

// Rename sets the conversation title.
func (s *Service) Rename(ctx context.Context, ownerID, id, title string) (*model.Conversation, error) {
	if title == "" {
		return nil, &model.ValidationError{Field: "title", Message: "title cannot be empty"}
	}
	s.locks.Lock(id)
	defer s.locks.Unlock(id)

	conv, err := s.store.GetConversation(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	conv.Title = title
	conv.UpdatedAt = time.Now().UTC()
	if err := s.store.PutConversation(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// SoftDelete hides a conversation from listings without destroying its
// log. Source-linked conversations are removed for real only by their
// source's cascade.
func (s *Service) SoftDelete(ctx context.Context, ownerID, id string) error {
	s.locks.Lock(id)
	defer s.locks.Unlock(id)

	conv, err := s.store.GetConversation(ctx, ownerID, id)
	if err != nil {
		return err
	}
	conv.Active = false
	conv.UpdatedAt = time.Now().UTC()
	return s.store.PutConversation(ctx, conv)
}

// Clear empties the message log but keeps the conversation.
func (s *Service) Clear(ctx context.Context, ownerID, id string) (*model.Conversation, error) {
	s.locks.Lock(id)
	defer s.locks.Unlock(id)

	conv, err := s.store.GetConversation(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	conv.Messages = nil
	now := time.Now().UTC()
	conv.LastActivity = now
	conv.UpdatedAt = now
	if err := s.store.PutConversation(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// Ask appends the user's question, sends the last HistoryWindow messages
// plus the source context to the backend, and persists both the question
// and the reply atomically. The two messages are written in one Put so a
// crash never records a question without its answer.
func (s *Service) Ask(ctx context.Context, ownerID, id, question string) (*model.Message, error) {
	if question == "" {
		return nil, &model.ValidationError{Field: "message", Message: "message is required"}
	}

	s.locks.Lock(id)
	defer s.locks.Unlock(id)

	conv, err := s.store.GetConversation(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	contextText, err := s.sourceContext(ctx, conv)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	userMsg := model.Message{Role: model.RoleUser, Content: question, Timestamp: now}
	conv.Messages = append(conv.Messages, userMsg)

	window := conv.RecentWindow(HistoryWindow)
	reply, err := s.gateway.ChatReply(ctx, window, contextText)
	if err != nil {
		s.log.Warn().Err(err).Str("conversation_id", id).Msg("Chat reply failed")
		return nil, err
	}

	assistantMsg := model.Message{Role: model.RoleAssistant, Content: reply, Timestamp: time.Now().UTC()}
	conv.Messages = append(conv.Messages, assistantMsg)
	conv.LastActivity = assistantMsg.Timestamp
	conv.UpdatedAt = assistantMsg.Timestamp
	if err := s.store.PutConversation(ctx, conv); err != nil {
		return nil, err
	}
	return &assistantMsg, nil
}

// sourceContext loads the linked source and renders the context text the
// backend is grounded on. General conversations carry no context. A
// deleted source is treated as gone, not as an empty context.
func (s *Service) sourceContext(ctx context.Context, conv *model.Conversation) (string, error) {
	switch conv.Kind {
	case model.KindGeneral:
		return "", nil
	case model.KindTopic:
		t, err := s.store.GetTopic(ctx, conv.OwnerID, conv.SourceID)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Topic: %s\nContent: %s", t.Title, t.ContextText()), nil
	case model.KindDocument:
		d, err := s.store.GetDocument(ctx, conv.OwnerID, conv.SourceID)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Document: %s\nContent: %s", d.OriginalName, d.ExtractedText), nil
	case model.KindWebsite:
		w, err := s.store.GetWebsite(ctx, conv.OwnerID, conv.SourceID)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Website: %s\nContent: %s", w.URL, w.ExtractedContent), nil
	}
	return "", fmt.Errorf("unknown conversation kind %q", conv.Kind)
}
