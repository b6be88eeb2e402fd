// Package store persists the four record kinds. Every record is keyed by
// an opaque id plus an owner id, and every lookup is owner-scoped; a
// record owned by someone else is indistinguishable from a missing one.
package store

import (
	"context"
	"fmt"

	"github.com/studyloom/studyloom/internal/model"
)

// NotFoundError reports a referenced record that is absent or not owned
// by the caller.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// Store is the persistence boundary. Put is an upsert; services perform
// read-modify-write under their own per-entity locks, so the store itself
// needs no optimistic concurrency check.
type Store interface {
	PutTopic(ctx context.Context, t *model.Topic) error
	GetTopic(ctx context.Context, ownerID, id string) (*model.Topic, error)
	ListTopics(ctx context.Context, ownerID string) ([]*model.Topic, error)
	DeleteTopic(ctx context.Context, ownerID, id string) error

	PutDocument(ctx context.Context, d *model.Document) error
	GetDocument(ctx context.Context, ownerID, id string) (*model.Document, error)
	ListDocuments(ctx context.Context, ownerID string) ([]*model.Document, error)
	DeleteDocument(ctx context.Context, ownerID, id string) error

	PutWebsite(ctx context.Context, w *model.Website) error
	GetWebsite(ctx context.Context, ownerID, id string) (*model.Website, error)
	ListWebsites(ctx context.Context, ownerID string) ([]*model.Website, error)
	DeleteWebsite(ctx context.Context, ownerID, id string) error

	PutConversation(ctx context.Context, c *model.Conversation) error
	GetConversation(ctx context.Context, ownerID, id string) (*model.Conversation, error)
	ListConversations(ctx context.Context, ownerID string) ([]*model.Conversation, error)
	DeleteConversation(ctx context.Context, ownerID, id string) error

	PutQuiz(ctx context.Context, q *model.Quiz) error
	GetQuiz(ctx context.Context, ownerID, id string) (*model.Quiz, error)
	ListQuizzes(ctx context.Context, ownerID string) ([]*model.Quiz, error)
	DeleteQuiz(ctx context.Context, ownerID, id string) error

	Close() error
}
