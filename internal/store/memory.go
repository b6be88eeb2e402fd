package store

import (
	"context"
	"sort"
	"sync"

	"github.com/studyloom/studyloom/internal/model"
)

// MemoryStore is an in-memory Store used by tests and as a fallback when
// no database path is configured. Records are copied on the way in and
// out, so callers never share memory with the store.
type MemoryStore struct {
	mu            sync.RWMutex
	topics        map[string]*model.Topic
	documents     map[string]*model.Document
	websites      map[string]*model.Website
	conversations map[string]*model.Conversation
	quizzes       map[string]*model.Quiz
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		topics:        make(map[string]*model.Topic),
		documents:     make(map[string]*model.Document),
		websites:      make(map[string]*model.Website),
		conversations: make(map[string]*model.Conversation),
		quizzes:       make(map[string]*model.Quiz),
	}
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) PutTopic(ctx context.Context, t *model.Topic) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.topics[t.ID] = t.Clone()
	return nil
}

func (s *MemoryStore) GetTopic(ctx context.Context, ownerID, id string) (*model.Topic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.topics[id]
	if !ok || t.OwnerID != ownerID {
		return nil, &NotFoundError{Kind: "topic", ID: id}
	}
	return t.Clone(), nil
}

func (s *MemoryStore) ListTopics(ctx context.Context, ownerID string) ([]*model.Topic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*model.Topic
	for _, t := range s.topics {
		if t.OwnerID == ownerID {
			out = append(out, t.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) DeleteTopic(ctx context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.topics[id]
	if !ok || t.OwnerID != ownerID {
		return &NotFoundError{Kind: "topic", ID: id}
	}
	delete(s.topics, id)
	return nil
}

func (s *MemoryStore) PutDocument(ctx context.Context, d *model.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[d.ID] = d.Clone()
	return nil
}

func (s *MemoryStore) GetDocument(ctx context.Context, ownerID, id string) (*model.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.documents[id]
	if !ok || d.OwnerID != ownerID {
		return nil, &NotFoundError{Kind: "document", ID: id}
	}
	return d.Clone(), nil
}

func (s *MemoryStore) ListDocuments(ctx context.Context, ownerID string) ([]*model.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*model.Document
	for _, d := range s.documents {
		if d.OwnerID == ownerID {
			out = append(out, d.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) DeleteDocument(ctx context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.documents[id]
	if !ok || d.OwnerID != ownerID {
		return &NotFoundError{Kind: "document", ID: id}
	}
	delete(s.documents, id)
	return nil
}

func (s *MemoryStore) PutWebsite(ctx context.Context, w *model.Website) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.websites[w.ID] = w.Clone()
	return nil
}

func (s *MemoryStore) GetWebsite(ctx context.Context, ownerID, id string) (*model.Website, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.websites[id]
	if !ok || w.OwnerID != ownerID {
		return nil, &NotFoundError{Kind: "website", ID: id}
	}
	return w.Clone(), nil
}

func (s *MemoryStore) ListWebsites(ctx context.Context, ownerID string) ([]*model.Website, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*model.Website
	for _, w := range s.websites {
		if w.OwnerID == ownerID {
			out = append(out, w.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) DeleteWebsite(ctx context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.websites[id]
	if !ok || w.OwnerID != ownerID {
		return &NotFoundError{Kind: "website", ID: id}
	}
	delete(s.websites, id)
	return nil
}

func (s *MemoryStore) PutConversation(ctx context.Context, c *model.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations[c.ID] = c.Clone()
	return nil
}

func (s *MemoryStore) GetConversation(ctx context.Context, ownerID, id string) (*model.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.conversations[id]
	if !ok || c.OwnerID != ownerID {
		return nil, &NotFoundError{Kind: "conversation", ID: id}
	}
	return c.Clone(), nil
}

func (s *MemoryStore) ListConversations(ctx context.Context, ownerID string) ([]*model.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*model.Conversation
	for _, c := range s.conversations {
		if c.OwnerID == ownerID {
			out = append(out, c.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastActivity.After(out[j].LastActivity) })
	return out, nil
}

func (s *MemoryStore) DeleteConversation(ctx context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.conversations[id]
	if !ok || c.OwnerID != ownerID {
		return &NotFoundError{Kind: "conversation", ID: id}
	}
	delete(s.conversations, id)
	return nil
}

func (s *MemoryStore) PutQuiz(ctx context.Context, q *model.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes[q.ID] = q.Clone()
	return nil
}

func (s *MemoryStore) GetQuiz(ctx context.Context, ownerID, id string) (*model.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.quizzes[id]
	if !ok || q.OwnerID != ownerID {
		return nil, &NotFoundError{Kind: "quiz", ID: id}
	}
	return q.Clone(), nil
}

func (s *MemoryStore) ListQuizzes(ctx context.Context, ownerID string) ([]*model.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*model.Quiz
	for _, q := range s.quizzes {
		if q.OwnerID == ownerID {
			out = append(out, q.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) DeleteQuiz(ctx context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.quizzes[id]
	if !ok || q.OwnerID != ownerID {
		return &NotFoundError{Kind: "quiz", ID: id}
	}
	delete(s.quizzes, id)
	return nil
}
