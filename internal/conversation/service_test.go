package conversation

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyloom/studyloom/internal/generation/generationtest"
	"github.com/studyloom/studyloom/internal/model"
	"github.com/studyloom/studyloom/internal/store"
)

func newTestService(t *testing.T) (*Service, store.Store, *generationtest.Fake) {
	t.Helper()
	st := store.NewMemoryStore()
	gw := &generationtest.Fake{}
	return NewService(st, gw), st, gw
}

func seedTopicConversation(t *testing.T, st store.Store, ownerID string, prior int) *model.Conversation {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	topic := &model.Topic{
		ID:               uuid.New().String(),
		OwnerID:          ownerID,
		Title:            "Thermodynamics",
		Content:          "laws of heat",
		GeneratedContent: "generated explanation",
		Customizations:   model.DefaultCustomizations(),
		Status:           model.StatusCompleted,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	require.NoError(t, st.PutTopic(ctx, topic))

	conv := &model.Conversation{
		ID:           uuid.New().String(),
		OwnerID:      ownerID,
		Title:        "Topic: Thermodynamics",
		Kind:         model.KindTopic,
		SourceID:     topic.ID,
		Active:       true,
		LastActivity: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for i := 0; i < prior; i++ {
		role := model.RoleUser
		if i%2 == 1 {
			role = model.RoleAssistant
		}
		conv.Messages = append(conv.Messages, model.Message{
			Role:      role,
			Content:   fmt.Sprintf("message %d", i),
			Timestamp: now,
		})
	}
	require.NoError(t, st.PutConversation(ctx, conv))

	topic.ConversationID = conv.ID
	require.NoError(t, st.PutTopic(ctx, topic))
	return conv
}

func TestCreateGeneralChat(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	conv, err := svc.Create(ctx, "alice", "")
	require.NoError(t, err)
	assert.Equal(t, "New Chat", conv.Title)
	assert.Equal(t, model.KindGeneral, conv.Kind)
	assert.True(t, conv.Active)
	assert.Empty(t, conv.Messages)
}

func TestAskAppendsBothMessages(t *testing.T) {
	ctx := context.Background()
	svc, st, gw := newTestService(t)
	conv := seedTopicConversation(t, st, "alice", 2)

	reply, err := svc.Ask(ctx, "alice", conv.ID, "What is entropy?")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAssistant, reply.Role)
	assert.NotEmpty(t, reply.Content)

	stored, err := st.GetConversation(ctx, "alice", conv.ID)
	require.NoError(t, err)
	require.Len(t, stored.Messages, 4)
	assert.Equal(t, "What is entropy?", stored.Messages[2].Content)
	assert.Equal(t, reply.Content, stored.Messages[3].Content)

	// Topic context was attached.
	require.Len(t, gw.ChatContexts, 1)
	assert.Equal(t, "Topic: Thermodynamics\nContent: generated explanation", gw.ChatContexts[0])
}

func TestAskWindowsHistoryToTen(t *testing.T) {
	ctx := context.Background()
	svc, st, gw := newTestService(t)
	conv := seedTopicConversation(t, st, "alice", 15)

	_, err := svc.Ask(ctx, "alice", conv.ID, "latest question")
	require.NoError(t, err)

	require.Len(t, gw.ChatHistories, 1)
	window := gw.ChatHistories[0]
	require.Len(t, window, HistoryWindow)
	// Most recent last, with the incoming question included.
	assert.Equal(t, "latest question", window[len(window)-1].Content)
	assert.Equal(t, "message 6", window[0].Content)

	// The full log keeps everything: 15 prior + question + reply.
	stored, err := st.GetConversation(ctx, "alice", conv.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Messages, 17)
}

func TestAskGeneralChatHasNoContext(t *testing.T) {
	ctx := context.Background()
	svc, _, gw := newTestService(t)

	conv, err := svc.Create(ctx, "alice", "Ideas")
	require.NoError(t, err)

	_, err = svc.Ask(ctx, "alice", conv.ID, "hello")
	require.NoError(t, err)
	require.Len(t, gw.ChatContexts, 1)
	assert.Empty(t, gw.ChatContexts[0])
}

func TestAskBackendFailureLeavesLogUntouched(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	gw := &generationtest.Fake{Err: errors.New("backend down")}
	svc := NewService(st, gw)
	conv := seedTopicConversation(t, st, "alice", 2)

	_, err := svc.Ask(ctx, "alice", conv.ID, "question")
	require.Error(t, err)

	stored, err := st.GetConversation(ctx, "alice", conv.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Messages, 2, "neither question nor reply persisted")
}

func TestAskDeletedSourceFails(t *testing.T) {
	ctx := context.Background()
	svc, st, _ := newTestService(t)
	conv := seedTopicConversation(t, st, "alice", 0)

	require.NoError(t, st.DeleteTopic(ctx, "alice", conv.SourceID))

	_, err := svc.Ask(ctx, "alice", conv.ID, "question")
	var notFound *store.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestListExcludesSoftDeleted(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	kept, err := svc.Create(ctx, "alice", "keep")
	require.NoError(t, err)
	dropped, err := svc.Create(ctx, "alice", "drop")
	require.NoError(t, err)

	require.NoError(t, svc.SoftDelete(ctx, "alice", dropped.ID))

	list, err := svc.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, kept.ID, list[0].ID)

	// Soft delete keeps the record retrievable.
	got, err := svc.Get(ctx, "alice", dropped.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)
}

func TestClearEmptiesLog(t *testing.T) {
	ctx := context.Background()
	svc, st, _ := newTestService(t)
	conv := seedTopicConversation(t, st, "alice", 6)

	cleared, err := svc.Clear(ctx, "alice", conv.ID)
	require.NoError(t, err)
	assert.Empty(t, cleared.Messages)
	assert.True(t, cleared.Active)
}

func TestRename(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	conv, err := svc.Create(ctx, "alice", "old")
	require.NoError(t, err)

	renamed, err := svc.Rename(ctx, "alice", conv.ID, "new title")
	require.NoError(t, err)
	assert.Equal(t, "new title", renamed.Title)

	_, err = svc.Rename(ctx, "alice", conv.ID, "")
	var validation *model.ValidationError
	require.ErrorAs(t, err, &validation)
}
