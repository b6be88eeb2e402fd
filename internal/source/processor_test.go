package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyloom/studyloom/internal/generation/generationtest"
	"github.com/studyloom/studyloom/internal/model"
	"github.com/studyloom/studyloom/internal/scraper"
	"github.com/studyloom/studyloom/internal/store"
)

type fakeScraper struct {
	result *scraper.Result
	err    error
}

func (f *fakeScraper) Scrape(ctx context.Context, url string) (*scraper.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) Extract(ctx context.Context, content []byte, mimeType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func newTestProcessor(t *testing.T, gw *generationtest.Fake, sc PageScraper, ex TextExtractor) (*Processor, store.Store) {
	t.Helper()
	st := store.NewMemoryStore()
	if sc == nil {
		sc = &fakeScraper{result: &scraper.Result{FinalURL: "https://example.com", Title: "Example", Content: "page content"}}
	}
	if ex == nil {
		ex = &fakeExtractor{text: "extracted text"}
	}
	return NewProcessor(st, gw, sc, ex, t.TempDir()), st
}

func TestCreateTopicCompletes(t *testing.T) {
	ctx := context.Background()
	p, st := newTestProcessor(t, &generationtest.Fake{}, nil, nil)

	topic, err := p.CreateTopic(ctx, "alice", TopicInput{
		Title:   "Thermodynamics",
		Content: "the laws of thermodynamics",
	})
	require.NoError(t, err)

	assert.Equal(t, model.StatusCompleted, topic.Status)
	assert.NotEmpty(t, topic.GeneratedContent)
	assert.Empty(t, topic.ProcessingError)
	assert.Equal(t, "intermediate", topic.Customizations.Level)
	require.NotEmpty(t, topic.ConversationID)

	conv, err := st.GetConversation(ctx, "alice", topic.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, "Topic: Thermodynamics", conv.Title)
	assert.Equal(t, model.KindTopic, conv.Kind)
	assert.Equal(t, topic.ID, conv.SourceID)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, model.RoleUser, conv.Messages[0].Role)
	assert.Equal(t, "Explain the topic: the laws of thermodynamics", conv.Messages[0].Content)
	assert.NotNil(t, conv.Messages[0].Metadata["customizations"])
	assert.Equal(t, model.RoleAssistant, conv.Messages[1].Role)
	assert.Equal(t, topic.GeneratedContent, conv.Messages[1].Content)
}

func TestCreateTopicGenerationFailure(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("backend unavailable")
	p, st := newTestProcessor(t, &generationtest.Fake{Err: boom}, nil, nil)

	topic, err := p.CreateTopic(ctx, "alice", TopicInput{Title: "T", Content: "c"})
	require.ErrorIs(t, err, boom)
	require.NotNil(t, topic)

	assert.Equal(t, model.StatusFailed, topic.Status)
	assert.Equal(t, "backend unavailable", topic.ProcessingError)
	assert.Empty(t, topic.ConversationID, "no conversation on failure")

	stored, err := st.GetTopic(ctx, "alice", topic.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, stored.Status)

	convs, err := st.ListConversations(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, convs)
}

func TestCreateTopicValidation(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestProcessor(t, &generationtest.Fake{}, nil, nil)

	_, err := p.CreateTopic(ctx, "alice", TopicInput{Content: "c"})
	var validation *model.ValidationError
	require.ErrorAs(t, err, &validation)

	_, err = p.CreateTopic(ctx, "alice", TopicInput{Title: "t"})
	require.ErrorAs(t, err, &validation)

	bad := "phd"
	_, err = p.CreateTopic(ctx, "alice", TopicInput{
		Title: "t", Content: "c",
		Customizations: &CustomizationsPatch{Level: &bad},
	})
	require.ErrorAs(t, err, &validation)
}

func TestCustomizationsPatchMergesOverDefaults(t *testing.T) {
	level := "expert"
	calc := true
	patch := &CustomizationsPatch{Level: &level, IncludeCalculations: &calc, FocusAreas: []string{"entropy"}}

	merged := patch.Apply(model.DefaultCustomizations())
	assert.Equal(t, "expert", merged.Level)
	assert.True(t, merged.IncludeCalculations)
	assert.True(t, merged.IncludeExamples, "default preserved")
	assert.Equal(t, []string{"entropy"}, merged.FocusAreas)
}

func TestUpdateTopicRegeneratesOnContentChange(t *testing.T) {
	ctx := context.Background()
	gw := &generationtest.Fake{}
	p, st := newTestProcessor(t, gw, nil, nil)

	topic, err := p.CreateTopic(ctx, "alice", TopicInput{Title: "T", Content: "original"})
	require.NoError(t, err)
	firstConv := topic.ConversationID
	firstGenerated := topic.GeneratedContent

	newContent := "revised content"
	updated, err := p.UpdateTopic(ctx, "alice", topic.ID, TopicUpdate{Content: &newContent})
	require.NoError(t, err)

	assert.Equal(t, model.StatusCompleted, updated.Status)
	assert.NotEqual(t, firstGenerated, updated.GeneratedContent)
	assert.Equal(t, firstConv, updated.ConversationID, "conversation survives regeneration")

	convs, err := st.ListConversations(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, convs, 1)
}

func TestUpdateTopicTitleOnlySkipsRegeneration(t *testing.T) {
	ctx := context.Background()
	calls := 0
	gw := &generationtest.Fake{
		ExplainFunc: func(ctx context.Context, topicText string, c model.Customizations) (string, error) {
			calls++
			return "generated", nil
		},
	}
	p, st := newTestProcessor(t, gw, nil, nil)

	topic, err := p.CreateTopic(ctx, "alice", TopicInput{Title: "Old", Content: "c"})
	require.NoError(t, err)
	require.Equal(t, 1, calls)

	newTitle := "New"
	updated, err := p.UpdateTopic(ctx, "alice", topic.ID, TopicUpdate{Title: &newTitle})
	require.NoError(t, err)

	assert.Equal(t, 1, calls, "no regeneration for a rename")
	assert.Equal(t, "New", updated.Title)

	conv, err := st.GetConversation(ctx, "alice", topic.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, "Topic: New", conv.Title)
}

func TestDeleteTopicCascades(t *testing.T) {
	ctx := context.Background()
	p, st := newTestProcessor(t, &generationtest.Fake{}, nil, nil)

	topic, err := p.CreateTopic(ctx, "alice", TopicInput{Title: "T", Content: "c"})
	require.NoError(t, err)

	require.NoError(t, p.DeleteTopic(ctx, "alice", topic.ID))

	var notFound *store.NotFoundError
	_, err = st.GetTopic(ctx, "alice", topic.ID)
	require.ErrorAs(t, err, &notFound)
	_, err = st.GetConversation(ctx, "alice", topic.ConversationID)
	require.ErrorAs(t, err, &notFound)
}

func TestCreateDocumentCompletes(t *testing.T) {
	ctx := context.Background()
	p, st := newTestProcessor(t, &generationtest.Fake{}, nil, &fakeExtractor{text: "pdf body text"})

	doc, err := p.CreateDocument(ctx, "alice", DocumentUpload{
		OriginalName: "notes.pdf",
		MimeType:     "application/pdf",
		Data:         []byte("%PDF-1.4 fake"),
	})
	require.NoError(t, err)

	assert.Equal(t, model.StatusCompleted, doc.Status)
	assert.Equal(t, "pdf body text", doc.ExtractedText)
	assert.NotEmpty(t, doc.Summary)
	assert.FileExists(t, doc.FilePath)

	conv, err := st.GetConversation(ctx, "alice", doc.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, "Document: notes.pdf", conv.Title)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, DefaultDocumentPrompt, conv.Messages[0].Content)
	assert.Equal(t, "notes.pdf", conv.Messages[0].Metadata["documentName"])
}

func TestCreateDocumentRejectsUnsupportedType(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestProcessor(t, &generationtest.Fake{}, nil, nil)

	_, err := p.CreateDocument(ctx, "alice", DocumentUpload{
		OriginalName: "image.png",
		MimeType:     "image/png",
		Data:         []byte("png bytes"),
	})
	var validation *model.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestCreateDocumentExtractionFailure(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("corrupt file")
	p, _ := newTestProcessor(t, &generationtest.Fake{}, nil, &fakeExtractor{err: boom})

	doc, err := p.CreateDocument(ctx, "alice", DocumentUpload{
		OriginalName: "notes.pdf",
		MimeType:     "application/pdf",
		Data:         []byte("junk"),
	})
	require.ErrorIs(t, err, boom)
	require.NotNil(t, doc)
	assert.Equal(t, model.StatusFailed, doc.Status)
	assert.Equal(t, "corrupt file", doc.ProcessingError)
	assert.Empty(t, doc.ConversationID)
}

func TestDeleteDocumentRemovesFile(t *testing.T) {
	ctx := context.Background()
	p, st := newTestProcessor(t, &generationtest.Fake{}, nil, nil)

	doc, err := p.CreateDocument(ctx, "alice", DocumentUpload{
		OriginalName: "notes.pdf",
		MimeType:     "application/pdf",
		Data:         []byte("%PDF fake"),
	})
	require.NoError(t, err)
	path := doc.FilePath

	require.NoError(t, p.DeleteDocument(ctx, "alice", doc.ID))

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))

	var notFound *store.NotFoundError
	_, err = st.GetDocument(ctx, "alice", doc.ID)
	require.ErrorAs(t, err, &notFound)
	_, err = st.GetConversation(ctx, "alice", doc.ConversationID)
	require.ErrorAs(t, err, &notFound)
}

func TestCreateWebsiteCompletes(t *testing.T) {
	ctx := context.Background()
	gw := &generationtest.Fake{}
	sc := &fakeScraper{result: &scraper.Result{
		FinalURL: "https://example.com/article",
		Title:    "Example Article",
		Content:  "the article body",
	}}
	p, st := newTestProcessor(t, gw, sc, nil)

	site, err := p.CreateWebsite(ctx, "alice", "example.com/article", "")
	require.NoError(t, err)

	assert.Equal(t, model.StatusCompleted, site.Status)
	assert.Equal(t, "https://example.com/article", site.URL, "canonical final URL")
	assert.Equal(t, "Example Article", site.Title)
	assert.Equal(t, "the article body", site.ExtractedContent)
	assert.NotEmpty(t, site.Summary)

	// The summary request is a single user turn with no separate context.
	require.Len(t, gw.ChatHistories, 1)
	require.Len(t, gw.ChatHistories[0], 1)
	assert.Contains(t, gw.ChatHistories[0][0].Content, "Website: Example Article")
	assert.Contains(t, gw.ChatHistories[0][0].Content, DefaultWebsitePrompt)
	assert.Empty(t, gw.ChatContexts[0])

	conv, err := st.GetConversation(ctx, "alice", site.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, "Website: Example Article", conv.Title)
	assert.Equal(t, "https://example.com/article", conv.Messages[0].Metadata["websiteUrl"])
}

func TestCreateWebsiteScrapeFailure(t *testing.T) {
	ctx := context.Background()
	boom := &scraper.FetchError{URL: "https://example.com", Status: 503}
	p, _ := newTestProcessor(t, &generationtest.Fake{}, &fakeScraper{err: boom}, nil)

	site, err := p.CreateWebsite(ctx, "alice", "example.com", "")
	require.Error(t, err)
	require.NotNil(t, site)
	assert.Equal(t, model.StatusFailed, site.Status)
	assert.Contains(t, site.ProcessingError, "503")
	assert.Empty(t, site.ConversationID)
}

func TestDeleteWebsiteCascades(t *testing.T) {
	ctx := context.Background()
	p, st := newTestProcessor(t, &generationtest.Fake{}, nil, nil)

	site, err := p.CreateWebsite(ctx, "alice", "example.com", "")
	require.NoError(t, err)

	require.NoError(t, p.DeleteWebsite(ctx, "alice", site.ID))

	var notFound *store.NotFoundError
	_, err = st.GetWebsite(ctx, "alice", site.ID)
	require.ErrorAs(t, err, &notFound)
	_, err = st.GetConversation(ctx, "alice", site.ConversationID)
	require.ErrorAs(t, err, &notFound)
}

func TestUploadsLandInConfiguredDir(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	st := store.NewMemoryStore()
	p := NewProcessor(st, &generationtest.Fake{}, nil, &fakeExtractor{text: "x"}, dir)

	doc, err := p.CreateDocument(ctx, "alice", DocumentUpload{
		OriginalName: "a.pdf",
		MimeType:     "application/pdf",
		Data:         []byte("%PDF"),
	})
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(doc.FilePath))
}
