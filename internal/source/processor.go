// Package source drives Topic, Document, and Website records through the
// ingestion state machine: pending -> processing -> completed | failed.
// Processing is synchronous; there is no queue and no background worker.
package source

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/studyloom/studyloom/internal/generation"
	"github.com/studyloom/studyloom/internal/model"
	"github.com/studyloom/studyloom/internal/scraper"
	"github.com/studyloom/studyloom/internal/store"
	"github.com/studyloom/studyloom/pkg/extractor"
	"github.com/studyloom/studyloom/pkg/fileutil"
	"github.com/studyloom/studyloom/pkg/locking"
	"github.com/studyloom/studyloom/pkg/logging"
)

// Default instruction prompts for the seed exchange.
const (
	DefaultDocumentPrompt = "Please summarize this document and provide key insights."
	DefaultWebsitePrompt  = "Please provide a comprehensive summary and analysis of this website content."
)

// PageScraper fetches and cleans a web page.
type PageScraper interface {
	Scrape(ctx context.Context, url string) (*scraper.Result, error)
}

// TextExtractor converts file bytes into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, content []byte, mimeType string) (string, error)
}

// Processor owns every status transition of a source record. Transitions
// for one source id are serialized by a per-id mutex so concurrent
// regenerations cannot interleave their writes.
type Processor struct {
	store     store.Store
	gateway   generation.Gateway
	scraper   PageScraper
	extractor TextExtractor
	uploadDir string
	locks     *locking.KeyedMutex
	log       zerolog.Logger
}

// NewProcessor wires the state machine to its collaborators.
func NewProcessor(st store.Store, gw generation.Gateway, sc PageScraper, ex TextExtractor, uploadDir string) *Processor {
	return &Processor{
		store:     st,
		gateway:   gw,
		scraper:   sc,
		extractor: ex,
		uploadDir: uploadDir,
		locks:     locking.NewKeyedMutex(),
		log:       logging.GetLogger("source"),
	}
}

// GetTopic returns one topic.
func (p *Processor) GetTopic(ctx context.Context, ownerID, id string) (*model.Topic, error) {
	return p.store.GetTopic(ctx, ownerID, id)
}

// ListTopics returns the owner's topics, newest first.
func (p *Processor) ListTopics(ctx context.Context, ownerID string) ([]*model.Topic, error) {
	return p.store.ListTopics(ctx, ownerID)
}

// GetDocument returns one document.
func (p *Processor) GetDocument(ctx context.Context, ownerID, id string) (*model.Document, error) {
	return p.store.GetDocument(ctx, ownerID, id)
}

// ListDocuments returns the owner's documents, newest first.
func (p *Processor) ListDocuments(ctx context.Context, ownerID string) ([]*model.Document, error) {
	return p.store.ListDocuments(ctx, ownerID)
}

// GetWebsite returns one website.
func (p *Processor) GetWebsite(ctx context.Context, ownerID, id string) (*model.Website, error) {
	return p.store.GetWebsite(ctx, ownerID, id)
}

// ListWebsites returns the owner's websites, newest first.
func (p *Processor) ListWebsites(ctx context.Context, ownerID string) ([]*model.Website, error) {
	return p.store.ListWebsites(ctx, ownerID)
}

// TopicInput creates a new topic source.
type TopicInput struct {
	Title          string
	Description    string
	Content        string
	Customizations *CustomizationsPatch
}

// CustomizationsPatch overrides explanation defaults field by field.
type CustomizationsPatch struct {
	Level                    *string  `json:"level"`
	IncludeCalculations      *bool    `json:"includeCalculations"`
	IncludePracticeQuestions *bool    `json:"includePracticeQuestions"`
	IncludeExamples          *bool    `json:"includeExamples"`
	IncludeApplications      *bool    `json:"includeApplications"`
	FocusAreas               []string `json:"focusAreas"`
	AdditionalRequirements   *string  `json:"additionalRequirements"`
}

// Apply merges the patch over base, leaving unset fields untouched.
func (p *CustomizationsPatch) Apply(base model.Customizations) model.Customizations {
	if p == nil {
		return base
	}
	if p.Level != nil {
		base.Level = *p.Level
	}
	if p.IncludeCalculations != nil {
		base.IncludeCalculations = *p.IncludeCalculations
	}
	if p.IncludePracticeQuestions != nil {
		base.IncludePracticeQuestions = *p.IncludePracticeQuestions
	}
	if p.IncludeExamples != nil {
		base.IncludeExamples = *p.IncludeExamples
	}
	if p.IncludeApplications != nil {
		base.IncludeApplications = *p.IncludeApplications
	}
	if p.FocusAreas != nil {
		base.FocusAreas = append([]string(nil), p.FocusAreas...)
	}
	if p.AdditionalRequirements != nil {
		base.AdditionalRequirements = *p.AdditionalRequirements
	}
	return base
}

func validLevel(level string) bool {
	switch level {
	case "beginner", "intermediate", "expert":
		return true
	}
	return false
}

// CreateTopic creates a topic source and synchronously generates its
// explanation. On generation failure the topic persists in failed state
// and the error is returned; no conversation is created.
func (p *Processor) CreateTopic(ctx context.Context, ownerID string, in TopicInput) (*model.Topic, error) {
	if in.Title == "" {
		return nil, &model.ValidationError{Field: "title", Message: "title is required"}
	}
	if in.Content == "" {
		return nil, &model.ValidationError{Field: "content", Message: "content is required"}
	}

	customizations := in.Customizations.Apply(model.DefaultCustomizations())
	if !validLevel(customizations.Level) {
		return nil, &model.ValidationError{Field: "customizations.level", Message: "level must be beginner, intermediate, or expert"}
	}

	now := time.Now().UTC()
	topic := &model.Topic{
		ID:             uuid.New().String(),
		OwnerID:        ownerID,
		Title:          in.Title,
		Description:    in.Description,
		Content:        in.Content,
		Customizations: customizations,
		Status:         model.StatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := p.store.PutTopic(ctx, topic); err != nil {
		return nil, err
	}

	p.locks.Lock(topic.ID)
	defer p.locks.Unlock(topic.ID)
	return topic, p.generateTopic(ctx, topic)
}

// generateTopic runs the processing transition for a topic. The caller
// must hold the topic's lock.
func (p *Processor) generateTopic(ctx context.Context, topic *model.Topic) error {
	log := logging.GetSourceLogger(string(model.KindTopic), topic.ID)

	topic.Status = model.StatusProcessing
	topic.ProcessingError = ""
	topic.UpdatedAt = time.Now().UTC()
	if err := p.store.PutTopic(ctx, topic); err != nil {
		return err
	}

	generated, err := p.gateway.Explain(ctx, topic.Content, topic.Customizations)
	if err != nil {
		log.Warn().Err(err).Msg("Topic explanation failed")
		return p.failTopic(ctx, topic, err)
	}

	topic.GeneratedContent = generated
	topic.Status = model.StatusCompleted
	topic.UpdatedAt = time.Now().UTC()

	if topic.ConversationID == "" {
		conv, err := p.seedConversation(ctx, topic,
			"Explain the topic: "+topic.Content,
			map[string]any{"customizations": topic.Customizations},
			generated)
		if err != nil {
			return p.failTopic(ctx, topic, err)
		}
		topic.ConversationID = conv.ID
	}

	if err := p.store.PutTopic(ctx, topic); err != nil {
		return err
	}
	log.Info().Msg("Topic processed")
	return nil
}

func (p *Processor) failTopic(ctx context.Context, topic *model.Topic, cause error) error {
	topic.Status = model.StatusFailed
	topic.ProcessingError = cause.Error()
	topic.UpdatedAt = time.Now().UTC()
	if err := p.store.PutTopic(ctx, topic); err != nil {
		return err
	}
	return cause
}

// TopicUpdate edits a topic. Changing content or customizations triggers
// regeneration; the linked conversation is kept, only its title follows a
// renamed topic.
type TopicUpdate struct {
	Title          *string
	Description    *string
	Content        *string
	Customizations *CustomizationsPatch
}

// UpdateTopic applies the update and regenerates derived text when the
// input material changed.
func (p *Processor) UpdateTopic(ctx context.Context, ownerID, id string, in TopicUpdate) (*model.Topic, error) {
	p.locks.Lock(id)
	defer p.locks.Unlock(id)

	topic, err := p.store.GetTopic(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		if *in.Title == "" {
			return nil, &model.ValidationError{Field: "title", Message: "title cannot be empty"}
		}
		topic.Title = *in.Title
	}
	if in.Description != nil {
		topic.Description = *in.Description
	}

	regenerate := false
	if in.Content != nil {
		if *in.Content == "" {
			return nil, &model.ValidationError{Field: "content", Message: "content cannot be empty"}
		}
		topic.Content = *in.Content
		regenerate = true
	}
	if in.Customizations != nil {
		topic.Customizations = in.Customizations.Apply(topic.Customizations)
		if !validLevel(topic.Customizations.Level) {
			return nil, &model.ValidationError{Field: "customizations.level", Message: "level must be beginner, intermediate, or expert"}
		}
		regenerate = true
	}

	if in.Title != nil && topic.ConversationID != "" {
		if conv, err := p.store.GetConversation(ctx, ownerID, topic.ConversationID); err == nil {
			conv.Title = "Topic: " + topic.Title
			conv.UpdatedAt = time.Now().UTC()
			if err := p.store.PutConversation(ctx, conv); err != nil {
				return nil, err
			}
		}
	}

	if regenerate {
		if err := p.generateTopic(ctx, topic); err != nil {
			return topic, err
		}
		return topic, nil
	}

	topic.UpdatedAt = time.Now().UTC()
	if err := p.store.PutTopic(ctx, topic); err != nil {
		return nil, err
	}
	return topic, nil
}

// DeleteTopic removes a topic and cascades to its linked conversation.
func (p *Processor) DeleteTopic(ctx context.Context, ownerID, id string) error {
	p.locks.Lock(id)
	defer p.locks.Unlock(id)

	topic, err := p.store.GetTopic(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if err := p.deleteLinkedConversation(ctx, ownerID, topic.ConversationID); err != nil {
		return err
	}
	return p.store.DeleteTopic(ctx, ownerID, id)
}

// DocumentUpload creates a new document source from uploaded bytes.
type DocumentUpload struct {
	OriginalName string
	MimeType     string
	Data         []byte
	Prompt       string
}

// CreateDocument stores the upload, extracts its text, and synchronously
// generates the summary and seed conversation.
func (p *Processor) CreateDocument(ctx context.Context, ownerID string, in DocumentUpload) (*model.Document, error) {
	if in.OriginalName == "" {
		return nil, &model.ValidationError{Field: "document", Message: "no document uploaded"}
	}
	if len(in.Data) == 0 {
		return nil, &model.ValidationError{Field: "document", Message: "uploaded document is empty"}
	}
	if !fileutil.IsAllowedUploadType(in.MimeType) {
		return nil, &model.ValidationError{Field: "document", Message: "only PDF and DOCX files are allowed"}
	}

	prompt := in.Prompt
	if prompt == "" {
		prompt = DefaultDocumentPrompt
	}

	filename, path, err := fileutil.SaveUpload(p.uploadDir, in.OriginalName, in.Data)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	doc := &model.Document{
		ID:           uuid.New().String(),
		OwnerID:      ownerID,
		Filename:     filename,
		OriginalName: in.OriginalName,
		MimeType:     in.MimeType,
		Size:         int64(len(in.Data)),
		FilePath:     path,
		Status:       model.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := p.store.PutDocument(ctx, doc); err != nil {
		return nil, err
	}

	p.locks.Lock(doc.ID)
	defer p.locks.Unlock(doc.ID)
	return doc, p.processDocument(ctx, doc, in.Data, prompt)
}

func (p *Processor) processDocument(ctx context.Context, doc *model.Document, data []byte, prompt string) error {
	log := logging.GetSourceLogger(string(model.KindDocument), doc.ID)

	doc.Status = model.StatusProcessing
	doc.ProcessingError = ""
	doc.UpdatedAt = time.Now().UTC()
	if err := p.store.PutDocument(ctx, doc); err != nil {
		return err
	}

	extracted, err := p.extractor.Extract(ctx, data, doc.MimeType)
	if err != nil {
		log.Warn().Err(err).Msg("Text extraction failed")
		return p.failDocument(ctx, doc, err)
	}
	doc.ExtractedText = extracted

	// PDFs go to the backend as raw bytes so it can read layout and
	// embedded figures; DOCX content goes as extracted plain text.
	var summary string
	if doc.MimeType == extractor.MimePDF {
		summary, err = p.gateway.ProcessDocument(ctx, data, doc.MimeType, prompt)
	} else {
		summary, err = p.gateway.ProcessDocument(ctx, []byte(extracted), "text/plain", prompt)
	}
	if err != nil {
		log.Warn().Err(err).Msg("Document summary failed")
		return p.failDocument(ctx, doc, err)
	}

	doc.Summary = summary
	doc.Status = model.StatusCompleted
	doc.UpdatedAt = time.Now().UTC()

	if doc.ConversationID == "" {
		conv, err := p.seedConversation(ctx, doc, prompt,
			map[string]any{"documentName": doc.OriginalName, "documentSize": doc.Size},
			summary)
		if err != nil {
			return p.failDocument(ctx, doc, err)
		}
		doc.ConversationID = conv.ID
	}

	if err := p.store.PutDocument(ctx, doc); err != nil {
		return err
	}
	log.Info().Str("mime_type", doc.MimeType).Msg("Document processed")
	return nil
}

func (p *Processor) failDocument(ctx context.Context, doc *model.Document, cause error) error {
	doc.Status = model.StatusFailed
	doc.ProcessingError = cause.Error()
	doc.UpdatedAt = time.Now().UTC()
	if err := p.store.PutDocument(ctx, doc); err != nil {
		return err
	}
	return cause
}

// DeleteDocument removes a document, its linked conversation, and — best
// effort — its backing file. A failed file removal is logged, never
// propagated: the record deletion must not block on disk state.
func (p *Processor) DeleteDocument(ctx context.Context, ownerID, id string) error {
	p.locks.Lock(id)
	defer p.locks.Unlock(id)

	doc, err := p.store.GetDocument(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if err := p.deleteLinkedConversation(ctx, ownerID, doc.ConversationID); err != nil {
		return err
	}
	if doc.FilePath != "" {
		if err := fileutil.DeleteFile(doc.FilePath); err != nil {
			p.log.Warn().Err(err).Str("path", doc.FilePath).Msg("Failed to remove document file")
		}
	}
	return p.store.DeleteDocument(ctx, ownerID, id)
}

// CreateWebsite scrapes the URL and synchronously generates its summary
// and seed conversation.
func (p *Processor) CreateWebsite(ctx context.Context, ownerID, rawURL, prompt string) (*model.Website, error) {
	if rawURL == "" {
		return nil, &model.ValidationError{Field: "url", Message: "url is required"}
	}
	if prompt == "" {
		prompt = DefaultWebsitePrompt
	}

	now := time.Now().UTC()
	site := &model.Website{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		URL:       rawURL,
		Status:    model.StatusPending,
		ScrapedAt: now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := p.store.PutWebsite(ctx, site); err != nil {
		return nil, err
	}

	p.locks.Lock(site.ID)
	defer p.locks.Unlock(site.ID)
	return site, p.processWebsite(ctx, site, prompt)
}

func (p *Processor) processWebsite(ctx context.Context, site *model.Website, prompt string) error {
	log := logging.GetSourceLogger(string(model.KindWebsite), site.ID)

	site.Status = model.StatusProcessing
	site.ProcessingError = ""
	site.UpdatedAt = time.Now().UTC()
	if err := p.store.PutWebsite(ctx, site); err != nil {
		return err
	}

	scraped, err := p.scraper.Scrape(ctx, site.URL)
	if err != nil {
		log.Warn().Err(err).Str("url", site.URL).Msg("Scrape failed")
		return p.failWebsite(ctx, site, err)
	}

	site.Title = scraped.Title
	site.ExtractedContent = scraped.Content
	site.URL = scraped.FinalURL // sources are addressed by canonical URL
	site.ScrapedAt = time.Now().UTC()

	task := generation.BuildSummaryPrompt(scraped.Title, scraped.FinalURL, scraped.Content, prompt)
	summary, err := p.gateway.ChatReply(ctx, []model.Message{{
		Role:      model.RoleUser,
		Content:   task,
		Timestamp: time.Now().UTC(),
	}}, "")
	if err != nil {
		log.Warn().Err(err).Msg("Website summary failed")
		return p.failWebsite(ctx, site, err)
	}

	site.Summary = summary
	site.Status = model.StatusCompleted
	site.UpdatedAt = time.Now().UTC()

	if site.ConversationID == "" {
		conv, err := p.seedConversation(ctx, site, prompt,
			map[string]any{"websiteUrl": site.URL, "websiteTitle": site.Title},
			summary)
		if err != nil {
			return p.failWebsite(ctx, site, err)
		}
		site.ConversationID = conv.ID
	}

	if err := p.store.PutWebsite(ctx, site); err != nil {
		return err
	}
	log.Info().Str("url", site.URL).Msg("Website processed")
	return nil
}

func (p *Processor) failWebsite(ctx context.Context, site *model.Website, cause error) error {
	site.Status = model.StatusFailed
	site.ProcessingError = cause.Error()
	site.UpdatedAt = time.Now().UTC()
	if err := p.store.PutWebsite(ctx, site); err != nil {
		return err
	}
	return cause
}

// DeleteWebsite removes a website and cascades to its linked conversation.
func (p *Processor) DeleteWebsite(ctx context.Context, ownerID, id string) error {
	p.locks.Lock(id)
	defer p.locks.Unlock(id)

	site, err := p.store.GetWebsite(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if err := p.deleteLinkedConversation(ctx, ownerID, site.ConversationID); err != nil {
		return err
	}
	return p.store.DeleteWebsite(ctx, ownerID, id)
}

// seedConversation creates the one conversation linked to a source, with
// the originating request and the generated output as its first exchange.
func (p *Processor) seedConversation(ctx context.Context, src model.Source, userContent string, userMeta map[string]any, assistantContent string) (*model.Conversation, error) {
	now := time.Now().UTC()
	conv := &model.Conversation{
		ID:       uuid.New().String(),
		OwnerID:  src.Owner(),
		Title:    conversationTitle(src),
		Kind:     src.Kind(),
		SourceID: src.SourceID(),
		Messages: []model.Message{
			{Role: model.RoleUser, Content: userContent, Timestamp: now, Metadata: userMeta},
			{Role: model.RoleAssistant, Content: assistantContent, Timestamp: now},
		},
		Active:       true,
		LastActivity: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := p.store.PutConversation(ctx, conv); err != nil {
		return nil, err
	}
	return conv, nil
}

func conversationTitle(src model.Source) string {
	switch src.Kind() {
	case model.KindTopic:
		return "Topic: " + src.DisplayTitle()
	case model.KindDocument:
		return "Document: " + src.DisplayTitle()
	case model.KindWebsite:
		return "Website: " + src.DisplayTitle()
	}
	return src.DisplayTitle()
}

// deleteLinkedConversation is the child half of the cascade; a missing
// conversation is fine.
func (p *Processor) deleteLinkedConversation(ctx context.Context, ownerID, convID string) error {
	if convID == "" {
		return nil
	}
	err := p.store.DeleteConversation(ctx, ownerID, convID)
	if err != nil {
		if _, ok := err.(*store.NotFoundError); ok {
			return nil
		}
		return err
	}
	return nil
}
