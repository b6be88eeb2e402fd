// Package model defines the persisted record kinds: sources (topics,
// documents, websites), conversations, and quizzes.
package model

import "time"

// ProcessingStatus tracks a source through its ingestion lifecycle.
type ProcessingStatus string

const (
	StatusPending    ProcessingStatus = "pending"
	StatusProcessing ProcessingStatus = "processing"
	StatusCompleted  ProcessingStatus = "completed"
	StatusFailed     ProcessingStatus = "failed"
)

// SourceKind identifies the variant of a source record.
type SourceKind string

const (
	KindTopic    SourceKind = "topic"
	KindDocument SourceKind = "document"
	KindWebsite  SourceKind = "website"
	KindGeneral  SourceKind = "general" // conversations without a source
)

// Source is the common capability shared by the three source variants.
// The processing state machine operates over this interface.
type Source interface {
	SourceID() string
	Owner() string
	Kind() SourceKind
	ProcessingState() ProcessingStatus
	// ContextText returns the text field most relevant for grounding a
	// follow-up question: the generated explanation for topics, the
	// extracted text for documents and websites.
	ContextText() string
	// DisplayTitle names the source in conversation titles.
	DisplayTitle() string
}

// Customizations shape how a topic explanation is generated. The zero
// value is not useful; use DefaultCustomizations.
type Customizations struct {
	Level                    string   `json:"level"` // beginner, intermediate, expert
	IncludeCalculations      bool     `json:"includeCalculations"`
	IncludePracticeQuestions bool     `json:"includePracticeQuestions"`
	IncludeExamples          bool     `json:"includeExamples"`
	IncludeApplications      bool     `json:"includeApplications"`
	FocusAreas               []string `json:"focusAreas"`
	AdditionalRequirements   string   `json:"additionalRequirements"`
}

// DefaultCustomizations returns the baseline explanation settings.
func DefaultCustomizations() Customizations {
	return Customizations{
		Level:           "intermediate",
		IncludeExamples: true,
		FocusAreas:      []string{},
	}
}

// Topic is a free-text subject the user wants explained.
type Topic struct {
	ID               string           `json:"id"`
	OwnerID          string           `json:"ownerId"`
	Title            string           `json:"title"`
	Description      string           `json:"description,omitempty"`
	Content          string           `json:"content"`
	Customizations   Customizations   `json:"customizations"`
	GeneratedContent string           `json:"generatedContent,omitempty"`
	ConversationID   string           `json:"conversationId,omitempty"`
	Status           ProcessingStatus `json:"processingStatus"`
	ProcessingError  string           `json:"processingError,omitempty"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

func (t *Topic) SourceID() string { return t.ID }
func (t *Topic) Owner() string { return t.OwnerID }
func (t *Topic) Kind() SourceKind { return KindTopic }
func (t *Topic) ProcessingState() ProcessingStatus { return t.Status }
func (t *Topic) DisplayTitle() string { return t.Title }

func (t *Topic) ContextText() string {
	if t.GeneratedContent != "" {
		return t.GeneratedContent
	}
	return t.Content
}

// Document is an uploaded file (PDF or DOCX) with its extracted text.
type Document struct {
	ID              string           `json:"id"`
	OwnerID         string           `json:"ownerId"`
	Filename        string           `json:"filename"`
	OriginalName    string           `json:"originalName"`
	MimeType        string           `json:"mimeType"`
	Size            int64            `json:"size"`
	FilePath        string           `json:"-"` // never exposed to clients
	ExtractedText   string           `json:"extractedText,omitempty"`
	Summary         string           `json:"summary,omitempty"`
	ConversationID  string           `json:"conversationId,omitempty"`
	Status          ProcessingStatus `json:"processingStatus"`
	ProcessingError string           `json:"processingError,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

func (d *Document) SourceID() string { return d.ID }
func (d *Document) Owner() string { return d.OwnerID }
func (d *Document) Kind() SourceKind { return KindDocument }
func (d *Document) ProcessingState() ProcessingStatus { return d.Status }
func (d *Document) ContextText() string { return d.ExtractedText }
func (d *Document) DisplayTitle() string { return d.OriginalName }

// Website is a scraped web page.
type Website struct {
	ID               string           `json:"id"`
	OwnerID          string           `json:"ownerId"`
	URL              string           `json:"url"`
	Title            string           `json:"title,omitempty"`
	ExtractedContent string           `json:"extractedContent,omitempty"`
	Summary          string           `json:"summary,omitempty"`
	ConversationID   string           `json:"conversationId,omitempty"`
	Status           ProcessingStatus `json:"processingStatus"`
	ProcessingError  string           `json:"processingError,omitempty"`
	ScrapedAt        time.Time        `json:"scrapedAt"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

func (w *Website) SourceID() string { return w.ID }
func (w *Website) Owner() string { return w.OwnerID }
func (w *Website) Kind() SourceKind { return KindWebsite }
func (w *Website) ProcessingState() ProcessingStatus { return w.Status }
func (w *Website) ContextText() string { return w.ExtractedContent }

func (w *Website) DisplayTitle() string {
	if w.Title != "" {
		return w.Title
	}
	return w.URL
}
