package generation

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/studyloom/studyloom/internal/model"
	"github.com/studyloom/studyloom/pkg/logging"
)

// DefaultModel is the generation model used unless configured otherwise.
const DefaultModel = "gemini-1.5-flash"

// DefaultTimeout bounds each backend call. Expiry surfaces as *Error.
const DefaultTimeout = 60 * time.Second

const (
	roleUser  = "user"
	roleModel = "model"
)

// Gemini implements Gateway against the Google Gemini API.
type Gemini struct {
	client  *genai.Client
	text    *genai.GenerativeModel
	json    *genai.GenerativeModel
	timeout time.Duration
}

// NewGemini dials the Gemini API. modelName and timeout fall back to the
// package defaults when zero.
func NewGemini(ctx context.Context, apiKey, modelName string, timeout time.Duration) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("generation: missing API key")
	}
	if modelName == "" {
		modelName = DefaultModel
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	text := client.GenerativeModel(modelName)
	text.SafetySettings = safetyPolicy()

	jsonModel := client.GenerativeModel(modelName)
	jsonModel.SafetySettings = safetyPolicy()
	jsonModel.ResponseMIMEType = "application/json"

	return &Gemini{
		client:  client,
		text:    text,
		json:    jsonModel,
		timeout: timeout,
	}, nil
}

// Close releases the underlying client.
func (g *Gemini) Close() error {
	return g.client.Close()
}

// safetyPolicy is the fixed content policy applied to every call. It is
// not caller-configurable.
func safetyPolicy() []*genai.SafetySetting {
	return []*genai.SafetySetting{
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockMediumAndAbove},
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockMediumAndAbove},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockMediumAndAbove},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockMediumAndAbove},
	}
}

func (g *Gemini) Explain(ctx context.Context, topicText string, c model.Customizations) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	prompt := BuildExplainPrompt(topicText, c)
	resp, err := g.text.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", &Error{Op: "explain", Err: err}
	}
	return responseText(resp, "explain")
}

func (g *Gemini) ProcessDocument(ctx context.Context, content []byte, mimeType, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	var documentPart genai.Part
	if mimeType == "application/pdf" {
		documentPart = genai.Blob{MIMEType: mimeType, Data: content}
	} else {
		// Already-extracted plain text
		documentPart = genai.Text(string(content))
	}

	resp, err := g.text.GenerateContent(ctx, documentPart, genai.Text(prompt))
	if err != nil {
		return "", &Error{Op: "document", Err: err}
	}
	return responseText(resp, "document")
}

func (g *Gemini) GenerateQuiz(ctx context.Context, content string, settings model.QuizSettings) (*QuizDraft, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	prompt := BuildQuizPrompt(content, settings)
	resp, err := g.json.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, &Error{Op: "quiz", Err: err}
	}

	raw, err := responseText(resp, "quiz")
	if err != nil {
		return nil, err
	}

	draft, err := parseQuizDraft(raw, settings)
	if err != nil {
		logger := logging.GetLogger("generation")
		logger.Warn().
			Err(err).
			Int("requested", settings.NumberOfQuestions).
			Msg("Quiz draft rejected")
		return nil, err
	}
	return draft, nil
}

func (g *Gemini) ChatReply(ctx context.Context, history []model.Message, contextText string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	contents := make([]*genai.Content, 0, len(history)+1)
	if contextText != "" {
		contents = append(contents, &genai.Content{
			Role:  roleUser,
			Parts: []genai.Part{genai.Text("Context: " + contextText)},
		})
	}
	for _, msg := range history {
		role := roleUser
		if msg.Role == model.RoleAssistant {
			role = roleModel
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}

	if len(contents) == 0 {
		return "", &Error{Op: "chat", Err: errors.New("empty history")}
	}

	chat := g.text.StartChat()
	chat.History = contents[:len(contents)-1]
	last := contents[len(contents)-1]

	resp, err := chat.SendMessage(ctx, last.Parts...)
	if err != nil {
		return "", &Error{Op: "chat", Err: err}
	}
	return responseText(resp, "chat")
}

// responseText flattens the first candidate into plain text. An empty
// candidate list usually means a safety block.
func responseText(resp *genai.GenerateContentResponse, op string) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", &Error{Op: op, Err: errors.New("no candidates in response")}
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}

	out := b.String()
	if strings.TrimSpace(out) == "" {
		return "", &Error{Op: op, Err: errors.New("empty response text")}
	}
	return out, nil
}
