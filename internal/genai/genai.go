// Package genai provides the generation boundary for Gezgin using the OpenAI API.
//
// The boundary has an always-resolves contract: Generate never returns an
// error to the caller. Provider failures are logged and mapped to a fallback
// message so the conversation flow degrades instead of crashing.
package genai

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/gezgin-ai/gezgin/internal/models"
)

// Mode selects which agent persona and output contract the generator uses.
type Mode string

const (
	// ModePlanner edits the itinerary conversationally and may embed a plan
	// update payload in its response.
	ModePlanner Mode = "PLANNER"
	// ModeGuide narrates the tour at the current stop.
	ModeGuide Mode = "GUIDE"
	// ModeBriefing produces the JSON daily-prep briefing.
	ModeBriefing Mode = "BRIEFING"
	// ModeLiveCheck produces the JSON per-activity status audit.
	ModeLiveCheck Mode = "LIVE_CHECK"
)

// FallbackText is shown when the provider fails; the trip plan is never
// mutated on a fallback response.
const FallbackText = "Wise is having trouble connecting to the maps. Please try again."

// historyWindow limits how many trailing conversation messages are sent.
const historyWindow = 6

// GenerateRequest carries one generation turn across the boundary.
type GenerateRequest struct {
	History         []models.Message
	Prompt          string
	Plan            models.TripPlan
	Mode            Mode
	Preferences     *models.PreferenceProfile
	Image           string // optional data URI
	Location        *models.TripLocation
	CurrentActivity *models.Activity
	Day             int // day scope for briefing and live-check
}

// Response is the boundary's result. Fallback marks text substituted after a
// provider failure; callers must not treat fallback text as plan content.
type Response struct {
	Text     string
	Fallback bool
}

// ClientInterface abstracts the generation client for testing.
type ClientInterface interface {
	Generate(ctx context.Context, req GenerateRequest) Response
}

// Opts holds configuration options for the GenAI client.
type Opts struct {
	APIKey string
	Model  string
}

// Option configures GenAI client options.
type Option func(*Opts)

// WithAPIKey sets the OpenAI API key.
func WithAPIKey(key string) Option {
	return func(o *Opts) { o.APIKey = key }
}

// WithModel overrides the chat model.
func WithModel(model string) Option {
	return func(o *Opts) { o.Model = model }
}

// Client wraps the OpenAI chat completion service.
type Client struct {
	client openai.Client
	model  string
}

// NewClient initializes a new GenAI client. The API key falls back to the
// OPENAI_API_KEY environment variable when not set via options.
func NewClient(opts ...Option) (*Client, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}
	if cfg.Model == "" {
		cfg.Model = openai.ChatModelGPT4oMini
	}
	slog.Debug("genai.NewClient: creating client", "model", cfg.Model)
	return &Client{
		client: openai.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:  cfg.Model,
	}, nil
}

// Generate sends one turn to the provider. It never returns an error: on any
// failure the fallback response is returned and the failure is logged.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) Response {
	messages := buildMessages(req)

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: messages,
	})
	if err != nil {
		slog.Warn("genai.Generate: provider call failed", "error", err, "mode", req.Mode)
		return Response{Text: FallbackText, Fallback: true}
	}
	if len(resp.Choices) == 0 {
		slog.Warn("genai.Generate: no choices returned", "mode", req.Mode)
		return Response{Text: FallbackText, Fallback: true}
	}

	text := resp.Choices[0].Message.Content
	slog.Debug("genai.Generate: response received", "mode", req.Mode, "length", len(text))
	return Response{Text: text}
}

// buildMessages assembles the system prompt, windowed history, and the current
// user turn in OpenAI chat format.
func buildMessages(req GenerateRequest) []openai.ChatCompletionMessageParamUnion {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(buildSystemPrompt(req)),
	}

	for _, msg := range windowHistory(req.History) {
		if msg.Role == models.MessageRoleUser {
			messages = append(messages, openai.UserMessage(msg.Text))
		} else {
			messages = append(messages, openai.AssistantMessage(msg.Text))
		}
	}

	prompt := req.Prompt
	if req.Location != nil && req.Mode == ModeGuide {
		prompt += fmt.Sprintf("\n\n[GPS: %.4f, %.4f]", req.Location.Lat, req.Location.Lng)
	}

	if req.Image != "" {
		messages = append(messages, userMessageWithImage(prompt, req.Image))
	} else {
		messages = append(messages, openai.UserMessage(prompt))
	}
	return messages
}

// windowHistory keeps the trailing historyWindow messages and trims the window
// so it starts with a user turn, matching the provider's alternation rules.
func windowHistory(history []models.Message) []models.Message {
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	for i, msg := range history {
		if msg.Role == models.MessageRoleUser {
			return history[i:]
		}
	}
	return nil
}

// userMessageWithImage builds a multi-part user message carrying a data URI.
func userMessageWithImage(text, image string) openai.ChatCompletionMessageParamUnion {
	return openai.ChatCompletionMessageParamUnion{
		OfUser: &openai.ChatCompletionUserMessageParam{
			Content: openai.ChatCompletionUserMessageParamContentUnion{
				OfArrayOfContentParts: []openai.ChatCompletionContentPartUnionParam{
					{OfText: &openai.ChatCompletionContentPartTextParam{Text: text}},
					{OfImageURL: &openai.ChatCompletionContentPartImageParam{
						ImageURL: openai.ChatCompletionContentPartImageImageURLParam{URL: image},
					}},
				},
			},
		},
	}
}
