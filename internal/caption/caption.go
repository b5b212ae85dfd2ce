// Package caption asks a multimodal model for an Instagram caption,
// hashtags and credit-line templates for a rendered image.
package caption

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/AnyUserName/gridframe-cli/internal/encoder"
)

// Prompt requests the JSON shape Parse understands.
const Prompt = `Analyze this photo and return ONLY a valid JSON object with this exact structure:
{
  "caption": "2-3 sentence engaging Instagram caption, conversational tone, ends with a question or call-to-action",
  "hashtags": ["array", "of", "28", "relevant", "hashtags", "no", "hash", "symbol", "mix", "of", "popular", "niche", "and", "trending"],
  "modelTemplate": "Model: @{model_handle} ✨",
  "photographerTemplate": "📸 Photo: @{photographer_handle}",
  "placeTemplate": "📍 {City}, {Country}"
}
Return only the JSON object, with no markdown, code fences or explanation.`

var (
	// ErrNoAPIKey is returned when no credential is configured.
	ErrNoAPIKey = errors.New("GEMINI_API_KEY is not set; add it to the environment or a .env file to enable suggestions")
	// ErrBadResponse is returned when the reply holds no JSON object.
	ErrBadResponse = errors.New("model returned an unexpected format, please try again")
)

// Suggestion is the structured reply.
type Suggestion struct {
	Caption              string   `json:"caption" yaml:"caption"`
	Hashtags             []string `json:"hashtags" yaml:"hashtags"`
	ModelTemplate        string   `json:"modelTemplate" yaml:"model_template"`
	PhotographerTemplate string   `json:"photographerTemplate" yaml:"photographer_template"`
	PlaceTemplate        string   `json:"placeTemplate" yaml:"place_template"`
}

// Config selects the model.
type Config struct {
	APIKey      string
	Model       string
	Temperature float64
}

// Generator sends a prompt plus one JPEG to a model and returns its text.
type Generator interface {
	Generate(ctx context.Context, cfg Config, prompt string, jpeg []byte) (string, error)
}

// Client produces suggestions.
type Client struct {
	cfg Config
	gen Generator
}

// New returns a client backed by Gemini.
func New(cfg Config) *Client {
	return &Client{cfg: cfg, gen: Gemini{}}
}

// NewWithGenerator returns a client using gen instead of Gemini.
func NewWithGenerator(cfg Config, gen Generator) *Client {
	return &Client{cfg: cfg, gen: gen}
}

// Suggest requests suggestions for an encoded JPEG.
func (c *Client) Suggest(ctx context.Context, jpeg []byte) (*Suggestion, error) {
	if c.cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	if len(jpeg) == 0 {
		return nil, errors.New("no image to describe")
	}
	raw, err := c.gen.Generate(ctx, c.cfg, Prompt, jpeg)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

// SuggestDataURL is Suggest for a "data:image/jpeg;base64,..." payload.
func (c *Client) SuggestDataURL(ctx context.Context, url string) (*Suggestion, error) {
	_, data, err := encoder.ParseDataURL(url)
	if err != nil {
		return nil, err
	}
	return c.Suggest(ctx, data)
}

// Parse decodes the outermost {...} span of raw, tolerating markdown
// fences or chatter around it. Hashtags lose any leading '#'.
func Parse(raw string) (*Suggestion, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < start {
		return nil, ErrBadResponse
	}
	var s Suggestion
	if err := json.Unmarshal([]byte(raw[start:end+1]), &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	tags := s.Hashtags[:0]
	for _, t := range s.Hashtags {
		t = strings.TrimSpace(strings.TrimLeft(t, "#"))
		if t != "" {
			tags = append(tags, t)
		}
	}
	s.Hashtags = tags
	return &s, nil
}

// HashtagLine joins the hashtags as "#a #b #c".
func (s *Suggestion) HashtagLine() string {
	var b strings.Builder
	for i, t := range s.Hashtags {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteByte('#')
		b.WriteString(t)
	}
	return b.String()
}
