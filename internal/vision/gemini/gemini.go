// Package gemini implements vision.Provider using Google's Gemini models
// through their OpenAI-compatible endpoint, so the standard openai-go client
// does the wire work.
package gemini

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/starford/ansuz/internal/vision"
)

// defaultBaseURL is Gemini's OpenAI-compatibility endpoint.
const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

// describePrompt is the fixed instruction sent with every image. The model's
// reply is returned to the caller verbatim.
const describePrompt = "Describe this image in detail for a visually impaired person. " +
	"Include any visible text, objects, people, colors, and the overall scene. " +
	"Be clear and concise."

// simplifySystemPrompt instructs the model for text simplification requests.
const simplifySystemPrompt = "You simplify text for people with reading difficulties. " +
	"Rewrite the user's text in short sentences with common words, keeping all of the meaning. " +
	"Reply with the simplified text only."

// Provider implements vision.Provider against the Gemini API.
type Provider struct {
	client oai.Client
	model  string
}

// Compile-time interface assertion.
var _ vision.Provider = (*Provider)(nil)

// config holds optional configuration for the provider.
type config struct {
	baseURL string
	timeout time.Duration
}

// Option is a functional option for Provider.
type Option func(*config)

// WithBaseURL overrides the default Gemini OpenAI-compatibility base URL.
func WithBaseURL(url string) Option {
	return func(c *config) {
		c.baseURL = url
	}
}

// WithTimeout sets a per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// New constructs a Gemini-backed Provider.
func New(apiKey string, model string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: apiKey must not be empty")
	}
	if model == "" {
		return nil, fmt.Errorf("gemini: model must not be empty")
	}

	cfg := &config{baseURL: defaultBaseURL}
	for _, o := range opts {
		o(cfg)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(cfg.baseURL),
	}
	if cfg.timeout > 0 {
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{
			Timeout: cfg.timeout,
		}))
	}

	return &Provider{client: oai.NewClient(reqOpts...), model: model}, nil
}

// DescribeImage implements vision.Provider. The image is inlined as a base64
// data URL alongside the fixed descriptive prompt.
func (p *Provider) DescribeImage(ctx context.Context, image []byte, mimeType string) (string, error) {
	if len(image) == 0 {
		return "", fmt.Errorf("gemini: image must not be empty")
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))

	params := oai.ChatCompletionNewParams{
		Model: shared.ChatModel(p.model),
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.UserMessage([]oai.ChatCompletionContentPartUnionParam{
				oai.TextContentPart(describePrompt),
				oai.ImageContentPart(oai.ChatCompletionContentPartImageImageURLParam{
					URL: dataURL,
				}),
			}),
		},
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("gemini: describe image: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("gemini: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

// SimplifyText implements vision.Provider.
func (p *Provider) SimplifyText(ctx context.Context, text string) (string, error) {
	if text == "" {
		return "", fmt.Errorf("gemini: text must not be empty")
	}

	params := oai.ChatCompletionNewParams{
		Model: shared.ChatModel(p.model),
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.SystemMessage(simplifySystemPrompt),
			oai.UserMessage(text),
		},
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("gemini: simplify text: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("gemini: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}
