package recognition

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/ironsheep/equation-board/internal/imaging"
	"github.com/ironsheep/equation-board/internal/sampler"
)

// Vision client defaults.
const (
	DefaultVisionBaseURL = "https://api.openai.com/v1"
	DefaultVisionModel   = "gpt-4o"
	DefaultMaxTokens     = 300
	DefaultVisionTimeout = 60 * time.Second
)

// SystemPrompt instructs the model to answer with a descriptor or an error
// object and nothing else.
const SystemPrompt = `You are an AI specialized in interpreting handwritten mathematical equations from images and converting them into structured JSON.

Input:
An image containing a handwritten mathematical equation.

Tasks:
1. Extract Equation:
- Accurately extract the handwritten equation from the image.

2. Convert to Expression:
- Translate the right-hand side into an infix expression string using + - * / ^, parentheses, and functions such as sin, cos, tan, sqrt, log, exp, abs. Use pi and e for the constants.

3. Identify Dependent Variable:
- Determine the dependent variable in the equation.

4. Define Scope:
- Assign a sample value to each independent variable.

5. Suggest Variable Ranges:
- Provide appropriate ranges for independent variables for graphical plotting.

Output Format:
Return only a JSON object with the following keys:
- "dependentVariable": String indicating the dependent variable.
- "expression": String representing the expression.
- "scope": Object mapping each independent variable to a sample value.
- "ranges": Object mapping each independent variable to an [min, max] array.

Example Output:
{
  "dependentVariable": "y",
  "expression": "(x - 1) * (x - 4)",
  "scope": {
    "x": 0
  },
  "ranges": {
    "x": [-10, 10]
  }
}

Additional Guidelines:
- Output only JSON. Do not include any explanatory text or comments.
- Use precise numerical values, especially for constants.
- If extraction or conversion fails, return a JSON object with an "error" key describing the issue, for example:
{
  "error": "Unable to parse the handwritten equation. Please ensure the handwriting is clear and follows standard mathematical notation."
}`

// VisionConfig configures a VisionClient. Zero fields take the defaults
// above. BaseURL is the API root; requests go to BaseURL/chat/completions.
type VisionConfig struct {
	BaseURL   string
	Model     string
	APIKey    string
	MaxTokens int
	Timeout   time.Duration
}

// VisionClient recognizes equations with an OpenAI-compatible chat
// completions API that accepts image inputs.
type VisionClient struct {
	cfg        VisionConfig
	httpClient *http.Client
	client     *openai.Client
	logger     *slog.Logger
}

// VisionOption configures a VisionClient.
type VisionOption func(*VisionClient)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) VisionOption {
	return func(v *VisionClient) { v.httpClient = c }
}

// WithLogger sets the logger used for upstream errors.
func WithLogger(l *slog.Logger) VisionOption {
	return func(v *VisionClient) { v.logger = l }
}

// NewVisionClient creates a VisionClient.
func NewVisionClient(cfg VisionConfig, opts ...VisionOption) *VisionClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultVisionBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultVisionModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultVisionTimeout
	}

	v := &VisionClient{cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(v)
	}
	if v.httpClient == nil {
		v.httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	config := openai.DefaultConfig(cfg.APIKey)
	config.BaseURL = cfg.BaseURL
	config.HTTPClient = v.httpClient
	v.client = openai.NewClientWithConfig(config)
	return v
}

// Recognize sends img to the model and parses its answer.
func (v *VisionClient) Recognize(ctx context.Context, img Image) (*sampler.Descriptor, error) {
	if len(img.Data) == 0 {
		return nil, Fail(NoImageMessage, nil)
	}
	mimeType := img.MimeType
	if mimeType == "" {
		mimeType = imaging.JPEG.MimeType()
	}

	resp, err := v.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: v.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt},
			{Role: openai.ChatMessageRoleUser, MultiContent: []openai.ChatMessagePart{{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    imaging.EncodeDataURL(mimeType, img.Data),
					Detail: openai.ImageURLDetailAuto,
				},
			}}},
		},
		MaxTokens: v.cfg.MaxTokens,
	})
	if err != nil {
		v.logFailure(err)
		return nil, Fail("", err)
	}
	if len(resp.Choices) == 0 {
		return nil, Fail("", errors.New("response has no choices"))
	}

	d, err := ParseReply(resp.Choices[0].Message.Content)
	if err != nil {
		v.logger.Debug("vision reply rejected", "error", err)
		return nil, err
	}
	return d, nil
}

func (v *VisionClient) logFailure(err error) {
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		v.logger.Warn("vision request rejected",
			"status", apiErr.HTTPStatusCode, "type", apiErr.Type, "error", apiErr.Message)
	case errors.As(err, &reqErr):
		v.logger.Warn("vision request rejected", "status", reqErr.HTTPStatusCode, "error", reqErr.Err)
	default:
		v.logger.Warn("vision request failed", "base_url", v.cfg.BaseURL, "error", err)
	}
}
