package ai

import (
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const (
	// maxAttempts and retryDelay form the whole retry policy: one retry after a fixed pause.
	maxAttempts = 2
	retryDelay  = 500 * time.Millisecond

	// defaultTemperature replaces a non-positive temperature. go-openai omits a zero
	// temperature from the request, which leaves the provider on its own default.
	defaultTemperature float32 = 0.2
)

// Options configures the chat-completion client.
type Options struct {
	APIKey      string
	BaseURL     string // empty means the public OpenAI endpoint
	Model       string
	MaxTokens   int
	Temperature float32 // zero or negative means 0.2
	Language    string
	Timeout     time.Duration // zero means no client-side timeout
	RetryDelay  time.Duration // zero means the default 500ms pause
}

type Generator struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	language    string
	logger      *zap.Logger

	attempts   int
	retryDelay time.Duration
}

func NewGenerator(opts Options, logger *zap.Logger) *Generator {
	config := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		config.BaseURL = opts.BaseURL
	}
	config.HTTPClient = &http.Client{Timeout: opts.Timeout}

	delay := opts.RetryDelay
	if delay <= 0 {
		delay = retryDelay
	}
	model := opts.Model
	if model == "" {
		model = openai.GPT4o
	}
	temperature := opts.Temperature
	if temperature <= 0 {
		temperature = defaultTemperature
	}
	return &Generator{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		maxTokens:   opts.MaxTokens,
		temperature: temperature,
		language:    opts.Language,
		logger:      logger,
		attempts:    maxAttempts,
		retryDelay:  delay,
	}
}
