// Package vision описывает изображения через OpenAI-совместимые vision модели.
//
// Клиент загружает картинку по ссылке, ужимает ее до JPEG, кодирует в
// data URI и отправляет вместе с текстовым промптом. Результат - свободный
// текст, из которого дальше извлекается категория.
package vision

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/ilkoid/sortbot/pkg/config"
	"github.com/ilkoid/sortbot/pkg/imagesource"
	"github.com/ilkoid/sortbot/pkg/utils"
)

// Describer - контракт поставщика описаний изображений.
type Describer interface {
	Describe(ctx context.Context, imageRef, prompt string) (string, error)
}

// Client реализует Describer поверх go-openai.
type Client struct {
	api         *openai.Client
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
	system      string

	images  imagesource.Loader
	proc    config.ImageProcConfig
	limiter *rate.Limiter // nil - без ограничений
}

var _ Describer = (*Client)(nil)

// Option настраивает Client.
type Option func(*Client)

// WithSystemPrompt задает system сообщение для каждого запроса.
func WithSystemPrompt(text string) Option {
	return func(c *Client) {
		c.system = strings.TrimSpace(text)
	}
}

// WithImageProcessing задает ресайз и качество JPEG.
func WithImageProcessing(cfg config.ImageProcConfig) Option {
	return func(c *Client) {
		c.proc = cfg.GetDefaults()
	}
}

// WithRateLimit ограничивает число запросов в минуту. 0 - без лимита.
func WithRateLimit(perMinute, burst int) Option {
	return func(c *Client) {
		if perMinute <= 0 {
			c.limiter = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), burst)
	}
}

// NewClient создает клиент по описанию модели.
//
// BaseURL позволяет работать с OpenAI-совместимыми провайдерами.
func NewClient(modelDef config.ModelDef, images imagesource.Loader, opts ...Option) *Client {
	cfg := openai.DefaultConfig(modelDef.APIKey)
	if modelDef.BaseURL != "" {
		cfg.BaseURL = modelDef.BaseURL
	}

	c := &Client{
		api:         openai.NewClientWithConfig(cfg),
		model:       modelDef.ModelName,
		maxTokens:   modelDef.MaxTokens,
		temperature: float32(modelDef.Temperature),
		timeout:     modelDef.Timeout,
		images:      images,
		proc:        config.ImageProcConfig{}.GetDefaults(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model возвращает имя модели в API.
func (c *Client) Model() string {
	return c.model
}

// Describe возвращает текстовое описание изображения.
func (c *Client) Describe(ctx context.Context, imageRef, prompt string) (string, error) {
	startTime := time.Now()

	raw, err := c.images.Load(ctx, imageRef)
	if err != nil {
		return "", err
	}

	jpegData, err := utils.ResizeImage(raw, c.proc.MaxWidth, c.proc.Quality)
	if err != nil {
		return "", fmt.Errorf("prepare image %s: %w", imageRef, err)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("rate limit wait: %w", err)
		}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    c.buildMessages(prompt, utils.JPEGDataURI(jpegData)),
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}

	utils.Debug("Vision request started",
		"model", c.model,
		"image", imageRef,
		"image_bytes", len(jpegData))

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		utils.Error("Vision API request failed",
			"error", err,
			"model", c.model,
			"duration_ms", time.Since(startTime).Milliseconds())
		return "", fmt.Errorf("vision api error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyDescription
	}

	utils.Info("Vision response received",
		"model", c.model,
		"content_length", len(text),
		"duration_ms", time.Since(startTime).Milliseconds())

	return text, nil
}

// buildMessages собирает system сообщение и user сообщение с картинкой.
func (c *Client) buildMessages(prompt, dataURI string) []openai.ChatCompletionMessage {
	var msgs []openai.ChatCompletionMessage
	if c.system != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: c.system,
		})
	}

	msgs = append(msgs, openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser,
		MultiContent: []openai.ChatMessagePart{
			{
				Type: openai.ChatMessagePartTypeText,
				Text: prompt,
			},
			{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    dataURI,
					Detail: openai.ImageURLDetailAuto,
				},
			},
		},
	})
	return msgs
}
