package classifier

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const introPrompt = `You are a strict binary classifier for chat messages.
Answer YES if the message is a self-introduction where the author voluntarily shares at least two of: name or nickname, profession or role, interests or hobbies, goals or intentions, background, location or experience.
Otherwise answer NO.
Answer with exactly one word: YES or NO.

Message: "%s"`

// completionAPI is the slice of the OpenAI client the classifier needs.
// *openai.Client satisfies it; tests substitute a fake.
type completionAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// LLMClassifier asks a chat-completion endpoint whether a message is a
// self-introduction, trying an ordered list of model candidates.
type LLMClassifier struct {
	client         completionAPI
	models         []string
	maxTokens      int
	attemptTimeout time.Duration
	logger         *zap.Logger
}

func NewLLMClassifier(apiKey, baseURL string, models []string, maxTokens int, attemptTimeout time.Duration, logger *zap.Logger) *LLMClassifier {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return &LLMClassifier{
		client:         openai.NewClientWithConfig(config),
		models:         models,
		maxTokens:      maxTokens,
		attemptTimeout: attemptTimeout,
		logger:         logger,
	}
}

// IsIntroduction walks the candidate list in order. A rate-limited
// candidate is skipped silently, any other failure is logged and the
// next candidate is tried. If every candidate fails the answer is
// false: a provider outage must not flood the store with unverified
// introductions.
func (c *LLMClassifier) IsIntroduction(ctx context.Context, text string) bool {
	prompt := fmt.Sprintf(introPrompt, sanitizeText(text))

	for _, model := range c.models {
		raw, err := c.complete(ctx, model, prompt)
		if err != nil {
			if isRateLimited(err) {
				c.logger.Debug("model rate limited, trying next candidate",
					zap.String("model", model))
				continue
			}
			c.logger.Warn("classification attempt failed",
				zap.Error(err),
				zap.String("model", model))
			continue
		}

		return parseDecision(raw)
	}

	c.logger.Warn("all model candidates failed, treating as not an introduction")
	return false
}

func (c *LLMClassifier) complete(ctx context.Context, model, prompt string) (string, error) {
	attemptCtx := ctx
	if c.attemptTimeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, c.attemptTimeout)
		defer cancel()
	}

	resp, err := c.client.CreateChatCompletion(
		attemptCtx,
		openai.ChatCompletionRequest{
			Model: model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			MaxTokens:   c.maxTokens,
			Temperature: 0,
			Stop:        []string{"\n"},
		},
	)
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("empty completion response")
	}

	return resp.Choices[0].Message.Content, nil
}

func isRateLimited(err error) bool {
	var apiErr *openai.APIError
	return errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests
}
