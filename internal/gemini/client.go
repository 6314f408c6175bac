// Package gemini implements the AI backend for pressbot on top of Google's
// Gemini API: shortening news text, generating image prompts and images,
// and rewriting post text from a user instruction.
package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/akorotkov/pressbot/internal/config"
)

// Client is the backend capability surface consumed by the bot handlers.
// Text operations fail with an error once retries are exhausted.
// GenerateImage never fails hard: after exhaustion it degrades to a locally
// synthesized placeholder so the user always gets some image.
type Client interface {
	// Summarize shortens a raw news submission into post text.
	Summarize(ctx context.Context, newsText string) (string, error)

	// ImagePrompt produces the prompt fed to image generation.
	ImagePrompt(ctx context.Context, postText string) (string, error)

	// EditText rewrites currentText according to the instruction.
	EditText(ctx context.Context, currentText, instruction string) (string, error)

	// GenerateImage renders an image for the prompt.
	GenerateImage(ctx context.Context, prompt string) []byte
}

type sdkClient struct {
	genaiClient *genai.Client
	log         *slog.Logger
	textModel   string
	imageModel  string
	textConfig  *genai.GenerateContentConfig
	maxAttempts int
	retryDelay  time.Duration
}

// NewClient creates a Gemini client from the provided configuration.
func NewClient(ctx context.Context, cfg config.GeminiConfig, log *slog.Logger) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	gi, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	textConfig := &genai.GenerateContentConfig{
		Temperature: &cfg.Temperature,
		SafetySettings: []*genai.SafetySetting{
			{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockNone},
			{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockNone},
			{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockNone},
			{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockNone},
		},
	}

	logger := log.With("component", "gemini_client")
	logger.Info("Gemini client initialized", "text_model", cfg.TextModel, "image_model", cfg.ImageModel)

	return &sdkClient{
		genaiClient: gi,
		log:         logger,
		textModel:   cfg.TextModel,
		imageModel:  cfg.ImageModel,
		textConfig:  textConfig,
		maxAttempts: cfg.MaxAttempts,
		retryDelay:  cfg.RetryDelay,
	}, nil
}

// generateText runs one text-model prompt with bounded retries. The backoff
// starts at retryDelay and doubles on every failed attempt.
func (c *sdkClient) generateText(ctx context.Context, op, prompt string) (string, error) {
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	delay := c.retryDelay
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		resp, err := c.genaiClient.Models.GenerateContent(ctx, c.textModel, contents, c.textConfig)
		if err == nil {
			text := strings.TrimSpace(resp.Text())
			if text != "" {
				return text, nil
			}
			err = fmt.Errorf("%s returned empty text", op)
		}

		lastErr = err
		c.log.WarnContext(ctx, "Gemini call failed", "operation", op, "attempt", attempt, "max_attempts", c.maxAttempts, "error", err)

		if attempt < c.maxAttempts {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", fmt.Errorf("%s cancelled: %w", op, ctx.Err())
			}
			delay *= 2
		}
	}

	return "", fmt.Errorf("%s failed after %d attempts: %w", op, c.maxAttempts, lastErr)
}

func (c *sdkClient) Summarize(ctx context.Context, newsText string) (string, error) {
	c.log.DebugContext(ctx, "Summarizing news text", "input_len", len(newsText))

	text, err := c.generateText(ctx, "summarize", fmt.Sprintf(summarizePrompt, newsText))
	if err != nil {
		return "", err
	}

	c.log.InfoContext(ctx, "News text shortened", "input_len", len(newsText), "output_len", len(text))
	return text, nil
}

func (c *sdkClient) ImagePrompt(ctx context.Context, postText string) (string, error) {
	prompt, err := c.generateText(ctx, "image prompt", fmt.Sprintf(imagePromptPrompt, postText))
	if err != nil {
		return "", err
	}

	c.log.InfoContext(ctx, "Image prompt generated", "prompt_preview", truncate(prompt, 100))
	return prompt, nil
}

func (c *sdkClient) EditText(ctx context.Context, currentText, instruction string) (string, error) {
	text, err := c.generateText(ctx, "edit text", fmt.Sprintf(editTextPrompt, instruction, currentText))
	if err != nil {
		return "", err
	}

	c.log.InfoContext(ctx, "Post text edited", "instruction", truncate(instruction, 100))
	return text, nil
}

// GenerateImage renders an image with bounded retries and falls back to the
// placeholder when the model keeps failing or returns no image bytes.
func (c *sdkClient) GenerateImage(ctx context.Context, prompt string) []byte {
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}

	delay := c.retryDelay
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		resp, err := c.genaiClient.Models.GenerateContent(ctx, c.imageModel, contents, nil)
		if err == nil {
			if data := extractImage(resp); len(data) > 0 {
				c.log.InfoContext(ctx, "Image generated", "size", len(data))
				return data
			}
			err = fmt.Errorf("response carried no image data")
		}

		c.log.WarnContext(ctx, "Gemini image generation failed", "attempt", attempt, "max_attempts", c.maxAttempts, "error", err)

		if attempt < c.maxAttempts {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				c.log.WarnContext(ctx, "Image generation cancelled, using placeholder")
				return PlaceholderImage()
			}
			delay *= 2
		}
	}

	c.log.WarnContext(ctx, "Image generation exhausted retries, using placeholder")
	return PlaceholderImage()
}

// extractImage pulls the first inline image blob out of a response.
func extractImage(resp *genai.GenerateContentResponse) []byte {
	if resp == nil {
		return nil
	}
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return part.InlineData.Data
			}
		}
	}
	return nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
