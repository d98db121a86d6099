package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/wonny/supascan/pkg/config"
	"github.com/wonny/supascan/pkg/httputil"
	"github.com/wonny/supascan/pkg/logger"
)

// LLMClient runs one prompt and returns the parsed JSON object from
// the model's reply.
type LLMClient interface {
	Complete(ctx context.Context, prompt string) (map[string]interface{}, error)
}

// fencedJSON strips a markdown code fence around the model's JSON.
var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

const systemMessage = "You are a professional financial analyst. Respond ONLY with valid JSON."

// OpenAIClient talks to an OpenAI-compatible chat completions
// endpoint. A failed call or unparseable reply is retried with a fixed
// delay; the configured retry count is in addition to the first
// attempt.
type OpenAIClient struct {
	cfg        config.AIConfig
	httpClient *httputil.Client
	logger     *logger.Logger

	sleep func(time.Duration) // swapped out in tests
}

// NewOpenAIClient creates an LLM client from config.
func NewOpenAIClient(cfg config.AIConfig, httpClient *httputil.Client, log *logger.Logger) *OpenAIClient {
	return &OpenAIClient{
		cfg:        cfg,
		httpClient: httpClient,
		logger:     log,
		sleep:      time.Sleep,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends the prompt and parses the JSON object in the reply.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (map[string]interface{}, error) {
	var lastErr error

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			c.logger.WithFields(map[string]interface{}{
				"attempt": attempt + 1,
				"error":   lastErr.Error(),
			}).Warn("Retrying LLM call")
			c.sleep(c.cfg.RetryDelay)
		}

		result, err := c.call(ctx, prompt)
		if err == nil {
			return result, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
	}

	return nil, fmt.Errorf("llm call failed after %d attempts: %w", c.cfg.MaxRetries+1, lastErr)
}

func (c *OpenAIClient) call(ctx context.Context, prompt string) (map[string]interface{}, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	request := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemMessage},
			{Role: "user", Content: prompt},
		},
		Temperature: c.cfg.Temperature,
	}

	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}
	resp, err := c.httpClient.PostJSONWithHeaders(callCtx, c.cfg.BaseURL+"/chat/completions", headers, request)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("chat completions status %d: %s", resp.StatusCode, body)
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return nil, fmt.Errorf("decode chat response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("chat response has no choices")
	}

	return ParseModelJSON(chat.Choices[0].Message.Content)
}

// ParseModelJSON extracts the JSON object from a model reply,
// unwrapping a markdown code fence when present.
func ParseModelJSON(content string) (map[string]interface{}, error) {
	if match := fencedJSON.FindStringSubmatch(content); match != nil {
		content = match[1]
	}

	var result map[string]interface{}
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("model reply is not valid JSON: %w", err)
	}
	return result, nil
}
