package questions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ankitpasayat/confident-trivia/game/engine"
)

const openaiEndpoint = "https://api.openai.com/v1/chat/completions"

// OpenAI generates questions via the OpenAI chat completions API.
type OpenAI struct {
	apiKey     string
	endpoint   string
	model      string
	httpClient *http.Client
}

// NewOpenAI creates an OpenAI-backed source. Like NewGemini the returned
// source only fails at Generate time when no key is configured.
func NewOpenAI(apiKey string) *OpenAI {
	return &OpenAI{
		apiKey:   apiKey,
		endpoint: openaiEndpoint,
		model:    "gpt-4o-mini",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) Generate(ctx context.Context, count int, opts Options) ([]engine.Question, error) {
	if o.apiKey == "" {
		return nil, fmt.Errorf("%w: no API key configured", ErrUnavailable)
	}

	prompt := buildPrompt(count, opts, distribution{choice: 50, trueFalse: 20, moreOrLess: 20, numerical: 10})
	reqBody := map[string]interface{}{
		"model": o.model,
		"messages": []map[string]string{
			{"role": "system", "content": `You are a trivia question writer. Respond with a JSON object of the form {"questions": [...]}.`},
			{"role": "user", "content": prompt},
		},
		"response_format": map[string]string{"type": "json_object"},
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, bytes.NewBuffer(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: openai returned %d: %s", ErrUnavailable, resp.StatusCode, body)
	}

	var apiResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("%w: decoding openai response: %v", ErrUnavailable, err)
	}
	if len(apiResp.Choices) == 0 {
		return nil, fmt.Errorf("%w: openai returned no choices", ErrUnavailable)
	}

	questions, err := parseGenerated(apiResp.Choices[0].Message.Content, "openai")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	shuffleQuestions(questions)
	if count < len(questions) {
		questions = questions[:count]
	}
	return questions, nil
}
