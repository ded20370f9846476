package questions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/ankitpasayat/confident-trivia/game/engine"
)

const (
	geminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-flash:generateContent"
)

// Gemini generates questions via the Google Gemini REST API.
type Gemini struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// NewGemini creates a Gemini-backed source. The source reports ErrUnavailable
// from Generate when the key is empty, so it is safe to place in a chain
// unconditionally.
func NewGemini(apiKey string) *Gemini {
	return &Gemini{
		apiKey:   apiKey,
		endpoint: geminiEndpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (g *Gemini) Name() string { return "gemini" }

// Generate asks the model for a full question set in one call. The prompt
// requests a mixed distribution of question variants; the response is parsed
// and validated before being handed to the caller.
func (g *Gemini) Generate(ctx context.Context, count int, opts Options) ([]engine.Question, error) {
	if g.apiKey == "" {
		return nil, fmt.Errorf("%w: no API key configured", ErrUnavailable)
	}

	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]string{
					{"text": buildPrompt(count, opts, distribution{choice: 40, trueFalse: 25, moreOrLess: 30, numerical: 5})},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"responseMimeType": "application/json",
		},
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	url := g.endpoint + "?key=" + g.apiKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: gemini returned %d: %s", ErrUnavailable, resp.StatusCode, body)
	}

	var apiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("%w: decoding gemini response: %v", ErrUnavailable, err)
	}
	if len(apiResp.Candidates) == 0 || len(apiResp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: gemini returned no candidates", ErrUnavailable)
	}

	questions, err := parseGenerated(apiResp.Candidates[0].Content.Parts[0].Text, "gemini")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	shuffleQuestions(questions)
	if count < len(questions) {
		questions = questions[:count]
	}
	return questions, nil
}

// distribution is the requested percentage split across question variants.
type distribution struct {
	choice     int
	trueFalse  int
	moreOrLess int
	numerical  int
}

func buildPrompt(count int, opts Options, d distribution) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate exactly %d trivia questions as a JSON array. ", count)
	fmt.Fprintf(&b, "Use roughly this mix: %d%% multiple-choice, %d%% true-false, %d%% more-or-less, %d%% numerical. ",
		d.choice, d.trueFalse, d.moreOrLess, d.numerical)
	if len(opts.Categories) > 0 {
		fmt.Fprintf(&b, "Limit categories to: %s. ", strings.Join(opts.Categories, ", "))
	}
	if len(opts.Difficulties) > 0 {
		names := make([]string, len(opts.Difficulties))
		for i, diff := range opts.Difficulties {
			names[i] = string(diff)
		}
		fmt.Fprintf(&b, "Limit difficulty to: %s. ", strings.Join(names, ", "))
	}
	b.WriteString(`Each question is an object with fields: "id" (string), "type" (one of "multiple-choice", "true-false", "more-or-less", "numerical"), "text" (the question string), "category" (string), "difficulty" ("easy"|"medium"|"hard"), "explanation" (string). `)
	b.WriteString(`Multiple-choice questions add "options" (array of exactly 4 strings) and "correctAnswer" (index 0-3). `)
	b.WriteString(`True-false questions add "correctAnswer" (boolean). `)
	b.WriteString(`More-or-less questions add "option1" and "option2" (strings) and "correctAnswer" (0 for option1, 1 for option2). `)
	b.WriteString(`Numerical questions add "correctAnswer" (number), optional "unit" (string) and "acceptableRange" (number). `)
	b.WriteString("Return only the JSON array, no prose.")
	return b.String()
}

// parseGenerated decodes and validates a model-produced question array,
// tolerating markdown code fences around the JSON.
func parseGenerated(text, sourceName string) ([]engine.Question, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}

	var questions []engine.Question
	if err := json.Unmarshal([]byte(text), &questions); err != nil {
		var wrapped struct {
			Questions []engine.Question `json:"questions"`
		}
		if err := json.Unmarshal([]byte(text), &wrapped); err != nil {
			return nil, fmt.Errorf("parsing %s output: %v", sourceName, err)
		}
		questions = wrapped.Questions
	}

	valid := questions[:0]
	for i := range questions {
		q := questions[i]
		if q.ID == "" {
			q.ID = fmt.Sprintf("%s-q%d", sourceName, i+1)
		}
		if err := q.Validate(); err != nil {
			continue
		}
		valid = append(valid, q)
	}
	if len(valid) == 0 {
		return nil, fmt.Errorf("%s produced no valid questions", sourceName)
	}
	return valid, nil
}

func shuffleQuestions(qs []engine.Question) {
	rand.Shuffle(len(qs), func(i, j int) {
		qs[i], qs[j] = qs[j], qs[i]
	})
}
