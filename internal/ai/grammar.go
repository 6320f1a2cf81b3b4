// Package ai wraps the remote grammar-evaluation service. The rest of the
// application treats it as an opaque collaborator that always produces a
// verdict: any failure degrades to a fallback instead of an error.
package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/example/lingoleap/pkg/models"
)

const fallbackFeedback = "Sorry, I couldn't analyze the sentence. The grammar service might be unavailable."

// GrammarChecker is a client for the chat-completions grammar service
type GrammarChecker struct {
	apiKey      string
	apiURL      string
	model       string
	maxTokens   int
	temperature float64
	client      *http.Client
}

// New creates a new grammar checker client
func New() (*GrammarChecker, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
	}

	return &GrammarChecker{
		apiKey:      apiKey,
		apiURL:      "https://api.openai.com/v1/chat/completions",
		model:       "gpt-3.5-turbo",
		maxTokens:   200,
		temperature: 0.3,
		client:      &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Message represents a message in the chat conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest represents a request to the chat completions API
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

// ChatResponse represents a response from the chat completions API
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Check evaluates a practice sentence that should use the target word.
// It never returns an error: network faults, API errors and malformed
// responses all degrade to a not-correct verdict with a generic message
// and the input sentence echoed back.
func (c *GrammarChecker) Check(sentence, targetWord string) models.GrammarFeedback {
	feedback, err := c.check(sentence, targetWord)
	if err != nil {
		log.Printf("Grammar check failed: %v", err)
		return models.GrammarFeedback{
			IsCorrect:         false,
			Feedback:          fallbackFeedback,
			CorrectedSentence: sentence,
		}
	}
	return feedback
}

func (c *GrammarChecker) check(sentence, targetWord string) (models.GrammarFeedback, error) {
	var feedback models.GrammarFeedback

	prompt := fmt.Sprintf(
		"Analyze the grammar of the following sentence. The user is a language learner who was asked to use the word %q.\n\n"+
			"Sentence: %q\n\n"+
			"Respond ONLY in JSON with this structure:\n"+
			"{\n"+
			"  \"isCorrect\": boolean,\n"+
			"  \"feedback\": string,\n"+
			"  \"correctedSentence\": string\n"+
			"}\n"+
			"feedback is one short sentence. If the sentence is correct say \"Great job!\" and echo the sentence in correctedSentence; "+
			"otherwise explain the main error simply and provide a corrected version.",
		targetWord, sentence,
	)

	messages := []Message{
		{Role: "system", Content: "You are an expert English grammar assistant giving concise, encouraging feedback to language learners."},
		{Role: "user", Content: prompt},
	}

	request := ChatRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}

	requestData, err := json.Marshal(request)
	if err != nil {
		return feedback, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest("POST", c.apiURL, bytes.NewBuffer(requestData))
	if err != nil {
		return feedback, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return feedback, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	var response ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return feedback, fmt.Errorf("failed to decode response: %w", err)
	}

	if response.Error != nil {
		return feedback, fmt.Errorf("API error: %s", response.Error.Message)
	}

	if len(response.Choices) == 0 {
		return feedback, fmt.Errorf("no response choices returned")
	}

	content := stripCodeFence(strings.TrimSpace(response.Choices[0].Message.Content))
	if err := json.Unmarshal([]byte(content), &feedback); err != nil {
		return feedback, fmt.Errorf("failed to parse verdict JSON: %w", err)
	}
	return feedback, nil
}

var codeFence = regexp.MustCompile("(?s)^```(?:\\w*)?\\s*\\n?(.*?)\\n?\\s*```$")

// stripCodeFence unwraps a markdown code fence the model sometimes puts
// around the JSON verdict
func stripCodeFence(s string) string {
	if m := codeFence.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return s
}
