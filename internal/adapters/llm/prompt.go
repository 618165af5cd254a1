// Package llm holds what the LLM reviewers share: the prompt and response parsing.
package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rasi23/pingpeek-phishguard/internal/core"
)

// SystemPrompt is sent as the system message where the API supports one
const SystemPrompt = "You are a phishing detection system. Respond only with JSON."

const promptFormat = `You are a phishing detection system. A heuristic filter marked the following email as suspicious.
Give a second opinion. Respond with a JSON object containing:
- phishing: boolean (true if the email is a phishing attempt)
- score: number between 0 and 1 (higher means more likely to be phishing)
- explanation: string (brief explanation of your assessment)

Email:
From: %s
Reply-To: %s
Subject: %s
Body:
%s

Respond only with the JSON object and nothing else.`

// ReviewResponse is the JSON object the model is asked for
type ReviewResponse struct {
	Phishing    bool    `json:"phishing"`
	Score       float64 `json:"score"`
	Explanation string  `json:"explanation"`
}

// BuildPrompt formats the review prompt for an email
func BuildPrompt(email *core.ParsedEmail) string {
	return fmt.Sprintf(promptFormat, email.From, email.ReplyTo, email.Subject, email.Body)
}

// ParseOpinion reads the model's answer. Prose around the JSON object is ignored.
func ParseOpinion(model, responseText string) (*core.Opinion, error) {
	var resp ReviewResponse
	if err := json.Unmarshal([]byte(responseText), &resp); err != nil {
		start := strings.Index(responseText, "{")
		end := strings.LastIndex(responseText, "}")
		if start == -1 || end <= start {
			return nil, fmt.Errorf("failed to extract JSON from LLM response: %w", err)
		}
		if err := json.Unmarshal([]byte(responseText[start:end+1]), &resp); err != nil {
			return nil, fmt.Errorf("failed to parse LLM response as JSON: %w", err)
		}
	}

	score := resp.Score
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return &core.Opinion{
		Model:       model,
		Score:       score,
		Explanation: resp.Explanation,
	}, nil
}
