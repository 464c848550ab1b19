// Package gemini implements the tag analyzer on Google Gemini.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"phototagger/internal/domain"
)

// maxTags caps how many tags one analysis may yield.
const maxTags = 5

const tagPrompt = "generate 1-5 comma-separated one-word tags for this photo. " +
	"Tags should be present-tense singular lowercase words a photographer would organize albums with: " +
	"landscape, nature, beach, forest, sunrise, urban, family, friends, bird, animal, boat, camping. " +
	"Use bw for black and white photos. If you know the place, city, or country, add it as a tag. " +
	"Do not combine multiple words and do not use plural words."

type analyzer struct {
	client *genai.Client
	model  string
}

// NewAnalyzer returns a Gemini-backed analyzer using the given API key and
// model name.
func NewAnalyzer(ctx context.Context, apiKey, model string) (domain.Analyzer, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &analyzer{client: client, model: model}, nil
}

func (a *analyzer) Model() string {
	return a.model
}

func (a *analyzer) AnalyzeImage(ctx context.Context, data []byte, mimeType string) ([]string, error) {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	parts := []*genai.Part{
		genai.NewPartFromBytes(data, mimeType),
		genai.NewPartFromText(tagPrompt),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := a.client.Models.GenerateContent(ctx, a.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrAnalyzerUnavailable, err)
	}
	return ParseTags(resp.Text()), nil
}

// ParseTags turns the model's comma-separated completion into at most
// maxTags trimmed, lowercase, deduplicated one-word tags.
func ParseTags(text string) []string {
	seen := make(map[string]struct{})
	var tags []string
	for _, raw := range strings.Split(text, ",") {
		tag := strings.ToLower(strings.TrimSpace(raw))
		tag = strings.Trim(tag, ".")
		if tag == "" || strings.ContainsAny(tag, " \n\t") {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
		if len(tags) == maxTags {
			break
		}
	}
	return tags
}
