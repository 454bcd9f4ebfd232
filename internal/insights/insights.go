// Package insights produces a short narrative summary of a dashboard with a
// Gemini model.
package insights

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/dvloznov/techmart-analytics/internal/pipeline"
)

// DefaultModelName is used when no model is configured.
const DefaultModelName = "gemini-2.5-flash"

// ErrDisabled is returned when no summarizer is configured.
var ErrDisabled = errors.New("insights are not configured")

// Summarizer turns a dashboard into prose.
type Summarizer interface {
	Summarize(ctx context.Context, d pipeline.Dashboard) (string, error)
}

// contentGenerator is the subset of *genai.Models the summarizer uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiSummarizer calls the Gemini API.
type GeminiSummarizer struct {
	models contentGenerator
	model  string
}

// NewGeminiSummarizer creates a summarizer using apiKey. An empty model
// selects DefaultModelName.
func NewGeminiSummarizer(ctx context.Context, apiKey, model string) (*GeminiSummarizer, error) {
	if apiKey == "" {
		return nil, ErrDisabled
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("NewGeminiSummarizer: create genai client: %w", err)
	}
	return newGeminiSummarizer(client.Models, model), nil
}

func newGeminiSummarizer(models contentGenerator, model string) *GeminiSummarizer {
	if model == "" {
		model = DefaultModelName
	}
	return &GeminiSummarizer{models: models, model: model}
}

// Summarize implements Summarizer.
func (s *GeminiSummarizer) Summarize(ctx context.Context, d pipeline.Dashboard) (string, error) {
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: BuildPrompt(d)}},
		},
	}

	resp, err := s.models.GenerateContent(ctx, s.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("Summarize: generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("Summarize: empty response from model")
	}
	return text, nil
}

// topN bounds how many groups of each series go into the prompt.
const topN = 10

// BuildPrompt renders the dashboard figures as plain text for the model.
func BuildPrompt(d pipeline.Dashboard) string {
	var b strings.Builder

	b.WriteString("You are a retail analyst for TechMart, an electronics and general goods chain in Kenya.\n")
	b.WriteString("Write a short summary (at most five sentences) of the sales figures below for a store manager.\n")
	b.WriteString("Mention the strongest and weakest counties, the trend over time and any category that stands out.\n")
	b.WriteString("Use KES for amounts. Do not invent figures that are not listed.\n\n")

	k := d.KPIs
	b.WriteString("Key figures:\n")
	fmt.Fprintf(&b, "- Transactions: %d\n", k.Transactions)
	fmt.Fprintf(&b, "- Total revenue: %s\n", pipeline.FormatKES(k.TotalRevenue))
	fmt.Fprintf(&b, "- Total discount: %s\n", pipeline.FormatKES(k.TotalDiscount))
	fmt.Fprintf(&b, "- Average sale: %s\n", pipeline.FormatAverage(k.AverageSale))

	writeSeries(&b, "Revenue by county (highest first)", d.Location)
	writeSeries(&b, "Revenue over time", d.Rollup)

	if d.Pivot != nil && len(d.Pivot.Rows) > 0 {
		b.WriteString("\nRevenue by category:\n")
		for i, total := range d.Pivot.RowTotals() {
			fmt.Fprintf(&b, "- %s: %s\n", d.Pivot.Rows[i], pipeline.FormatKES(total))
		}
	}

	return b.String()
}

func writeSeries(b *strings.Builder, heading string, s *pipeline.Series) {
	if s == nil || len(s.Points) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", heading)
	for i, p := range s.Points {
		if i == topN {
			fmt.Fprintf(b, "- ... %d more\n", len(s.Points)-topN)
			break
		}
		fmt.Fprintf(b, "- %s: %s (%d sales)\n", p.Key, pipeline.FormatKES(p.Revenue), p.Count)
	}
}
