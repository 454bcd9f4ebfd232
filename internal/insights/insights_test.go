package insights

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"google.golang.org/genai"

	"github.com/dvloznov/techmart-analytics/internal/pipeline"
)

// fakeModels records the prompt and returns a canned reply.
type fakeModels struct {
	reply  string
	err    error
	model  string
	prompt string
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model = model
	f.prompt = contents[0].Parts[0].Text
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: f.reply}}}},
		},
	}, nil
}

func sampleDashboard() pipeline.Dashboard {
	return pipeline.Dashboard{
		KPIs: pipeline.KPIs{
			Transactions:  3,
			TotalRevenue:  decimal.NewFromInt(350),
			TotalDiscount: decimal.NewFromInt(10),
			AverageSale:   decimal.NewNullDecimal(decimal.RequireFromString("116.6667")),
		},
		Location: &pipeline.Series{Points: []pipeline.Point{
			{Key: "Mombasa", Revenue: decimal.NewFromInt(200), Count: 1},
			{Key: "Nairobi", Revenue: decimal.NewFromInt(150), Count: 2},
		}},
		Rollup: &pipeline.Series{Points: []pipeline.Point{
			{Key: "2024-01", Revenue: decimal.NewFromInt(300), Count: 2},
			{Key: "2024-02", Revenue: decimal.NewFromInt(50), Count: 1},
		}},
		Pivot: &pipeline.Pivot{
			Rows:    []string{"Electronics"},
			Columns: []string{"2024-01", "2024-02"},
			Cells:   [][]decimal.Decimal{{decimal.NewFromInt(300), decimal.NewFromInt(50)}},
		},
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt(sampleDashboard())

	for _, want := range []string{
		"Transactions: 3",
		"Total revenue: KES 350",
		"Average sale: KES 117",
		"- Mombasa: KES 200 (1 sales)",
		"- 2024-02: KES 50 (1 sales)",
		"- Electronics: KES 350",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestBuildPrompt_TruncatesLongSeries(t *testing.T) {
	var points []pipeline.Point
	for i := 0; i < topN+3; i++ {
		points = append(points, pipeline.Point{Key: fmt.Sprintf("c%02d", i), Revenue: decimal.NewFromInt(1)})
	}
	prompt := BuildPrompt(pipeline.Dashboard{Location: &pipeline.Series{Points: points}})
	if !strings.Contains(prompt, "... 3 more") {
		t.Errorf("expected truncation marker:\n%s", prompt)
	}
	if strings.Contains(prompt, "c12") {
		t.Error("points past the limit should be omitted")
	}
}

func TestGeminiSummarizer_Summarize(t *testing.T) {
	models := &fakeModels{reply: "  Mombasa leads revenue.  \n"}
	s := newGeminiSummarizer(models, "")

	got, err := s.Summarize(context.Background(), sampleDashboard())
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if got != "Mombasa leads revenue." {
		t.Errorf("Summarize() = %q", got)
	}
	if models.model != DefaultModelName {
		t.Errorf("model = %q, want %q", models.model, DefaultModelName)
	}
	if !strings.Contains(models.prompt, "Key figures") {
		t.Error("prompt was not sent")
	}
}

func TestGeminiSummarizer_Errors(t *testing.T) {
	boom := errors.New("quota exceeded")
	if _, err := newGeminiSummarizer(&fakeModels{err: boom}, "m").Summarize(context.Background(), sampleDashboard()); !errors.Is(err, boom) {
		t.Errorf("error = %v, want wrapped %v", err, boom)
	}
	if _, err := newGeminiSummarizer(&fakeModels{reply: "  "}, "m").Summarize(context.Background(), sampleDashboard()); err == nil {
		t.Error("expected error for empty reply")
	}
}

func TestNewGeminiSummarizer_NoKey(t *testing.T) {
	if _, err := NewGeminiSummarizer(context.Background(), "", ""); !errors.Is(err, ErrDisabled) {
		t.Errorf("error = %v, want ErrDisabled", err)
	}
}
