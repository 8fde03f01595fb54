package gemini

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
)

func TestNewGenerator_RequiresAPIKey(t *testing.T) {
	if _, err := NewGenerator(context.Background(), &Config{Model: "gemini-1.5-flash"}); err == nil {
		t.Fatal("expected error for missing api key")
	}
}

func TestExtractText_JoinsParts(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Parts: []genai.Part{genai.Text("hello "), genai.Text("world")},
			},
		}},
	}

	text, err := extractText(resp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "hello world" {
		t.Errorf("unexpected text: %q", text)
	}
}

func TestExtractText_NoCandidates(t *testing.T) {
	if _, err := extractText(&genai.GenerateContentResponse{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestExtractText_NoContent(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{}},
	}
	if _, err := extractText(resp); err == nil {
		t.Fatal("expected error")
	}
}

func TestExtractText_NoTextParts(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Parts: []genai.Part{genai.Blob{MIMEType: "image/png"}},
			},
		}},
	}
	if _, err := extractText(resp); err == nil {
		t.Fatal("expected error")
	}
}
