package gemini

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"google.golang.org/genai"
)

func TestFirstText(t *testing.T) {
	t.Run("joins parts of the first candidate", func(t *testing.T) {
		resp := &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{
				{Content: &genai.Content{Parts: []*genai.Part{{Text: "## Meeting Details\n"}, {Text: "- Budget"}}}},
				{Content: &genai.Content{Parts: []*genai.Part{{Text: "ignored"}}}},
			},
		}
		gt.Equal(t, firstText(resp), "## Meeting Details\n- Budget")
	})

	t.Run("empty responses yield empty text", func(t *testing.T) {
		gt.Equal(t, firstText(nil), "")
		gt.Equal(t, firstText(&genai.GenerateContentResponse{}), "")
		gt.Equal(t, firstText(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}), "")
	})
}

func TestNewGeminiServiceRequiresKey(t *testing.T) {
	_, err := NewGeminiService(context.Background(), "", "")
	gt.Error(t, err)
}
