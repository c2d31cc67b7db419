package ai

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// BriefService builds the prompt for a meeting and asks a provider for the brief
type BriefService struct {
	provider Provider
	now      func() time.Time
}

func NewBriefService(provider Provider) *BriefService {
	return &BriefService{provider: provider, now: time.Now}
}

func (s *BriefService) GenerateBrief(ctx context.Context, meeting MeetingInput) (*Brief, error) {
	if s.provider == nil {
		return nil, goerr.New("no AI provider configured")
	}

	start := s.now()
	out, err := s.provider.Generate(ctx, BuildBriefPrompt(meeting))
	if err != nil {
		return nil, goerr.Wrap(err, "brief generation failed", goerr.V("title", meeting.Title))
	}

	content := stripFence(out.Text)
	if content == "" {
		return nil, goerr.New("AI provider returned an empty brief", goerr.V("model", out.Model))
	}

	return &Brief{
		Content:  content,
		Model:    out.Model,
		Duration: s.now().Sub(start),
	}, nil
}

// stripFence removes a surrounding ``` or ```markdown fence some models add
func stripFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```markdown")
	text = strings.TrimPrefix(text, "```md")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
