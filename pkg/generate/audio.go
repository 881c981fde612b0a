package generate

import (
	"context"

	"google.golang.org/genai"
)

// SpeechRequest describes one text-to-speech call.
type SpeechRequest struct {
	Text        string
	Voice       string
	Model       string
	MaxAttempts int
}

func (req SpeechRequest) model() string {
	if req.Model == "" {
		return "gemini-2.5-flash-preview-tts"
	}
	return req.Model
}

func (req SpeechRequest) attempts() int {
	if req.MaxAttempts <= 0 {
		return DefaultMaxAttempts
	}
	return req.MaxAttempts
}

// Speech narrates text with the configured prebuilt voice and returns the
// audio as a data-URL artifact. Same retry contract as Image.
func (c *Client) Speech(ctx context.Context, req SpeechRequest) (Artifact, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
	}
	if req.Voice != "" {
		cfg.SpeechConfig = &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: req.Voice},
			},
		}
	}
	contents := []*genai.Content{genai.NewContentFromParts(
		[]*genai.Part{genai.NewPartFromText(req.Text)}, genai.RoleUser,
	)}
	resp, err := c.do(ctx, req.model(), contents, cfg, req.attempts())
	if err != nil {
		return Artifact{}, err
	}
	return firstInlineArtifact(resp)
}
