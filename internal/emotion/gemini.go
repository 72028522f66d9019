package emotion

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/kozaktomas/face-sentry/internal/imaging"
)

const geminiModel = "gemini-2.5-flash"

// Gemini classifies emotions with a Gemini vision model.
type Gemini struct {
	client *genai.Client
}

// NewGemini creates a Gemini-backed classifier.
func NewGemini(apiKey string) (*Gemini, error) {
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Gemini{client: client}, nil
}

func (p *Gemini) Name() string {
	return geminiModel
}

func (p *Gemini) Classify(ctx context.Context, faceJPEG []byte) (Label, error) {
	resized, err := imaging.Resize(faceJPEG, maxFaceImageSize)
	if err != nil {
		return "", fmt.Errorf("preparing face image: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: classifierPrompt()},
				{InlineData: &genai.Blob{Data: resized, MIMEType: "image/jpeg"}},
			},
		},
	}

	result, err := p.client.Models.GenerateContent(ctx, geminiModel, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini API error: %w", err)
	}

	content := result.Text()
	if content == "" {
		return "", errors.New("no response from Gemini")
	}

	label, ok := Parse(content)
	if !ok {
		return "", fmt.Errorf("unexpected classifier answer %q", content)
	}
	return label, nil
}
