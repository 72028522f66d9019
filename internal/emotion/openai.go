package emotion

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/kozaktomas/face-sentry/internal/imaging"
)

const openaiModel = openai.ChatModelGPT4_1Mini

// maxFaceImageSize bounds the image sent to vision models; face crops
// rarely exceed this anyway and smaller images are cheaper.
const maxFaceImageSize = 512

// OpenAI classifies emotions with an OpenAI vision model.
type OpenAI struct {
	client *openai.Client
}

// NewOpenAI creates an OpenAI-backed classifier.
func NewOpenAI(apiKey string) *OpenAI {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAI{client: &client}
}

func (p *OpenAI) Name() string {
	return openaiModel
}

func classifierPrompt() string {
	names := make([]string, 0, len(Labels()))
	for _, l := range Labels() {
		names = append(names, string(l))
	}
	return "Look at the face in the image and classify its dominant emotion. " +
		"Answer with exactly one lowercase word from this list and nothing else: " +
		strings.Join(names, ", ") + "."
}

func (p *OpenAI) Classify(ctx context.Context, faceJPEG []byte) (Label, error) {
	resized, err := imaging.Resize(faceJPEG, maxFaceImageSize)
	if err != nil {
		return "", fmt.Errorf("preparing face image: %w", err)
	}
	imageURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(resized)

	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openaiModel,
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfArrayOfContentParts: []openai.ChatCompletionContentPartUnionParam{
							openai.TextContentPart(classifierPrompt()),
							openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
								URL:    imageURL,
								Detail: "low",
							}),
						},
					},
				},
			},
		},
		MaxTokens: openai.Int(5),
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no response from OpenAI")
	}

	label, ok := Parse(resp.Choices[0].Message.Content)
	if !ok {
		return "", fmt.Errorf("unexpected classifier answer %q", resp.Choices[0].Message.Content)
	}
	return label, nil
}
