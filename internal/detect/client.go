package detect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/kozaktomas/face-sentry/internal/imaging"
)

const defaultDetectorURL = "http://localhost:8000"

// Client talks to the face detection sidecar over HTTP. The sidecar
// accepts a multipart image upload and returns bounding boxes with one
// feature vector per face.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a detection client.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultDetectorURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{},
	}
}

// detectResponse represents the response from the detection sidecar.
type detectResponse struct {
	Faces []struct {
		Box       Box       `json:"box"`
		Embedding []float32 `json:"embedding"`
	} `json:"faces"`
}

// postMultipartImage constructs a multipart form with the frame data
// and posts it to the given endpoint.
func (c *Client) postMultipartImage(ctx context.Context, endpoint string, frame []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", "frame.jpg")
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(frame); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// Detect posts the frame to the sidecar and returns the detected
// faces, each with its cropped face image filled in. An unreadable
// embedding for a face is an extraction failure.
func (c *Client) Detect(ctx context.Context, frame []byte) ([]Face, error) {
	body, err := c.postMultipartImage(ctx, "/detect", frame)
	if err != nil {
		return nil, err
	}

	var detResp detectResponse
	if err := json.Unmarshal(body, &detResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	faces := make([]Face, 0, len(detResp.Faces))
	for _, f := range detResp.Faces {
		if len(f.Embedding) == 0 {
			return nil, fmt.Errorf("%w: empty embedding for face at %+v", ErrExtraction, f.Box)
		}
		face := Face{Box: f.Box, Vector: f.Embedding}
		// Best effort: a face that cannot be cropped still counts.
		if crop, err := imaging.Crop(frame, f.Box.Top, f.Box.Right, f.Box.Bottom, f.Box.Left); err == nil {
			face.Crop = crop
		}
		faces = append(faces, face)
	}
	return faces, nil
}
