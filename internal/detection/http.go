package detection

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// HTTPDetector posts images to an object-detection model server. The server
// is expected to answer {"detections":[{"label":"dosa","confidence":0.91}]}.
type HTTPDetector struct {
	url    string
	client *http.Client
}

var _ Detector = (*HTTPDetector)(nil)

// NewHTTPDetector creates a detector for the model server at url.
func NewHTTPDetector(url string, timeout time.Duration) *HTTPDetector {
	return &HTTPDetector{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type detectResponse struct {
	Detections []struct {
		Label      string  `json:"label"`
		Confidence float64 `json:"confidence"`
	} `json:"detections"`
}

func (d *HTTPDetector) Detect(ctx context.Context, image []byte) ([]string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", "meal.jpg")
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &ResponseError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var result detectResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &ResponseError{StatusCode: resp.StatusCode, Body: string(body), Err: err}
	}

	labels := make([]string, 0, len(result.Detections))
	for _, det := range result.Detections {
		if det.Confidence < MinConfidence || det.Label == "" {
			continue
		}
		labels = append(labels, det.Label)
	}
	return labels, nil
}
