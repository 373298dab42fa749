package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/adiwardana/expense-approval/internal"
)

// Extractor returns the raw text of a receipt image. Field parsing beyond
// that is best-effort and lives with the caller.
type Extractor interface {
	ExtractText(ctx context.Context, filename string, image io.Reader) (string, error)
}

// HTTPExtractor posts the image to an external OCR service and returns
// its extracted text verbatim.
type HTTPExtractor struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewHTTPExtractor(cfg internal.OCRConfig, logger *slog.Logger) *HTTPExtractor {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPExtractor{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type extractResponse struct {
	Text string `json:"text"`
}

func (e *HTTPExtractor) ExtractText(ctx context.Context, filename string, image io.Reader) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, image); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/extract", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ocr request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("ocr service returned status %d", resp.StatusCode)
	}

	var out extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode ocr response: %w", err)
	}

	return out.Text, nil
}
