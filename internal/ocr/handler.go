package ocr

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/adiwardana/expense-approval/internal/transport"
	"github.com/adiwardana/expense-approval/pkg/logger"
)

const maxUploadSize = 10 << 20 // 10 MiB

var amountPattern = regexp.MustCompile(`[$€£¥]?\s*(\d+\.?\d*)`)

type Handler struct {
	*transport.BaseHandler
	Extractor Extractor
}

func NewHandler(extractor Extractor) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(logger.L()),
		Extractor:   extractor,
	}
}

type extractResult struct {
	ExtractedText   string   `json:"extracted_text"`
	SuggestedAmount *float64 `json:"suggested_amount"`
}

// Extract accepts a multipart receipt image and returns the extracted
// text plus a naive first-number amount suggestion. The suggestion is a
// hint for the submission form, never trusted data.
func (h *Handler) Extract(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "no image provided")
		return
	}
	defer file.Close()

	text, err := h.Extractor.ExtractText(r.Context(), header.Filename, file)
	if err != nil {
		h.Logger.Error("ocr extraction failed", "error", err, "filename", header.Filename)
		h.WriteError(w, http.StatusBadGateway, "OCR processing failed")
		return
	}

	h.WriteJSON(w, http.StatusOK, extractResult{
		ExtractedText:   text,
		SuggestedAmount: suggestAmount(text),
	})
}

func suggestAmount(text string) *float64 {
	for _, line := range strings.Split(text, "\n") {
		m := amountPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if amount, err := strconv.ParseFloat(m[1], 64); err == nil {
			return &amount
		}
	}
	return nil
}
