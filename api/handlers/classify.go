package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/alxdev/echocheck-backend/internal/classifier"
	"github.com/alxdev/echocheck-backend/internal/extract"
	"github.com/alxdev/echocheck-backend/pkg/logger"
	"github.com/alxdev/echocheck-backend/pkg/metrics"
)

type ClassifyHandler struct {
	extractor  *extract.Extractor
	classifier classifier.Client
	metrics    *metrics.Metrics
	logger     logger.Logger
}

type ClassifyRequest struct {
	Text string `json:"text" binding:"required"`
}

// ClassifyResponse is the stance prediction for a piece of text.
type ClassifyResponse struct {
	Prediction    string             `json:"prediction"`
	Confidence    float64            `json:"confidence"`
	Probabilities map[string]float64 `json:"probabilities"`
	TextLength    int                `json:"text_length"`
}

// FileClassifyResponse adds the upload metadata to the prediction.
type FileClassifyResponse struct {
	ClassifyResponse
	Filename string `json:"filename"`
	FileType string `json:"file_type"`
}

func NewClassifyHandler(e *extract.Extractor, cl classifier.Client, m *metrics.Metrics, log logger.Logger) *ClassifyHandler {
	return &ClassifyHandler{
		extractor:  e,
		classifier: cl,
		metrics:    m,
		logger:     log,
	}
}

// ClassifyText classifies raw text posted as JSON.
func (h *ClassifyHandler) ClassifyText(c *gin.Context) {
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, h.logger, http.StatusBadRequest, "invalid_request", "Field 'text' is required", err)
		return
	}

	cfg := h.extractor.Config()
	text := extract.SanitizeText(req.Text)
	length := utf8.RuneCountInString(text)
	if length < cfg.MinTextLen || length > cfg.MaxTextLen {
		message := fmt.Sprintf("Text must be between %d and %d characters", cfg.MinTextLen, cfg.MaxTextLen)
		handleError(c, h.logger, http.StatusBadRequest, "invalid_request", message, nil)
		return
	}

	pred, err := h.classifier.Predict(c.Request.Context(), text)
	if err != nil {
		handleError(c, h.logger, http.StatusInternalServerError, "classification_failed", "Classification failed", err)
		return
	}

	h.metrics.Classifications.WithLabelValues(pred.Prediction).Inc()

	c.JSON(http.StatusOK, ClassifyResponse{
		Prediction:    pred.Prediction,
		Confidence:    pred.Confidence,
		Probabilities: pred.Probabilities,
		TextLength:    length,
	})
}

// ClassifyFile runs an uploaded document through the extraction pipeline and
// classifies the result.
func (h *ClassifyHandler) ClassifyFile(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		handleError(c, h.logger, http.StatusBadRequest, "invalid_request", "Invalid file upload", err)
		return
	}
	defer file.Close()

	result, err := h.extractor.ExtractText(c.Request.Context(), file, header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		var rejection *extract.Error
		if errors.As(err, &rejection) {
			h.metrics.ExtractionFailures.WithLabelValues(rejection.Code).Inc()
			handleError(c, h.logger, rejection.Status, rejection.Code, rejection.Message, nil)
			return
		}
		handleError(c, h.logger, http.StatusInternalServerError, "extraction_failed", "Failed to process file", err)
		return
	}

	pred, err := h.classifier.Predict(c.Request.Context(), result.Text)
	if err != nil {
		handleError(c, h.logger, http.StatusInternalServerError, "classification_failed", "Classification failed", err)
		return
	}

	h.metrics.Classifications.WithLabelValues(pred.Prediction).Inc()

	c.JSON(http.StatusOK, FileClassifyResponse{
		ClassifyResponse: ClassifyResponse{
			Prediction:    pred.Prediction,
			Confidence:    pred.Confidence,
			Probabilities: pred.Probabilities,
			TextLength:    utf8.RuneCountInString(result.Text),
		},
		Filename: result.Filename,
		FileType: string(result.Kind),
	})
}
