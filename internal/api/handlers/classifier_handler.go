package handlers

import (
	"github.com/labstack/echo/v4"
	"github.com/opensky-suite/openmail-backend/internal/api/response"
	"github.com/opensky-suite/openmail-backend/internal/services"
	"github.com/opensky-suite/openmail-backend/internal/spamfilter"
)

// ClassifierHandler exposes the spam classifier's admin surface: model
// statistics plus export/import of the trained state.
type ClassifierHandler struct {
	processor services.MailProcessor
}

// NewClassifierHandler creates a new ClassifierHandler
func NewClassifierHandler(processor services.MailProcessor) *ClassifierHandler {
	return &ClassifierHandler{processor: processor}
}

// Stats handles GET /api/classifier/stats
func (h *ClassifierHandler) Stats(c echo.Context) error {
	return response.Success(c, h.processor.ClassifierStats())
}

// Export handles GET /api/classifier/model
func (h *ClassifierHandler) Export(c echo.Context) error {
	return response.Success(c, h.processor.ExportModel())
}

// Import handles PUT /api/classifier/model, replacing the trained model
// wholesale with the submitted snapshot
func (h *ClassifierHandler) Import(c echo.Context) error {
	var snapshot spamfilter.Snapshot
	if err := c.Bind(&snapshot); err != nil {
		return response.BadRequest(c, "invalid model snapshot")
	}

	if err := h.processor.ImportModel(c.Request().Context(), snapshot); err != nil {
		return response.InternalError(c, "failed to import classifier model")
	}

	return response.SuccessWithMessage(c, h.processor.ClassifierStats(), "classifier model imported")
}
