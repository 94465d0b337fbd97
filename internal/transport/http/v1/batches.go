package v1

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/vijaymuruvalugit/HiringAgentEM/internal/domain"
)

// CreateBatch runs one batch of uploaded files through the matched agents
// and returns the full normalized result. The call is synchronous: the
// response is written after the last task finishes.
// POST /v1/batches
func (h *Handler) CreateBatch(c echo.Context) error {
	ctx := c.Request().Context()

	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
	}
	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "at least one file is required"})
	}

	files := make([]domain.UploadedFile, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		f, err := fh.Open()
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("failed to open %s", fh.Filename)})
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("failed to read %s", fh.Filename)})
		}
		files = append(files, domain.UploadedFile{Filename: fh.Filename, Content: content})
	}

	batch, err := h.service.RunBatch(ctx, files)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, batch)
}

// ListBatches lists recent batch metadata rows, newest first.
// GET /v1/batches
func (h *Handler) ListBatches(c echo.Context) error {
	ctx := c.Request().Context()

	limit := 20
	if l := c.QueryParam("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil {
			limit = val
		}
	}

	batches, err := h.service.ListBatches(ctx, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if batches == nil {
		batches = []domain.Batch{}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"batches": batches,
	})
}

// GetBatch returns one batch row plus its invocation rows.
// GET /v1/batches/:batch_id
func (h *Handler) GetBatch(c echo.Context) error {
	ctx := c.Request().Context()
	batchID := c.Param("batch_id")

	batch, err := h.service.GetBatch(ctx, batchID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if batch == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "batch not found"})
	}

	invocations, err := h.service.GetBatchInvocations(ctx, batchID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if invocations == nil {
		invocations = []domain.Invocation{}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"batch":       batch,
		"invocations": invocations,
	})
}

// GetBatchEvents retrieves events for a batch.
// GET /v1/batches/:batch_id/events
func (h *Handler) GetBatchEvents(c echo.Context) error {
	ctx := c.Request().Context()
	batchID := c.Param("batch_id")

	limit := 100
	if l := c.QueryParam("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil {
			limit = val
		}
	}
	afterTs := int64(0)
	if ts := c.QueryParam("after_ts"); ts != "" {
		if val, err := strconv.ParseInt(ts, 10, 64); err == nil {
			afterTs = val
		}
	}
	var types []string
	if tp := c.QueryParam("types"); tp != "" {
		types = strings.Split(tp, ",")
	}

	events, err := h.service.GetBatchEvents(ctx, batchID, afterTs, types, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if events == nil {
		events = []domain.Event{}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"events": events,
	})
}
