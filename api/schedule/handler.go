// Package schedule exposes schedule generation and snapshots over HTTP.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kilianp07/minesched/core/events"
	"github.com/kilianp07/minesched/core/logger"
	"github.com/kilianp07/minesched/core/model"
	"github.com/kilianp07/minesched/core/schedule"
	"github.com/kilianp07/minesched/core/snapshot"
	"github.com/kilianp07/minesched/pkg/export"
)

// Generator runs generations and delay edits on behalf of the API.
type Generator interface {
	Generate(ctx context.Context, req schedule.Request, source string) (events.Generation, error)
	RemoveDelay(ctx context.Context, req RemoveDelayRequest) ([]model.DelaySlot, error)
}

// RemoveDelayRequest asks to clear the explicit delay covering one cell.
type RemoveDelayRequest struct {
	GridHours    int               `json:"gridHours"`
	DelayedSlots []model.DelaySlot `json:"delayedSlots"`
	Site         string            `json:"site" binding:"required"`
	Hour         *int              `json:"hour" binding:"required"`
}

// SnapshotRequest creates a manual snapshot.
type SnapshotRequest struct {
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Grid         *schedule.Grid    `json:"grid"`
	DelayedSlots []model.DelaySlot `json:"delayedSlots"`
}

// GenerateResponse is the data of a successful generation.
type GenerateResponse struct {
	GenerationID string  `json:"generationId"`
	SnapshotID   string  `json:"snapshotId,omitempty"`
	ElapsedMS    float64 `json:"elapsedMs"`
	*schedule.Grid
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Handler serves the schedule API.
type Handler struct {
	gen   Generator
	store snapshot.Store
	log   logger.Logger
	now   func() time.Time
}

// NewHandler creates a handler. A nil logger discards output.
func NewHandler(gen Generator, store snapshot.Store, log logger.Logger) *Handler {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Handler{gen: gen, store: store, log: log, now: time.Now}
}

// Generate handles POST /api/schedule/generate.
func (h *Handler) Generate(c *gin.Context) {
	var req schedule.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	ev, err := h.gen.Generate(c.Request.Context(), req, "api")
	if err != nil {
		h.generationError(c, err)
		return
	}
	Success(c, http.StatusOK, "schedule generated", GenerateResponse{
		GenerationID: ev.ID,
		SnapshotID:   ev.SnapshotID,
		ElapsedMS:    float64(ev.Elapsed.Microseconds()) / 1000,
		Grid:         ev.Grid,
	})
}

func (h *Handler) generationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, schedule.ErrInvalidHorizon):
		Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		Error(c, http.StatusServiceUnavailable, "generation cancelled")
	default:
		_ = c.Error(err)
		Error(c, http.StatusInternalServerError, "generation failed: "+err.Error())
	}
}

// Latest handles GET /api/schedule/latest.
func (h *Handler) Latest(c *gin.Context) {
	s, err := snapshot.Latest(c.Request.Context(), h.store, snapshot.KindGeneration)
	if err != nil {
		h.storeError(c, err)
		return
	}
	Success(c, http.StatusOK, "", s)
}

// History handles GET /api/schedule/history.
func (h *Handler) History(c *gin.Context) {
	q, err := pageQuery(c)
	if err != nil {
		Error(c, http.StatusBadRequest, err.Error())
		return
	}
	q.Kind = snapshot.KindGeneration
	h.list(c, q)
}

// ListSnapshots handles GET /api/snapshots.
func (h *Handler) ListSnapshots(c *gin.Context) {
	q, err := pageQuery(c)
	if err != nil {
		Error(c, http.StatusBadRequest, err.Error())
		return
	}
	switch k := snapshot.Kind(c.Query("kind")); k {
	case "", snapshot.KindGeneration, snapshot.KindManual:
		q.Kind = k
	default:
		Error(c, http.StatusBadRequest, fmt.Sprintf("unknown kind %q", k))
		return
	}
	h.list(c, q)
}

func (h *Handler) list(c *gin.Context, q snapshot.Query) {
	items, err := h.store.List(c.Request.Context(), q)
	if err != nil {
		h.storeError(c, err)
		return
	}
	if items == nil {
		items = []snapshot.Snapshot{}
	}
	Success(c, http.StatusOK, "", gin.H{
		"items":  items,
		"count":  len(items),
		"limit":  q.Limit,
		"offset": q.Offset,
	})
}

// CreateSnapshot handles POST /api/snapshots.
func (h *Handler) CreateSnapshot(c *gin.Context) {
	var req SnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Grid == nil || len(req.Grid.Grid) == 0 {
		Error(c, http.StatusBadRequest, "grid is required")
		return
	}
	if err := validateGrid(req.Grid); err != nil {
		Error(c, http.StatusBadRequest, err.Error())
		return
	}
	s := snapshot.New(snapshot.KindManual, req.Name, req.Grid, req.DelayedSlots, h.now())
	s.Description = strings.TrimSpace(req.Description)
	if err := h.store.Save(c.Request.Context(), s); err != nil {
		h.storeError(c, err)
		return
	}
	Success(c, http.StatusCreated, "snapshot saved", s.Summary())
}

// GetSnapshot handles GET /api/snapshots/:id.
func (h *Handler) GetSnapshot(c *gin.Context) {
	s, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.storeError(c, err)
		return
	}
	Success(c, http.StatusOK, "", s)
}

// DeleteSnapshot handles DELETE /api/snapshots/:id.
func (h *Handler) DeleteSnapshot(c *gin.Context) {
	if err := h.store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.storeError(c, err)
		return
	}
	Success(c, http.StatusOK, "snapshot deleted", nil)
}

// Export handles GET /api/schedule/export/:id?format=json|csv|html|summary.
func (h *Handler) Export(c *gin.Context) {
	s, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.storeError(c, err)
		return
	}
	if s.Grid == nil {
		Error(c, http.StatusNotFound, "snapshot has no grid")
		return
	}
	base := "schedule-" + s.ID
	switch format := c.DefaultQuery("format", "json"); format {
	case "json":
		c.Header("Content-Disposition", `attachment; filename="`+base+`.json"`)
		c.Header("Content-Type", "application/json")
		c.Status(http.StatusOK)
		err = export.WriteJSON(c.Writer, s.Grid)
	case "csv":
		c.Header("Content-Disposition", `attachment; filename="`+base+`.csv"`)
		c.Header("Content-Type", "text/csv")
		c.Status(http.StatusOK)
		err = export.WriteCSV(c.Writer, s.Grid)
	case "html":
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.Status(http.StatusOK)
		err = export.RenderChartHTML(c.Writer, s.Grid, s.Name)
	case "summary":
		Success(c, http.StatusOK, "", export.Summarize(s.Grid))
	default:
		Error(c, http.StatusBadRequest, fmt.Sprintf("unsupported format %q", format))
		return
	}
	if err != nil {
		h.log.Errorf("export %s: %v", s.ID, err)
		_ = c.Error(err)
	}
}

// RemoveDelay handles POST /api/schedule/delays/remove.
func (h *Handler) RemoveDelay(c *gin.Context) {
	var req RemoveDelayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	slots, err := h.gen.RemoveDelay(c.Request.Context(), req)
	switch {
	case err == nil:
		if slots == nil {
			slots = []model.DelaySlot{}
		}
		Success(c, http.StatusOK, "delay removed", gin.H{"delayedSlots": slots})
	case errors.Is(err, schedule.ErrAutomaticDelayRemoval):
		Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, schedule.ErrDelayNotFound):
		Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, schedule.ErrInvalidHorizon):
		Error(c, http.StatusBadRequest, err.Error())
	default:
		_ = c.Error(err)
		Error(c, http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) storeError(c *gin.Context, err error) {
	if errors.Is(err, snapshot.ErrNotFound) {
		Error(c, http.StatusNotFound, "snapshot not found")
		return
	}
	_ = c.Error(err)
	Error(c, http.StatusInternalServerError, "snapshot store: "+err.Error())
}

func pageQuery(c *gin.Context) (snapshot.Query, error) {
	q := snapshot.Query{Limit: defaultPageSize}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return q, fmt.Errorf("invalid limit %q", v)
		}
		q.Limit = min(n, maxPageSize)
	}
	if v := c.Query("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return q, fmt.Errorf("invalid offset %q", v)
		}
		q.Offset = n
	}
	return q, nil
}

// validateGrid rejects client grids whose horizon is unsupported or whose
// rows do not fit it.
func validateGrid(g *schedule.Grid) error {
	if err := schedule.ValidateHorizon(g.GridHours); err != nil {
		return err
	}
	for site, row := range g.Grid {
		if len(row) > g.GridHours {
			return fmt.Errorf("row %s has %d hours, horizon is %d", site, len(row), g.GridHours)
		}
	}
	return nil
}
