package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/UnderTheBridgeCoding/OmegaParse/app/database"
	"github.com/UnderTheBridgeCoding/OmegaParse/app/schema"
)

const defaultRecordLimit = 100

// Handler serves the finished run: the in-memory summary plus, when a
// catalog was written, the persisted records.
type Handler struct {
	summary    schema.ProcessingSummary
	runRepo    database.RunRepository
	recordRepo database.RecordRepository
}

// NewHandler creates a report handler. runRepo and recordRepo may be nil
// when no catalog was configured; record endpoints then answer 503.
func NewHandler(summary schema.ProcessingSummary, runRepo database.RunRepository,
	recordRepo database.RecordRepository) *Handler {
	return &Handler{
		summary:    summary,
		runRepo:    runRepo,
		recordRepo: recordRepo,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"timestamp":     time.Now().In(time.Local).Format(time.RFC3339),
		"total_files":   h.summary.TotalFiles,
		"total_records": h.summary.TotalRecords,
		"catalog":       h.recordRepo != nil,
	})
}

func (h *Handler) GetSummary(c *gin.Context) {
	c.JSON(http.StatusOK, h.summary)
}

func (h *Handler) ListRecords(c *gin.Context) {
	if h.runRepo == nil || h.recordRepo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "Catalog not available",
			"message": "Run with --db-path to persist records for querying",
		})
		return
	}

	run, err := h.runRepo.GetLatestRun()
	if err != nil {
		slog.Error("Database error", "operation", "get_latest_run", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load run"})
		return
	}
	if run == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No runs recorded"})
		return
	}

	filter := database.RecordFilter{
		ContentType: c.Query("content_type"),
		Channel:     c.Query("channel"),
		Limit:       queryInt(c, "limit", defaultRecordLimit),
		Offset:      queryInt(c, "offset", 0),
	}

	records, err := h.recordRepo.GetRecords(run.ID, filter)
	if err != nil {
		slog.Error("Database error", "operation", "get_records", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load records"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"run_id":  run.ID,
		"total":   len(records),
		"records": records,
	})
}

func queryInt(c *gin.Context, name string, fallback int) int {
	value := c.Query(name)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return fallback
	}
	return parsed
}
