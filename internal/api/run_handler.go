package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gobandit/app"
	"gobandit/domain/core"
	"gobandit/domain/reward"
	"gobandit/internal/bandit"
	"gobandit/ports"
)

// RunHandler evaluates inline reward sequences and serves stored runs
type RunHandler struct {
	evaluator *app.EvaluationService
	runs      ports.RunLedgerReader
	defaults  bandit.EnsembleConfig
}

// NewRunHandler creates a new run handler
func NewRunHandler(evaluator *app.EvaluationService, runs ports.RunLedgerReader, defaults bandit.EnsembleConfig) *RunHandler {
	return &RunHandler{evaluator: evaluator, runs: runs, defaults: defaults}
}

// EvaluateRequest carries a reward sequence inline, one [arm0, arm1] pair per round
type EvaluateRequest struct {
	Name  string       `json:"name" binding:"required"`
	Rows  []reward.Row `json:"rows" binding:"required"`
	Trace bool         `json:"trace"`
	CreateSessionRequest
}

// Evaluate plays a fresh ensemble over the posted sequence and stores the result
func (h *RunHandler) Evaluate(c *gin.Context) {
	var req EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	seq, err := reward.NewSequence(req.Name, req.Rows)
	if err != nil {
		writeError(c, err)
		return
	}

	cfg := req.ensembleConfig(h.defaults)
	result, err := h.evaluator.Evaluate(c.Request.Context(), seq, app.EvaluateRequest{
		Seed:    cfg.Seed,
		Window:  cfg.Window,
		Council: cfg.Council,
		Trace:   req.Trace,
		Persist: true,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// ListRuns returns stored runs, newest first
func (h *RunHandler) ListRuns(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(ports.DefaultRunLimit)))
	if err != nil || limit < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "offset must be a non-negative integer"})
		return
	}

	runs, err := h.runs.ListRuns(c.Request.Context(), ports.RunFilters{
		Sequence: c.Query("sequence"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs, "count": len(runs)})
}

// GetRun returns one stored run
func (h *RunHandler) GetRun(c *gin.Context) {
	id, err := core.ParseRunID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result, err := h.runs.GetRun(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
