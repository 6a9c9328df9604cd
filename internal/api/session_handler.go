package api

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gobandit/domain/core"
	"gobandit/internal/bandit"
	"gobandit/internal/errors"
	"gobandit/internal/session"
)

// SessionHandler exposes live bandit sessions over JSON
type SessionHandler struct {
	manager  *session.Manager
	defaults bandit.EnsembleConfig
}

// NewSessionHandler creates a new session handler. Requests that omit the seed or
// window fall back to defaults.
func NewSessionHandler(manager *session.Manager, defaults bandit.EnsembleConfig) *SessionHandler {
	return &SessionHandler{manager: manager, defaults: defaults}
}

// CouncilMember is the wire form of one expert's configuration
type CouncilMember struct {
	Threshold float64 `json:"threshold"`
	Drift     float64 `json:"drift"`
	Seed      int64   `json:"seed"`
}

// CreateSessionRequest configures a new session; omitted fields take defaults
type CreateSessionRequest struct {
	Seed    *int64          `json:"seed"`
	Window  int             `json:"window"`
	Council []CouncilMember `json:"council"`
}

// UpdateRequest reports the reward observed for the played arm
type UpdateRequest struct {
	Arm    *int     `json:"arm" binding:"required"`
	Reward *float64 `json:"reward" binding:"required"`
}

// SelectResponse carries the arm to play
type SelectResponse struct {
	SessionID core.SessionID `json:"session_id"`
	Arm       int            `json:"arm"`
}

func (r CreateSessionRequest) ensembleConfig(defaults bandit.EnsembleConfig) bandit.EnsembleConfig {
	cfg := bandit.EnsembleConfig{Seed: defaults.Seed, Window: r.Window}
	if r.Seed != nil {
		cfg.Seed = *r.Seed
	}
	if cfg.Window == 0 {
		cfg.Window = defaults.Window
	}
	for _, m := range r.Council {
		cfg.Council = append(cfg.Council, bandit.NewExpertConfig(m.Threshold, m.Drift, m.Seed))
	}
	return cfg
}

// CreateSession starts a new session
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
			return
		}
	}

	snap, err := h.manager.Create(req.ensembleConfig(h.defaults))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, snap)
}

// SelectArm returns the arm the session's leader suggests
func (h *SessionHandler) SelectArm(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	arm, err := h.manager.Select(id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, SelectResponse{SessionID: id, Arm: int(arm)})
}

// Update feeds an observed reward into the session
func (h *SessionHandler) Update(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	snap, err := h.manager.Update(id, core.Arm(*req.Arm), *req.Reward)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// GetSession returns the session snapshot
func (h *SessionHandler) GetSession(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	snap, err := h.manager.State(id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// DeleteSession ends the session
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	if err := h.manager.Delete(id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func sessionID(c *gin.Context) (core.SessionID, bool) {
	id, err := core.ParseSessionID(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return "", false
	}
	return id, true
}

// writeError maps domain and application errors onto HTTP statuses
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case core.IsNotFoundError(err):
		status = http.StatusNotFound
	case core.IsInvalidArmError(err),
		stderrors.Is(err, core.ErrEmptySequence),
		stderrors.Is(err, core.ErrMalformedRow),
		errors.HasCode(err, errors.CodeConfigInvalid),
		errors.HasCode(err, errors.CodeInvalidInput):
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
