package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/practicecoach-backend/internal/domain/practice"
	"github.com/yungbote/practicecoach-backend/internal/http/response"
	"github.com/yungbote/practicecoach-backend/internal/services"
)

type PracticeHandler struct {
	practice services.PracticeService
}

func NewPracticeHandler(practice services.PracticeService) *PracticeHandler {
	return &PracticeHandler{practice: practice}
}

func badRequest(c *gin.Context, err error) {
	response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
}

func fail(c *gin.Context, err error) {
	response.RespondAPIError(c, classify(err))
}

func indexParam(c *gin.Context) (int, bool) {
	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_index", errors.New("index must be an integer"))
		return 0, false
	}
	return idx, true
}

// GET /practice/draft[?wait=true]
func (h *PracticeHandler) GetDraft(c *gin.Context) {
	wait, _ := strconv.ParseBool(c.DefaultQuery("wait", "false"))
	snap, err := h.practice.Draft(c.Request.Context(), wait)
	if err != nil {
		fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"draft": snap})
}

// PUT /practice/draft/length
// body: { "sessionLength": 45 }
func (h *PracticeHandler) SetSessionLength(c *gin.Context) {
	var req struct {
		SessionLength int `json:"sessionLength"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	snap, err := h.practice.SetSessionLength(c.Request.Context(), req.SessionLength)
	if err != nil {
		fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"draft": snap})
}

// POST /practice/draft/activities
// body: { "exerciseId": "major-scales" }
func (h *PracticeHandler) AddExercise(c *gin.Context) {
	var req struct {
		ExerciseID string `json:"exerciseId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	snap, err := h.practice.AddExercise(c.Request.Context(), req.ExerciseID)
	if err != nil {
		fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"draft": snap})
}

// PUT /practice/draft/activities/:index
// body: { "exerciseId": "chromatic-scale" }
func (h *PracticeHandler) ReplaceActivity(c *gin.Context) {
	idx, ok := indexParam(c)
	if !ok {
		return
	}
	var req struct {
		ExerciseID string `json:"exerciseId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	snap, err := h.practice.ReplaceActivity(c.Request.Context(), idx, req.ExerciseID)
	if err != nil {
		fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"draft": snap})
}

// PATCH /practice/draft/activities/:index
// body: { "duration": 12 }
func (h *PracticeHandler) ResizeActivity(c *gin.Context) {
	idx, ok := indexParam(c)
	if !ok {
		return
	}
	var req struct {
		Duration int `json:"duration"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	snap, err := h.practice.ResizeActivity(c.Request.Context(), idx, req.Duration)
	if err != nil {
		fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"draft": snap})
}

// DELETE /practice/draft/activities/:index
func (h *PracticeHandler) RemoveActivity(c *gin.Context) {
	idx, ok := indexParam(c)
	if !ok {
		return
	}
	snap, err := h.practice.RemoveActivity(c.Request.Context(), idx)
	if err != nil {
		fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"draft": snap})
}

// POST /practice/draft/reorder
// body: { "sourceIndex": 2, "targetIndex": 0, "edge": "before" }
func (h *PracticeHandler) Reorder(c *gin.Context) {
	var req struct {
		SourceIndex *int   `json:"sourceIndex" binding:"required"`
		TargetIndex *int   `json:"targetIndex" binding:"required"`
		Edge        string `json:"edge" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	snap, err := h.practice.Reorder(c.Request.Context(), *req.SourceIndex, *req.TargetIndex, req.Edge)
	if err != nil {
		fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"draft": snap})
}

// POST /practice/sessions
func (h *PracticeHandler) Commit(c *gin.Context) {
	session, err := h.practice.Commit(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"session": session})
}

// GET /practice/sessions[?limit=20]
func (h *PracticeHandler) ListSessions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	sessions, err := h.practice.RecentSessions(c.Request.Context(), limit)
	if err != nil {
		fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"sessions": sessions})
}

// GET /practice/summary
func (h *PracticeHandler) GetSummary(c *gin.Context) {
	text, err := h.practice.SkillSummary(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"summary": text})
}

// PUT /practice/preferences
// body: { "defaultSessionLength": 45 }
func (h *PracticeHandler) UpdatePreferences(c *gin.Context) {
	var req types.UserPreferences
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	prefs, err := h.practice.UpdatePreferences(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"preferences": prefs})
}

// GET /exercises/categories
func (h *PracticeHandler) ListExerciseCategories(c *gin.Context) {
	response.RespondOK(c, gin.H{"categories": h.practice.ExerciseCategories()})
}

// GET /exercises[?category=Scales]
func (h *PracticeHandler) ListExercises(c *gin.Context) {
	exercises, err := h.practice.Exercises(c.Query("category"))
	if err != nil {
		fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"exercises": exercises})
}
