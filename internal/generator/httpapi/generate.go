package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/practicecoach-backend/internal/domain/practice"
	"github.com/yungbote/practicecoach-backend/internal/platform/logger"
)

const missingParams = "Missing required parameters: skillSummary and sessionLength"

type generateSessionRequest struct {
	SkillSummary  string `json:"skillSummary"`
	SessionLength int    `json:"sessionLength"`
}

func handleGenerateSession(log *logger.Logger, gen SessionGenerator, maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		var in generateSessionRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": missingParams, "message": err.Error()})
			return
		}
		if strings.TrimSpace(in.SkillSummary) == "" || in.SessionLength <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": missingParams})
			return
		}
		if in.SessionLength > practice.MaxSessionLength {
			c.JSON(http.StatusBadRequest, gin.H{"error": "sessionLength out of range"})
			return
		}

		acts, err := gen.Generate(c.Request.Context(), in.SkillSummary, in.SessionLength)
		if err != nil {
			log.Error("Session generation failed", "request_id", c.GetString(requestIDKey), "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate session", "message": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"activities": acts})
	}
}
