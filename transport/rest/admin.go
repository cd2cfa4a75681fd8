package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Admin endpoints drive the lifecycle guard. Only the operator account
// may call them; a wrong account gets the same 403 as any other
// unauthorized caller.

func (that *Server) requireOperator(c *gin.Context) (string, bool) {
	var req accountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return "", false
	}

	if req.Account != that.operator {
		c.JSON(http.StatusForbidden, gin.H{"error": "operator account required"})
		return "", false
	}

	return req.Account, true
}

func (that *Server) handlePause(c *gin.Context) {
	if _, ok := that.requireOperator(c); !ok {
		return
	}

	if err := that.guard.Pause(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	that.logger.Info("service paused")
	c.JSON(http.StatusOK, gin.H{"lifecycle": that.guard.State()})
}

func (that *Server) handleResume(c *gin.Context) {
	if _, ok := that.requireOperator(c); !ok {
		return
	}

	if err := that.guard.Resume(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	that.logger.Info("service resumed")
	c.JSON(http.StatusOK, gin.H{"lifecycle": that.guard.State()})
}

func (that *Server) handleKill(c *gin.Context) {
	if _, ok := that.requireOperator(c); !ok {
		return
	}

	if err := that.guard.Kill(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	that.logger.Warn("service killed")
	c.JSON(http.StatusOK, gin.H{"lifecycle": that.guard.State()})
}

func (that *Server) handleSweep(c *gin.Context) {
	if _, ok := that.requireOperator(c); !ok {
		return
	}

	swept, err := that.engine.Sweep(c.Request.Context())
	if err != nil {
		that.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"swept": swept})
}
