package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/commitplay/rps-escrow-backend/internal/apperror"
	"github.com/commitplay/rps-escrow-backend/internal/commitment"
	"github.com/commitplay/rps-escrow-backend/internal/repository"
)

type commitmentRequest struct {
	Account string `json:"account" binding:"required"`
	Secret  string `json:"secret" binding:"required"`
	Move    string `json:"move" binding:"required"`
}

// handleCommitment derives a commitment id for the caller. Nothing is
// stored; this mirrors the origin system's generateGameId view so
// clients without local hashing can still play.
func (that *Server) handleCommitment(c *gin.Context) {
	var req commitmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	id, err := commitment.Commit(req.Account, req.Secret, req.Move)
	if err != nil {
		that.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"commitment": id})
}

type hostGameRequest struct {
	ID           string `json:"id" binding:"required"`
	Account      string `json:"account" binding:"required"`
	Counterparty string `json:"counterparty"`
	Wager        int64  `json:"wager" binding:"required,min=1"`
	Stake        int64  `json:"stake"`
}

func (that *Server) handleHostGame(c *gin.Context) {
	var req hostGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	game, err := that.engine.HostGame(c.Request.Context(), req.ID, req.Account, req.Counterparty, req.Wager, req.Stake)
	if err != nil {
		that.respondError(c, err)
		return
	}

	gamesStarted.Inc()
	c.JSON(http.StatusCreated, game)
}

func (that *Server) handleGetGame(c *gin.Context) {
	game, err := that.engine.GameByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		that.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, game)
}

type joinRequest struct {
	Account string `json:"account" binding:"required"`
	Stake   int64  `json:"stake"`
}

func (that *Server) handleJoin(c *gin.Context) {
	var req joinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	game, err := that.engine.Join(c.Request.Context(), c.Param("id"), req.Account, req.Stake)
	if err != nil {
		that.respondError(c, err)
		return
	}

	feesCollected.Add(float64(game.Fee))
	c.JSON(http.StatusOK, game)
}

type submitMoveRequest struct {
	Account    string `json:"account" binding:"required"`
	Commitment string `json:"commitment" binding:"required"`
}

func (that *Server) handleSubmitMove(c *gin.Context) {
	var req submitMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	game, err := that.engine.SubmitMove(c.Request.Context(), c.Param("id"), req.Account, req.Commitment)
	if err != nil {
		that.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, game)
}

type revealRequest struct {
	Account string `json:"account" binding:"required"`
	Secret  string `json:"secret" binding:"required"`
	Move    string `json:"move" binding:"required"`
}

func (that *Server) handleReveal(c *gin.Context) {
	var req revealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	game, err := that.engine.Reveal(c.Request.Context(), c.Param("id"), req.Account, req.Secret, req.Move)
	if err != nil {
		that.respondError(c, err)
		return
	}

	if game.IsTerminal() {
		gamesResolved.Inc()
	}

	c.JSON(http.StatusOK, game)
}

type accountRequest struct {
	Account string `json:"account" binding:"required"`
}

func (that *Server) handleCancel(c *gin.Context) {
	var req accountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	game, err := that.engine.CancelGame(c.Request.Context(), c.Param("id"), req.Account)
	if err != nil {
		that.respondError(c, err)
		return
	}

	gamesCanceled.Inc()
	c.JSON(http.StatusOK, game)
}

func (that *Server) handleForfeit(c *gin.Context) {
	var req accountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	game, err := that.engine.ForceForfeit(c.Request.Context(), c.Param("id"), req.Account)
	if err != nil {
		that.respondError(c, err)
		return
	}

	forfeitsForced.Inc()
	c.JSON(http.StatusOK, game)
}

func (that *Server) handleBalance(c *gin.Context) {
	balance, err := that.engine.Balance(c.Request.Context(), c.Param("account"))
	if err != nil {
		that.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"account": c.Param("account"), "balance": balance})
}

type withdrawRequest struct {
	Account string `json:"account" binding:"required"`
	Amount  int64  `json:"amount" binding:"required,min=1"`
}

func (that *Server) handleWithdraw(c *gin.Context) {
	var req withdrawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	remaining, err := that.engine.Withdraw(c.Request.Context(), req.Account, req.Amount)
	if err != nil {
		that.respondError(c, err)
		return
	}

	withdrawals.Inc()
	c.JSON(http.StatusOK, gin.H{"account": req.Account, "balance": remaining})
}

// respondError maps the engine's error kinds onto HTTP statuses.
func (that *Server) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, repository.ErrGameNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperror.ErrNotOperational):
		status = http.StatusServiceUnavailable
	case errors.Is(err, apperror.ErrDuplicateGame), errors.Is(err, apperror.ErrWrongState):
		status = http.StatusConflict
	case errors.Is(err, apperror.ErrNotParticipant):
		status = http.StatusForbidden
	case errors.Is(err, apperror.ErrInsufficientBalance):
		status = http.StatusPaymentRequired
	case errors.Is(err, apperror.ErrInvalidMove),
		errors.Is(err, apperror.ErrInsufficientStake),
		errors.Is(err, apperror.ErrDeadlinePassed),
		errors.Is(err, apperror.ErrDeadlineNotReached),
		errors.Is(err, apperror.ErrCommitmentMismatch):
		status = http.StatusBadRequest
	default:
		that.logger.Error("request failed", "error", err)
	}

	c.JSON(status, gin.H{"error": err.Error()})
}
