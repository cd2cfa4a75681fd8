package rest

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/commitplay/rps-escrow-backend/internal/entity"
)

type gameEngine interface {
	HostGame(ctx context.Context, id, host, counterparty string, wager, stake int64) (*entity.Game, error)
	Join(ctx context.Context, id, player string, stake int64) (*entity.Game, error)
	SubmitMove(ctx context.Context, id, player, moveCommitment string) (*entity.Game, error)
	Reveal(ctx context.Context, id, account, secret, move string) (*entity.Game, error)
	CancelGame(ctx context.Context, id, caller string) (*entity.Game, error)
	ForceForfeit(ctx context.Context, id, caller string) (*entity.Game, error)
	Withdraw(ctx context.Context, account string, amount int64) (int64, error)
	Balance(ctx context.Context, account string) (int64, error)
	GameByID(ctx context.Context, id string) (*entity.Game, error)
	Sweep(ctx context.Context) (int64, error)
}

type lifecycleGuard interface {
	Pause() error
	Resume() error
	Kill() error
	State() string
}

type Server struct {
	logger   *slog.Logger
	engine   gameEngine
	guard    lifecycleGuard
	operator string
	health   func(ctx context.Context) error
	router   *gin.Engine
}

func New(logger *slog.Logger, engine gameEngine, guard lifecycleGuard, operator string, health func(ctx context.Context) error) *Server {
	gin.SetMode(gin.ReleaseMode)

	server := &Server{
		logger:   logger.With("component", "rest"),
		engine:   engine,
		guard:    guard,
		operator: operator,
		health:   health,
		router:   gin.New(),
	}

	server.router.Use(gin.Recovery())
	server.routes()

	return server
}

func (that *Server) routes() {
	api := that.router.Group("/api")
	{
		api.POST("/commitments", that.handleCommitment)
		api.POST("/games", that.handleHostGame)
		api.GET("/games/:id", that.handleGetGame)
		api.POST("/games/:id/join", that.handleJoin)
		api.POST("/games/:id/move", that.handleSubmitMove)
		api.POST("/games/:id/reveal", that.handleReveal)
		api.POST("/games/:id/cancel", that.handleCancel)
		api.POST("/games/:id/forfeit", that.handleForfeit)
		api.GET("/balances/:account", that.handleBalance)
		api.POST("/withdraw", that.handleWithdraw)
	}

	admin := that.router.Group("/admin")
	{
		admin.POST("/pause", that.handlePause)
		admin.POST("/resume", that.handleResume)
		admin.POST("/kill", that.handleKill)
		admin.POST("/sweep", that.handleSweep)
	}

	that.router.GET("/healthz", that.handleHealthz)
	that.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// Handler exposes the router for tests.
func (that *Server) Handler() http.Handler {
	return that.router
}

func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}

		return nil
	}
}

func (that *Server) handleHealthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := that.health(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "storage unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "lifecycle": that.guard.State()})
}
