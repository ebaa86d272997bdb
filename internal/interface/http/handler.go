package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/support-expert/internal/domain/feedsync"
	"github.com/yanqian/support-expert/internal/domain/support"
)

// Syncer runs feed syncs on demand.
type Syncer interface {
	Sync(ctx context.Context, feed feedsync.Feed) ([]feedsync.Result, error)
}

// Handler wires the HTTP transport to domain services.
type Handler struct {
	supportSvc support.Service
	syncer     Syncer
	queue      feedsync.TriggerQueue
	logger     *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(supportSvc support.Service, syncer Syncer, queue feedsync.TriggerQueue, logger *slog.Logger) *Handler {
	return &Handler{
		supportSvc: supportSvc,
		syncer:     syncer,
		queue:      queue,
		logger:     logger.With("component", "http.handler"),
	}
}

// Answer handles GET /answer?question=.
func (h *Handler) Answer(c *gin.Context) {
	resp, ok := h.answer(c, c.Query("question"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, resp)
}

// AnswerJSON handles POST with a JSON body.
func (h *Handler) AnswerJSON(c *gin.Context) {
	var req support.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	resp, ok := h.answer(c, req.Question)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, resp)
}

// LegacyAnswer keeps the bare-string response of the original endpoint.
func (h *Handler) LegacyAnswer(c *gin.Context) {
	resp, ok := h.answer(c, c.Query("question"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, resp.Answer)
}

func (h *Handler) answer(c *gin.Context, question string) (support.Response, bool) {
	resp, err := h.supportSvc.Answer(c.Request.Context(), support.Request{Question: question})
	if err != nil {
		abortWithError(c, fromAppError(err, "answer_failed"))
		return support.Response{}, false
	}
	return resp, true
}

// Teach stores a curated answer.
func (h *Handler) Teach(c *gin.Context) {
	var req support.TeachRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	resp, err := h.supportSvc.Teach(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromAppError(err, "teach_failed"))
		return
	}
	if claims, ok := getClaims(c); ok {
		h.logger.Info("answer taught", "id", resp.ID, "by", claims.Subject)
	}
	c.JSON(http.StatusCreated, resp)
}

// Sync refreshes one feed or all of them. With async=true the sync is queued.
func (h *Handler) Sync(c *gin.Context) {
	feed, err := feedsync.ParseFeed(c.Param("feed"))
	if err != nil {
		abortWithError(c, fromAppError(err, "sync_failed"))
		return
	}
	if async, _ := strconv.ParseBool(c.Query("async")); async && h.queue != nil {
		if err := h.queue.Enqueue(c.Request.Context(), feed); err != nil {
			abortWithError(c, NewHTTPError(http.StatusInternalServerError, "sync_failed", errMessage(err), err))
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"feed": feed, "status": "queued"})
		return
	}
	results, err := h.syncer.Sync(c.Request.Context(), feed)
	if err != nil {
		abortWithError(c, fromAppError(err, "sync_failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
