package server

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MarcoPoloResearchLab/aexsite/internal/auth"
	"github.com/MarcoPoloResearchLab/aexsite/internal/content"
)

const realtimeEventReady = "ready"

type revalidateRequestPayload struct {
	Slug string `json:"slug"`
}

type revalidateResponsePayload struct {
	OK          bool    `json:"ok"`
	Revalidated bool    `json:"revalidated"`
	Scope       string  `json:"scope"`
	Slug        *string `json:"slug"`
	At          string  `json:"at"`
}

type realtimeEventPayload struct {
	Source    string `json:"source"`
	Scope     string `json:"scope,omitempty"`
	Slug      string `json:"slug,omitempty"`
	Timestamp string `json:"timestamp"`
}

func (h *httpHandler) handleRevalidate(c *gin.Context) {
	if err := h.authorizer.Authorize(c.Request); err != nil {
		if errors.Is(err, auth.ErrSecretNotConfigured) {
			h.logger.Error("revalidate secret is not configured")
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "revalidate secret is not configured"})
			return
		}
		h.logger.Info("revalidate request rejected", zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "unauthorized"})
		return
	}

	// The body is optional; anything unreadable means a full invalidation.
	var request revalidateRequestPayload
	if c.Request.ContentLength != 0 {
		_ = c.ShouldBindJSON(&request)
	}

	scope, normalized := h.content.Invalidate(request.Slug)
	now := h.clock().UTC()
	h.realtime.Publish(RealtimeMessage{
		EventType: RealtimeEventRevalidated,
		Scope:     string(scope),
		Slug:      normalized,
		Timestamp: now,
	})
	h.logger.Info("content cache invalidated", zap.String("scope", string(scope)), zap.String("slug", normalized))

	response := revalidateResponsePayload{
		OK:          true,
		Revalidated: true,
		Scope:       string(scope),
		At:          now.Format(time.RFC3339),
	}
	if scope == content.ScopeSlug {
		response.Slug = &normalized
	}
	c.JSON(http.StatusOK, response)
}

func (h *httpHandler) handleRevalidateEvents(c *gin.Context) {
	ctx := c.Request.Context()
	stream, cleanup := h.realtime.Subscribe(ctx)
	defer cleanup()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.SSEvent(realtimeEventReady, h.eventPayload(RealtimeMessage{Timestamp: h.clock().UTC()}))
	c.Writer.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	c.Stream(func(_ io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case message, ok := <-stream:
			if !ok {
				return false
			}
			c.SSEvent(message.EventType, h.eventPayload(message))
			return true
		case <-ticker.C:
			c.SSEvent(realtimeEventHeartbeat, h.eventPayload(RealtimeMessage{Timestamp: h.clock().UTC()}))
			return true
		}
	})
}

func (h *httpHandler) eventPayload(message RealtimeMessage) realtimeEventPayload {
	return realtimeEventPayload{
		Source:    realtimeSourceBackend,
		Scope:     message.Scope,
		Slug:      strings.TrimSpace(message.Slug),
		Timestamp: message.Timestamp.Format(time.RFC3339),
	}
}
