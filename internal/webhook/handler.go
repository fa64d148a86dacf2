package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gitlab-relay/internal/model"
	"gitlab-relay/internal/notice"
	"gitlab-relay/internal/presence"
	"gitlab-relay/pkg/response"
)

// HandleSystemNotices processes GitLab system hook events.
//
// The channel query parameter only names the join target; the formatted
// notice always goes to the configured notice channel. The channel is read
// from the query string only: the request body carries the JSON payload, so
// a form-encoded channel cannot coexist with it.
// @Summary GitLab system notices
// @Description Relay a GitLab system hook event to the notice channel
// @Tags Webhooks
// @Accept json
// @Produce json
// @Param channel query string true "Channel to join before delivery"
// @Success 200 {object} response.Resp
// @Router /gitlab/system_notices [post]
func (h *Handler) HandleSystemNotices(c *gin.Context) {
	ctx := c.Request.Context()
	deliveryID := uuid.NewString()

	if err := h.limiter.Allow("system_notices"); err != nil {
		h.l.Warnf(ctx, "webhook %s: %v", deliveryID, err)
		response.TooManyRequests(c)
		return
	}

	channel := c.Query("channel")
	if channel == "" {
		response.Error(c, ErrChannelRequired, nil)
		return
	}

	h.presence.EnsureJoined(ctx, channel)

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.l.Errorf(ctx, "webhook %s: failed to read body: %v", deliveryID, err)
		response.Error(c, err, nil)
		return
	}

	var ev model.SystemEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		h.l.Errorf(ctx, "webhook %s: failed to parse system event: %v", deliveryID, err)
		response.Error(c, fmt.Errorf("parse system event: %w", err), nil)
		return
	}

	msgs, err := h.formatter.System(ev)
	if err != nil {
		h.l.Errorf(ctx, "webhook %s: %v", deliveryID, err)
		response.Error(c, err, nil)
		return
	}
	if len(msgs) == 0 {
		h.l.Infof(ctx, "webhook %s: unsupported system event %q ignored", deliveryID, ev.EventName)
		response.OK(c, gin.H{"status": "ignored", "reason": "unsupported event type"})
		return
	}

	h.deliver(ctx, deliveryID, msgs)
	response.OK(c, gin.H{"status": "delivered"})
}

// HandleProjectNotices processes GitLab push hook events: one notice line
// per commit, all delivered to the request-supplied channel (unlike system
// notices, which go to the configured channel).
// @Summary GitLab project notices
// @Description Relay a GitLab push hook to the requested channel, one line per commit
// @Tags Webhooks
// @Accept json
// @Produce json
// @Param channel query string true "Channel the commit lines are sent to"
// @Success 200 {object} response.Resp
// @Router /gitlab/project_notices [post]
func (h *Handler) HandleProjectNotices(c *gin.Context) {
	ctx := c.Request.Context()
	deliveryID := uuid.NewString()

	if err := h.limiter.Allow("project_notices"); err != nil {
		h.l.Warnf(ctx, "webhook %s: %v", deliveryID, err)
		response.TooManyRequests(c)
		return
	}

	channel := c.Query("channel")
	if channel == "" {
		response.Error(c, ErrChannelRequired, nil)
		return
	}

	h.presence.EnsureJoined(ctx, channel)

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.l.Errorf(ctx, "webhook %s: failed to read body: %v", deliveryID, err)
		response.Error(c, err, nil)
		return
	}

	var n model.PushNotice
	if err := json.Unmarshal(body, &n); err != nil {
		h.l.Errorf(ctx, "webhook %s: failed to parse push notice: %v", deliveryID, err)
		response.Error(c, fmt.Errorf("parse push notice: %w", err), nil)
		return
	}

	msgs, err := h.formatter.Push(presence.Normalize(channel), n)
	if err != nil {
		h.l.Errorf(ctx, "webhook %s: %v", deliveryID, err)
		response.Error(c, err, nil)
		return
	}

	h.deliver(ctx, deliveryID, msgs)
	response.OK(c, gin.H{"status": "delivered", "commits": len(msgs)})
}

// deliver sends every formatted line, falling back to the configured notice
// channel when a message carries no target of its own. Send failures are
// logged and skipped: delivery is fire-and-forget, the webhook call has
// already been accepted.
func (h *Handler) deliver(ctx context.Context, deliveryID string, msgs []notice.Message) {
	for _, m := range msgs {
		target := m.Channel
		if target == "" {
			target = h.cfg.NoticeChannel
		}
		if err := h.chat.Message(target, m.Text); err != nil {
			h.l.Errorf(ctx, "webhook %s: failed to deliver to %s: %v", deliveryID, target, err)
		}
	}
}
