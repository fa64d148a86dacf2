package webhook

import (
	"context"

	"gitlab-relay/internal/notice"
	"gitlab-relay/pkg/log"
)

// ChatSender is the slice of the chat collaborator used for delivery.
type ChatSender interface {
	Message(target, text string) error
}

// Presence ensures the bot is in a channel before notices are sent there.
type Presence interface {
	EnsureJoined(ctx context.Context, channel string)
}

// Config holds webhook handler settings.
type Config struct {
	// NoticeChannel is the configured channel system notices stream to.
	NoticeChannel string
	// RateLimitPerMin caps requests per endpoint per minute.
	RateLimitPerMin int
}

type Handler struct {
	cfg       Config
	formatter *notice.Formatter
	presence  Presence
	chat      ChatSender
	limiter   *rateLimiter
	l         log.Logger
}

func NewHandler(
	cfg Config,
	formatter *notice.Formatter,
	presence Presence,
	chat ChatSender,
	l log.Logger,
) *Handler {
	return &Handler{
		cfg:       cfg,
		formatter: formatter,
		presence:  presence,
		chat:      chat,
		limiter:   newRateLimiter(cfg.RateLimitPerMin),
		l:         l,
	}
}
