package command

import (
	"context"
	"regexp"

	"gitlab-relay/internal/credential"
	"gitlab-relay/internal/model"
	"gitlab-relay/pkg/log"
)

// ChatSender is the slice of the chat collaborator the handler replies through.
type ChatSender interface {
	Message(target, text string) error
}

var setPattern = regexp.MustCompile(`set (\S+) (\S+)`)

// Handler dispatches `set <subcommand> <value>` commands from inbound chat.
type Handler struct {
	l     log.Logger
	store *credential.Store
	chat  ChatSender
}

func New(l log.Logger, store *credential.Store, chat ChatSender) *Handler {
	return &Handler{
		l:     l,
		store: store,
		chat:  chat,
	}
}

// Handle inspects one inbound chat line. Lines that are not a recognized
// command, and subcommands other than token, fall through silently.
func (h *Handler) Handle(ctx context.Context, msg model.ChatMessage) {
	m := setPattern.FindStringSubmatch(msg.Text)
	if m == nil {
		return
	}

	switch m[1] {
	case "token":
		h.setToken(ctx, msg, m[2])
	}
}

// setToken upserts the sender's token. The acknowledgement is only sent once
// the record has actually been persisted; a failed save must not claim
// success.
func (h *Handler) setToken(ctx context.Context, msg model.ChatMessage, value string) {
	rec := model.Credential{Login: msg.Login, Key: value}
	if err := h.store.Upsert(rec); err != nil {
		h.l.Errorf(ctx, "command: failed to store token for %s: %v", msg.Login, err)
		h.reply(ctx, msg, "Failed to save token, please try again.")
		return
	}

	h.l.Infof(ctx, "command: token stored for %s", msg.Login)
	h.reply(ctx, msg, "Token set.")
}

func (h *Handler) reply(ctx context.Context, msg model.ChatMessage, text string) {
	if err := h.chat.Message(msg.ReplyTo, text); err != nil {
		h.l.Warnf(ctx, "command: failed to reply to %s: %v", msg.ReplyTo, err)
	}
}
