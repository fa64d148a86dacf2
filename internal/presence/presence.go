package presence

import (
	"context"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"gitlab-relay/pkg/log"
)

// ChatClient is the slice of the chat collaborator presence needs.
type ChatClient interface {
	InChannel(channel string) bool
	Join(channel string, immediate bool) error
}

// Presence decides whether the bot must join a channel before speaking
// there. Channels already ensured are remembered in a small LRU so repeated
// webhook calls for the same channel skip the membership query.
type Presence struct {
	l      log.Logger
	chat   ChatClient
	recent *lru.Cache[string, struct{}]
}

func New(l log.Logger, chat ChatClient) *Presence {
	cache, _ := lru.New[string, struct{}](128)
	return &Presence{
		l:      l,
		chat:   chat,
		recent: cache,
	}
}

// EnsureJoined joins channel unless the bot is already a member. Idempotent;
// a redundant join is harmless at the protocol level. Join failures degrade
// to a warning because notice delivery is fire-and-forget.
//
// A cache entry is only trusted while the membership query still agrees:
// the bot can be kicked or part between webhook calls, so a cached channel
// the bot no longer occupies is evicted and rejoined.
func (p *Presence) EnsureJoined(ctx context.Context, channel string) {
	ch := Normalize(channel)

	if _, ok := p.recent.Get(ch); ok {
		if p.chat.InChannel(ch) {
			return
		}
		p.recent.Remove(ch)
	}

	if p.chat.InChannel(ch) {
		p.recent.Add(ch, struct{}{})
		return
	}

	if err := p.chat.Join(ch, true); err != nil {
		p.l.Warnf(ctx, "presence: failed to join %s: %v", ch, err)
		return
	}
	p.recent.Add(ch, struct{}{})
}

// Normalize prefixes channel with # when the caller passed a bare name.
func Normalize(channel string) string {
	if strings.HasPrefix(channel, "#") {
		return channel
	}
	return "#" + channel
}
