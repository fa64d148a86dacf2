package presence_test

import (
	"context"
	"errors"
	"testing"

	"gitlab-relay/internal/presence"
)

type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, arg ...any)                    {}
func (m *mockLogger) Debugf(ctx context.Context, template string, arg ...any)  {}
func (m *mockLogger) Info(ctx context.Context, arg ...any)                     {}
func (m *mockLogger) Infof(ctx context.Context, template string, arg ...any)   {}
func (m *mockLogger) Warn(ctx context.Context, arg ...any)                     {}
func (m *mockLogger) Warnf(ctx context.Context, template string, arg ...any)   {}
func (m *mockLogger) Error(ctx context.Context, arg ...any)                    {}
func (m *mockLogger) Errorf(ctx context.Context, template string, arg ...any)  {}
func (m *mockLogger) Fatal(ctx context.Context, arg ...any)                    {}
func (m *mockLogger) Fatalf(ctx context.Context, template string, arg ...any)  {}
func (m *mockLogger) DPanic(ctx context.Context, arg ...any)                   {}
func (m *mockLogger) DPanicf(ctx context.Context, template string, arg ...any) {}
func (m *mockLogger) Panic(ctx context.Context, arg ...any)                    {}
func (m *mockLogger) Panicf(ctx context.Context, template string, arg ...any)  {}

type join struct {
	channel   string
	immediate bool
}

type mockChat struct {
	in      map[string]bool
	joins   []join
	joinErr error
}

func newMockChat() *mockChat {
	return &mockChat{in: make(map[string]bool)}
}

func (m *mockChat) InChannel(channel string) bool {
	return m.in[channel]
}

func (m *mockChat) Join(channel string, immediate bool) error {
	m.joins = append(m.joins, join{channel, immediate})
	if m.joinErr != nil {
		return m.joinErr
	}
	m.in[channel] = true
	return nil
}

func TestEnsureJoined(t *testing.T) {
	ctx := context.Background()

	t.Run("Joins When Absent", func(t *testing.T) {
		chat := newMockChat()
		p := presence.New(&mockLogger{}, chat)

		p.EnsureJoined(ctx, "ops")

		if len(chat.joins) != 1 {
			t.Fatalf("expected 1 join, got %d", len(chat.joins))
		}
		if chat.joins[0].channel != "#ops" {
			t.Errorf("expected join target #ops, got %q", chat.joins[0].channel)
		}
		if !chat.joins[0].immediate {
			t.Errorf("join must request immediate channel use")
		}
	})

	t.Run("No Join When Already Member", func(t *testing.T) {
		chat := newMockChat()
		chat.in["#ops"] = true
		p := presence.New(&mockLogger{}, chat)

		p.EnsureJoined(ctx, "ops")

		if len(chat.joins) != 0 {
			t.Errorf("expected no join, got %v", chat.joins)
		}
	})

	t.Run("Idempotent", func(t *testing.T) {
		chat := newMockChat()
		p := presence.New(&mockLogger{}, chat)

		p.EnsureJoined(ctx, "ops")
		p.EnsureJoined(ctx, "ops")
		p.EnsureJoined(ctx, "#ops")

		if len(chat.joins) != 1 {
			t.Errorf("expected a single join, got %v", chat.joins)
		}
	})

	t.Run("Rejoins After Kick", func(t *testing.T) {
		chat := newMockChat()
		p := presence.New(&mockLogger{}, chat)

		p.EnsureJoined(ctx, "ops")
		chat.in["#ops"] = false // kicked between webhook calls
		p.EnsureJoined(ctx, "ops")

		if len(chat.joins) != 2 {
			t.Fatalf("expected a rejoin after the kick, got %v", chat.joins)
		}
		if !chat.in["#ops"] {
			t.Errorf("expected membership restored")
		}
	})

	t.Run("Join Failure Is Not Cached", func(t *testing.T) {
		chat := newMockChat()
		chat.joinErr = errors.New("banned")
		p := presence.New(&mockLogger{}, chat)

		p.EnsureJoined(ctx, "ops")
		chat.joinErr = nil
		p.EnsureJoined(ctx, "ops")

		if len(chat.joins) != 2 {
			t.Errorf("expected a retry after failed join, got %v", chat.joins)
		}
	})
}

func TestNormalize(t *testing.T) {
	if got := presence.Normalize("ops"); got != "#ops" {
		t.Errorf("expected #ops, got %q", got)
	}
	if got := presence.Normalize("#ops"); got != "#ops" {
		t.Errorf("expected #ops unchanged, got %q", got)
	}
}
