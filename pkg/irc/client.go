package irc

import (
	"crypto/tls"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	ircevent "github.com/thoj/go-ircevent"
)

// ErrNotConnected is returned when a write is attempted before the
// connection is up; writing to the library earlier would block forever.
var ErrNotConnected = fmt.Errorf("irc: not connected")

// Config holds the IRC connection settings.
type Config struct {
	Server   string // host:port
	Nick     string
	Username string
	Password string // server password, optional
	TLS      bool

	// Channels are joined right after registration.
	Channels []string
}

// Message is one inbound PRIVMSG addressed to the bot or a channel it is in.
type Message struct {
	Nick    string // sender's nick
	Login   string // sender's ident, nick when the server supplies none
	ReplyTo string // channel the line arrived in, or the sender's nick for PMs
	Text    string
}

// Handler receives inbound messages. Handlers run on the connection's
// callback goroutine and should not block.
type Handler func(msg Message)

// Client wraps the IRC connection and tracks which channels the bot is in,
// fed by the server's JOIN/PART/KICK echoes.
type Client struct {
	conn *ircevent.Connection
	cfg  Config

	mu        sync.Mutex
	joined    map[string]struct{}
	handlers  []Handler
	connected atomic.Bool
}

func NewClient(cfg Config) *Client {
	conn := ircevent.IRC(cfg.Nick, cfg.Username)
	conn.Password = cfg.Password
	conn.UseTLS = cfg.TLS
	if cfg.TLS {
		host := cfg.Server
		if i := strings.IndexByte(host, ':'); i >= 0 {
			host = host[:i]
		}
		conn.TLSConfig = &tls.Config{ServerName: host}
	}

	c := &Client{
		conn:   conn,
		cfg:    cfg,
		joined: make(map[string]struct{}),
	}

	conn.AddCallback("001", c.onWelcome)
	conn.AddCallback("JOIN", c.onJoin)
	conn.AddCallback("PART", c.onPart)
	conn.AddCallback("KICK", c.onKick)
	conn.AddCallback("PRIVMSG", c.onPrivmsg)

	return c
}

// OnMessage registers a handler for inbound messages. Register before Run.
func (c *Client) OnMessage(h Handler) {
	c.handlers = append(c.handlers, h)
}

// Run connects and serves the connection until Quit. Blocking.
func (c *Client) Run() error {
	if err := c.conn.Connect(c.cfg.Server); err != nil {
		return fmt.Errorf("irc: connect %s: %w", c.cfg.Server, err)
	}
	c.connected.Store(true)
	c.conn.Loop()
	c.connected.Store(false)
	return nil
}

// Quit disconnects from the server and ends Run.
func (c *Client) Quit() {
	c.conn.Quit()
}

// Join asks the server for membership of channel. With immediate set the
// channel is marked joined right away, so it can be addressed before the
// server's JOIN echo arrives.
func (c *Client) Join(channel string, immediate bool) error {
	if !c.connected.Load() {
		return ErrNotConnected
	}

	ch := normalize(channel)
	c.conn.Join(ch)
	if immediate {
		c.mark(ch)
	}
	return nil
}

// Message sends text to target, a channel or a nick.
func (c *Client) Message(target, text string) error {
	if !c.connected.Load() {
		return ErrNotConnected
	}

	c.conn.Privmsg(target, text)
	return nil
}

// InChannel reports whether the bot currently sits in channel.
func (c *Client) InChannel(channel string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.joined[strings.ToLower(normalize(channel))]
	return ok
}

func (c *Client) mark(channel string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.joined[strings.ToLower(channel)] = struct{}{}
}

func (c *Client) unmark(channel string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.joined, strings.ToLower(channel))
}

// onWelcome runs on the server's 001 reply. Registration is complete at
// that point, which can be before Run has observed Connect returning, so
// the connected flag is set here too. The configured channels are joined on
// the connection directly; membership is marked by the JOIN echo.
func (c *Client) onWelcome(e *ircevent.Event) {
	c.connected.Store(true)
	for _, ch := range c.cfg.Channels {
		c.conn.Join(normalize(ch))
	}
}

func (c *Client) onJoin(e *ircevent.Event) {
	if len(e.Arguments) == 0 || e.Nick != c.conn.GetNick() {
		return
	}
	c.mark(e.Arguments[0])
}

func (c *Client) onPart(e *ircevent.Event) {
	if len(e.Arguments) == 0 || e.Nick != c.conn.GetNick() {
		return
	}
	c.unmark(e.Arguments[0])
}

func (c *Client) onKick(e *ircevent.Event) {
	// KICK <channel> <nick> [:reason]
	if len(e.Arguments) < 2 || e.Arguments[1] != c.conn.GetNick() {
		return
	}
	c.unmark(e.Arguments[0])
}

func (c *Client) onPrivmsg(e *ircevent.Event) {
	if len(e.Arguments) == 0 {
		return
	}

	target := e.Arguments[0]
	replyTo := target
	if !strings.HasPrefix(target, "#") {
		// private message: answer the sender, not our own nick
		replyTo = e.Nick
	}

	login := e.User
	if login == "" {
		login = e.Nick
	}

	msg := Message{
		Nick:    e.Nick,
		Login:   strings.TrimPrefix(login, "~"),
		ReplyTo: replyTo,
		Text:    e.Message(),
	}
	for _, h := range c.handlers {
		h(msg)
	}
}

// normalize prefixes channel with # when the caller passed a bare name.
func normalize(channel string) string {
	if strings.HasPrefix(channel, "#") {
		return channel
	}
	return "#" + channel
}
