package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"

	"gitlab-relay/config"
	_ "gitlab-relay/docs" // Swagger docs
	"gitlab-relay/internal/command"
	"gitlab-relay/internal/credential"
	"gitlab-relay/internal/httpserver"
	"gitlab-relay/internal/model"
	"gitlab-relay/internal/notice"
	"gitlab-relay/internal/presence"
	"gitlab-relay/internal/webhook"
	"gitlab-relay/pkg/gitlab"
	"gitlab-relay/pkg/irc"
	"gitlab-relay/pkg/log"
)

// @title       GitLab Relay API
// @description Relays GitLab webhook events into IRC and manages per-user API tokens.
// @version     1
// @host        localhost:8080
// @schemes     http
func main() {
	// 1. Configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Failed to load config: ", err)
		return
	}

	// 2. Logger
	logger := log.Init(log.ZapConfig{
		Level:        cfg.Logger.Level,
		Mode:         cfg.Logger.Mode,
		Encoding:     cfg.Logger.Encoding,
		ColorEnabled: cfg.Logger.ColorEnabled,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx, "Starting GitLab Relay...")
	logger.Infof(ctx, "Environment: %s", cfg.Environment.Name)
	logger.Infof(ctx, "GitLab endpoint: %s", cfg.GitLab.Endpoint)
	logger.Infof(ctx, "Notice channel: %s", cfg.GitLab.Channel)

	// 3. IRC client; the notice channel is joined right after registration
	chat := irc.NewClient(irc.Config{
		Server:   cfg.IRC.Server,
		Nick:     cfg.IRC.Nick,
		Username: cfg.IRC.Username,
		Password: cfg.IRC.Password,
		TLS:      cfg.IRC.TLS,
		Channels: []string{cfg.GitLab.Channel},
	})

	// 4. Credential store
	store := credential.New(credential.NewFileStore(afero.NewOsFs(), cfg.Store.Path))

	// 5. Chat commands (set token)
	commandHandler := command.New(logger, store, chat)
	chat.OnMessage(func(msg irc.Message) {
		commandHandler.Handle(ctx, model.ChatMessage{
			Nick:    msg.Nick,
			Login:   msg.Login,
			ReplyTo: msg.ReplyTo,
			Text:    msg.Text,
		})
	})

	go func() {
		if err := chat.Run(); err != nil {
			logger.Errorf(ctx, "IRC connection failed: %v", err)
		}
	}()
	go func() {
		<-ctx.Done()
		chat.Quit()
	}()

	// 6. GitLab API sanity check (optional)
	if cfg.GitLab.PrivateToken != "" {
		api := gitlab.NewClient(cfg.GitLab.Endpoint, cfg.GitLab.PrivateToken)
		pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		user, pingErr := api.CurrentUser(pingCtx)
		cancel()
		if pingErr != nil {
			logger.Warnf(ctx, "GitLab API not reachable (optional): %v", pingErr)
		} else {
			logger.Infof(ctx, "GitLab API authenticated as %s", user.Username)
		}
	}

	// 7. Webhook relay pipeline
	formatter := notice.NewFormatter(cfg.GitLab.Endpoint)
	pres := presence.New(logger, chat)
	webhookHandler := webhook.NewHandler(webhook.Config{
		NoticeChannel:   cfg.GitLab.Channel,
		RateLimitPerMin: cfg.Webhook.RateLimitPerMin,
	}, formatter, pres, chat, logger)

	// 8. HTTP Server
	httpServer, err := httpserver.New(logger, httpserver.Config{
		Logger:         logger,
		Port:           cfg.HTTPServer.Port,
		Mode:           cfg.HTTPServer.Mode,
		Environment:    cfg.Environment.Name,
		WebhookHandler: webhookHandler,
	})
	if err != nil {
		logger.Error(ctx, "Failed to initialize HTTP server: ", err)
		return
	}

	// 9. Run
	if err := httpServer.Run(); err != nil {
		logger.Error(ctx, "Failed to run server: ", err)
		return
	}

	logger.Info(ctx, "Server stopped gracefully")
}
