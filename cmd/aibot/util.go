package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/bluesky-social/aibot/bot"
	"github.com/bluesky-social/aibot/detector"
	"github.com/bluesky-social/aibot/session"
	"github.com/bluesky-social/aibot/social"

	"github.com/bluesky-social/indigo/atproto/syntax"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func configLogger(cctx *cli.Context, writer io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cctx.String("log-level")) {
	case "error":
		level = slog.LevelError
	case "warn":
		level = slog.LevelWarn
	case "info":
		level = slog.LevelInfo
	case "debug":
		level = slog.LevelDebug
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}

// configNetwork wires up a lazily authenticated Bluesky client from CLI flags.
func configNetwork(cctx *cli.Context) (*social.XRPCNetwork, error) {
	if err := requireFlags(cctx, "username", "password"); err != nil {
		return nil, err
	}
	prov := session.NewProvider(session.Options{
		Host:       cctx.String("host"),
		Identifier: cctx.String("username"),
		Password:   cctx.String("password"),
	})
	return social.NewXRPCNetwork(prov), nil
}

func configClassifier(ctx context.Context, cctx *cli.Context) (detector.Classifier, error) {
	transport := otelhttp.NewTransport(cleanhttp.DefaultPooledTransport())
	switch cctx.String("detector") {
	case "http":
		if err := requireFlags(cctx, "detector-url"); err != nil {
			return nil, err
		}
		return detector.NewHTTPClassifier(detector.HTTPConfig{
			Endpoint:  cctx.String("detector-url"),
			APIKey:    cctx.String("detector-api-key"),
			Transport: transport,
		})
	case "gemini":
		return detector.NewGeminiClassifier(ctx, detector.GeminiConfig{
			APIKey:    cctx.String("gemini-api-key"),
			Model:     cctx.String("gemini-model"),
			Transport: transport,
		})
	default:
		return nil, fmt.Errorf("unknown detector backend: %s", cctx.String("detector"))
	}
}

func configBot(cctx *cli.Context, logger *slog.Logger) (*bot.Bot, error) {
	if err := requireFlags(cctx, "handle"); err != nil {
		return nil, err
	}
	handle, err := syntax.ParseHandle(cctx.String("handle"))
	if err != nil {
		return nil, fmt.Errorf("invalid bot handle: %w", err)
	}
	net, err := configNetwork(cctx)
	if err != nil {
		return nil, err
	}
	cls, err := configClassifier(cctx.Context, cctx)
	if err != nil {
		return nil, err
	}
	return bot.NewBot(net, cls, bot.Config{
		Handle:         handle.Normalize().String(),
		MaxConcurrency: cctx.Int("max-concurrency"),
		Logger:         logger,
	})
}
