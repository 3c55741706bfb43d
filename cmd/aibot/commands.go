package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bluesky-social/aibot/bot"
	"github.com/bluesky-social/aibot/detector"
	"github.com/bluesky-social/aibot/social"

	"github.com/bluesky-social/indigo/atproto/syntax"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
)

var cmdRun = &cli.Command{
	Name:  "run",
	Usage: "poll for mentions and reply to them, until interrupted",
	Flags: []cli.Flag{
		&cli.DurationFlag{
			Name:    "poll-period",
			Usage:   "time between notification polls",
			Value:   60 * time.Second,
			EnvVars: []string{"AIBOT_POLL_PERIOD"},
		},
		&cli.StringFlag{
			Name:    "metrics-listen",
			Usage:   "IP or address, and port, to listen on for metrics APIs",
			Value:   ":3989",
			EnvVars: []string{"AIBOT_METRICS_LISTEN"},
		},
	},
	Action: runBot,
}

var cmdOnce = &cli.Command{
	Name:   "once",
	Usage:  "make a single pass over recent mentions, then exit",
	Action: runOnce,
}

var cmdClassify = &cli.Command{
	Name:      "classify",
	Usage:     "classify the first image of a post and print the reply text, without posting",
	ArgsUsage: "<at-uri>",
	Action:    runClassify,
}

func runBot(cctx *cli.Context) error {
	logger := configLogger(cctx, os.Stdout)

	ctx, stop := signal.NotifyContext(cctx.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := setupTracing(ctx, logger)
	if err != nil {
		return err
	}
	defer shutdownTracing()

	b, err := configBot(cctx, logger)
	if err != nil {
		return err
	}

	go func() {
		if err := runMetrics(cctx.String("metrics-listen")); err != nil {
			logger.Error("failed to start metrics endpoint", "err", err)
		}
	}()

	return b.Run(ctx, cctx.Duration("poll-period"))
}

func runMetrics(listen string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(listen, mux)
}

func runOnce(cctx *cli.Context) error {
	logger := configLogger(cctx, os.Stderr)
	b, err := configBot(cctx, logger)
	if err != nil {
		return err
	}
	outcomes, err := b.RunOnce(cctx.Context)
	printOutcomes(outcomes)
	return err
}

func printOutcomes(outcomes []bot.Outcome) {
	for _, o := range outcomes {
		switch {
		case o.Err != nil:
			fmt.Printf("%s\t%s\t%s\n", o.Mention, o.Kind, o.Err)
		case o.Reply.URI != "":
			fmt.Printf("%s\t%s\t%s\t%q\n", o.Mention, o.Kind, o.Reply.URI, o.Text)
		default:
			fmt.Printf("%s\t%s\n", o.Mention, o.Kind)
		}
	}
}

func runClassify(cctx *cli.Context) error {
	ctx := context.Background()
	configLogger(cctx, os.Stderr)

	if cctx.Args().Len() != 1 {
		return fmt.Errorf("expected a single post AT-URI argument")
	}
	aturi, err := syntax.ParseATURI(cctx.Args().First())
	if err != nil {
		return err
	}

	net, err := configNetwork(cctx)
	if err != nil {
		return err
	}
	cls, err := configClassifier(ctx, cctx)
	if err != nil {
		return err
	}

	post, err := social.GetPost(ctx, net, aturi.String())
	if err != nil {
		return err
	}
	res, err := detector.ClassifyPost(ctx, cls, post)
	if err != nil {
		fmt.Println(bot.ComposeApology(err))
		return nil
	}
	slog.Debug("classified post", "uri", post.URI, "ai", res.AI)
	fmt.Println(bot.ComposeVerdict(res))
	return nil
}
