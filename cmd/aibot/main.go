// aibot replies to Bluesky mentions with an estimate of whether the thread's root image is
// AI-generated.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/carlmjohnson/versioninfo"
	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := run(os.Args); err != nil {
		slog.Error("exiting", "err", err)
		os.Exit(-1)
	}
}

func run(args []string) error {

	app := cli.App{
		Name:    "aibot",
		Usage:   "bluesky bot which checks whether images are AI generated",
		Version: versioninfo.Short(),
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "host",
			Usage:   "method, hostname, and port of the PDS or entryway to log in to",
			Value:   "https://bsky.social",
			EnvVars: []string{"BLUESKY_HOST", "ATP_PDS_HOST"},
		},
		&cli.StringFlag{
			Name:    "username",
			Usage:   "account identifier (handle, DID, or email) for login",
			EnvVars: []string{"BLUESKY_USERNAME"},
		},
		&cli.StringFlag{
			Name:    "password",
			Usage:   "account password or app password",
			EnvVars: []string{"BLUESKY_PASSWORD"},
		},
		&cli.StringFlag{
			Name:    "handle",
			Usage:   "the bot's own handle, used to detect threads it already replied to",
			EnvVars: []string{"BLUESKY_HANDLE"},
		},
		&cli.StringFlag{
			Name:    "detector",
			Usage:   "which AI-detection backend to use: 'http' or 'gemini'",
			Value:   "http",
			EnvVars: []string{"AIBOT_DETECTOR"},
		},
		&cli.StringFlag{
			Name:    "detector-url",
			Usage:   "full URL of the HTTP AI-detection endpoint",
			EnvVars: []string{"AIBOT_DETECTOR_URL"},
		},
		&cli.StringFlag{
			Name:    "detector-api-key",
			Usage:   "bearer token for the HTTP AI-detection endpoint",
			EnvVars: []string{"AIBOT_DETECTOR_API_KEY"},
		},
		&cli.StringFlag{
			Name:    "gemini-api-key",
			Usage:   "API key for the gemini detector",
			EnvVars: []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"},
		},
		&cli.StringFlag{
			Name:    "gemini-model",
			Usage:   "model name for the gemini detector",
			Value:   "gemini-2.5-flash",
			EnvVars: []string{"AIBOT_GEMINI_MODEL"},
		},
		&cli.IntFlag{
			Name:    "max-concurrency",
			Usage:   "maximum mentions handled at once (0 for no limit)",
			EnvVars: []string{"AIBOT_MAX_CONCURRENCY"},
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "log verbosity level (eg: warn, info, debug)",
			Value:   "info",
			EnvVars: []string{"AIBOT_LOG_LEVEL", "LOG_LEVEL"},
		},
	}

	app.Commands = []*cli.Command{
		cmdRun,
		cmdOnce,
		cmdClassify,
	}

	return app.Run(args)
}

func requireFlags(cctx *cli.Context, names ...string) error {
	for _, n := range names {
		if cctx.String(n) == "" {
			return fmt.Errorf("missing required configuration: --%s", n)
		}
	}
	return nil
}
