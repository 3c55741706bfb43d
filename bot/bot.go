// Package bot answers Bluesky mentions with an AI-generated-image verdict for the thread's root
// post.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bluesky-social/aibot/detector"
	"github.com/bluesky-social/aibot/social"

	"golang.org/x/sync/errgroup"
)

type OutcomeKind string

const (
	OutcomeReplied               OutcomeKind = "replied"
	OutcomeSkippedAlreadyReplied OutcomeKind = "skipped-already-replied"
	OutcomeSkippedNotReply       OutcomeKind = "skipped-not-reply"
	OutcomeFailed                OutcomeKind = "failed"
)

// Outcome is the result of handling a single mention.
type Outcome struct {
	Mention string
	Kind    OutcomeKind
	// Text is the reply text, when one was composed.
	Text string
	// Reply points at the published reply post, when one was published.
	Reply social.StrongRef
	Err   error
}

type Config struct {
	// Handle is the bot account's own handle, used to recognize its earlier replies.
	Handle string
	// MaxConcurrency caps the per-mention fan-out. Zero means one goroutine per mention, which is
	// bounded by social.NotificationLimit.
	MaxConcurrency int
	Logger         *slog.Logger
}

type Bot struct {
	net    social.Network
	cls    detector.Classifier
	handle string
	limit  int
	logger *slog.Logger
}

func NewBot(net social.Network, cls detector.Classifier, config Config) (*Bot, error) {
	if config.Handle == "" {
		return nil, fmt.Errorf("bot handle must be configured")
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		net:    net,
		cls:    cls,
		handle: config.Handle,
		limit:  config.MaxConcurrency,
		logger: logger.With("component", "bot"),
	}, nil
}

// RunOnce makes a single pass over the latest notifications, replying to each new mention. All
// mentions are processed concurrently and independently. The returned error joins the errors of
// every failed mention; one failure never stops the others.
func (b *Bot) RunOnce(ctx context.Context) ([]Outcome, error) {
	start := time.Now()
	defer func() {
		runDuration.Observe(time.Since(start).Seconds())
	}()

	// fetch without a reason filter, then select mentions locally
	notifs, err := social.GetNotifications(ctx, b.net)
	if err != nil {
		return nil, fmt.Errorf("fetching notifications: %w", err)
	}
	notificationsFetched.Add(float64(len(notifs)))

	var mentions []social.Notification
	for _, n := range notifs {
		if n.Reason == social.ReasonMention {
			mentions = append(mentions, n)
		}
	}
	b.logger.Info("fetched notifications", "total", len(notifs), "mentions", len(mentions))
	if len(mentions) == 0 {
		return nil, nil
	}

	outcomes := make([]Outcome, len(mentions))
	var g errgroup.Group
	if b.limit > 0 {
		g.SetLimit(b.limit)
	}
	for i, m := range mentions {
		g.Go(func() error {
			outcomes[i] = b.handleMention(ctx, m)
			return nil
		})
	}
	g.Wait()

	var errs []error
	for _, o := range outcomes {
		mentionsProcessed.WithLabelValues(string(o.Kind)).Inc()
		if o.Err != nil {
			errs = append(errs, fmt.Errorf("mention %s: %w", o.Mention, o.Err))
		}
	}
	return outcomes, errors.Join(errs...)
}

// Run calls RunOnce every period until ctx is cancelled. Errors from a pass are logged and do not
// stop the loop.
func (b *Bot) Run(ctx context.Context, period time.Duration) error {
	b.logger.Info("mention polling bot starting up...", "period", period, "handle", b.handle)
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		if _, err := b.RunOnce(ctx); err != nil {
			b.logger.Error("polling pass failed", "err", err)
		}
		b.logger.Debug("... sleeping", "period", period)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (b *Bot) handleMention(ctx context.Context, n social.Notification) Outcome {
	logger := b.logger.With("mention", n.URI, "author", n.AuthorHandle)
	out := Outcome{Mention: n.URI}

	replied, err := social.AlreadyReplied(ctx, b.net, n.URI, b.handle)
	if err != nil {
		// without a working guard a reply could be a duplicate, so nothing is posted
		logger.Error("checking for earlier reply", "err", err)
		out.Kind = OutcomeFailed
		out.Err = fmt.Errorf("checking for earlier reply: %w", err)
		return out
	}
	if replied {
		logger.Debug("already replied to mention")
		out.Kind = OutcomeSkippedAlreadyReplied
		return out
	}

	m, err := social.DecodeMention(n)
	if err != nil {
		logger.Warn("undecodable mention", "err", err)
		out.Kind = OutcomeFailed
		out.Err = err
		return out
	}
	rm, ok := m.(social.ReplyMention)
	if !ok {
		logger.Debug("mention is not a reply, nothing to classify")
		out.Kind = OutcomeSkippedNotReply
		return out
	}
	logger = logger.With("root", rm.Root.URI)

	root := rm.Root
	out.Text = b.verdictText(ctx, logger, rm, &root)

	logger.Info("responding to comment")
	ref, err := social.RespondToComment(ctx, b.net, out.Text, root, n.Ref())
	if err != nil {
		logger.Error("failed to post reply", "err", err)
		out.Kind = OutcomeFailed
		out.Err = fmt.Errorf("posting reply: %w", err)
		return out
	}
	repliesPosted.Inc()
	logger.Info("responded to comment", "reply", ref.URI)
	out.Kind = OutcomeReplied
	out.Reply = ref
	return out
}

// verdictText fetches and classifies the thread root, producing either a verdict or an apology.
// root starts as the mention record's own reference and is replaced by the fetched post's.
func (b *Bot) verdictText(ctx context.Context, logger *slog.Logger, rm social.ReplyMention, root *social.StrongRef) string {
	post, err := social.GetPost(ctx, b.net, rm.Root.URI)
	if err != nil {
		logger.Warn("failed to fetch thread root", "err", err)
		return ComposeApology(err)
	}
	*root = post.Ref()

	logger.Debug("classifying post")
	res, err := detector.ClassifyPost(ctx, b.cls, post)
	if err != nil {
		logger.Warn("classification failed", "err", err)
		return ComposeApology(err)
	}
	aiScore.Observe(res.AI)
	logger.Info("classified post", "ai", res.AI)
	return ComposeVerdict(res)
}
