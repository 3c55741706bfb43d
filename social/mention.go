package social

import (
	"fmt"

	"github.com/bluesky-social/indigo/atproto/syntax"
)

// Mention is the decoded form of a mention notification: either a ReplyMention or a
// TopLevelMention.
type Mention interface {
	Source() Notification
	isMention()
}

// ReplyMention is a mention posted inside an existing thread, with a validated thread root.
type ReplyMention struct {
	Notification Notification
	Root         StrongRef
}

// TopLevelMention is a mention which does not reply to anything, so there is no root post to
// inspect.
type TopLevelMention struct {
	Notification Notification
}

func (m ReplyMention) Source() Notification    { return m.Notification }
func (m TopLevelMention) Source() Notification { return m.Notification }
func (ReplyMention) isMention()                {}
func (TopLevelMention) isMention()             {}

// DecodeMention sorts a notification into a reply or top-level mention. A root reference which
// is present but not a valid AT-URI is an error rather than a top-level mention.
func DecodeMention(n Notification) (Mention, error) {
	if n.Reply == nil || n.Reply.Root.URI == "" {
		return TopLevelMention{Notification: n}, nil
	}
	if _, err := syntax.ParseATURI(n.Reply.Root.URI); err != nil {
		return nil, fmt.Errorf("%w: reply root %q: %w", ErrInvalidMention, n.Reply.Root.URI, err)
	}
	return ReplyMention{
		Notification: n,
		Root:         n.Reply.Root,
	}, nil
}
