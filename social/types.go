package social

import (
	"context"
	"fmt"
)

// NotificationLimit is the fixed page size for notification fetches. Only the newest page is
// ever looked at.
const NotificationLimit = 10

const ReasonMention = "mention"

var (
	ErrNotFound        = fmt.Errorf("post not found")
	ErrBlocked         = fmt.Errorf("post is blocked")
	ErrInvalidMention  = fmt.Errorf("invalid mention record")
	ErrUnexpectedShape = fmt.Errorf("unexpected thread shape")
)

// Network is the subset of the Bluesky API the bot consumes.
type Network interface {
	GetPostThread(ctx context.Context, uri string, depth int64) (*Thread, error)
	ListNotifications(ctx context.Context, limit int64, reasons []string) ([]Notification, error)
	CreatePost(ctx context.Context, text string, reply ReplyRef) (StrongRef, error)
}

type StrongRef struct {
	URI string
	CID string
}

type ReplyRef struct {
	Root   StrongRef
	Parent StrongRef
}

type Image struct {
	Thumb    string
	Fullsize string
	Alt      string
}

type Post struct {
	URI          string
	CID          string
	AuthorDID    string
	AuthorHandle string
	Text         string
	Images       []Image
}

func (p *Post) Ref() StrongRef {
	return StrongRef{URI: p.URI, CID: p.CID}
}

// Thread is a post plus its direct replies. Replies that are not found or blocked are dropped.
type Thread struct {
	Post    Post
	Replies []Post
}

type Notification struct {
	URI          string
	CID          string
	Reason       string
	AuthorHandle string
	IndexedAt    string
	// Reply is set only when the notification record is a post which is itself a reply.
	Reply *ReplyRef
}

func (n *Notification) Ref() StrongRef {
	return StrongRef{URI: n.URI, CID: n.CID}
}
