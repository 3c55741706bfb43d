package social

import (
	"context"
	"fmt"

	comatproto "github.com/bluesky-social/indigo/api/atproto"
	appbsky "github.com/bluesky-social/indigo/api/bsky"
	"github.com/bluesky-social/indigo/atproto/syntax"
	lexutil "github.com/bluesky-social/indigo/lex/util"
	"github.com/bluesky-social/indigo/xrpc"
)

// ClientSource yields an authenticated XRPC client. *session.Provider satisfies it.
type ClientSource interface {
	Client(ctx context.Context) (*xrpc.Client, error)
}

// XRPCNetwork implements Network against a PDS using the generated indigo lexicon clients.
type XRPCNetwork struct {
	src ClientSource
}

func NewXRPCNetwork(src ClientSource) *XRPCNetwork {
	return &XRPCNetwork{src: src}
}

func (x *XRPCNetwork) GetPostThread(ctx context.Context, uri string, depth int64) (*Thread, error) {
	c, err := x.src.Client(ctx)
	if err != nil {
		return nil, err
	}
	// parentHeight of zero; only the post and its replies are used
	out, err := appbsky.FeedGetPostThread(ctx, c, depth, 0, uri)
	if err != nil {
		return nil, fmt.Errorf("fetching thread %s: %w", uri, err)
	}
	if out.Thread == nil {
		return nil, fmt.Errorf("%w: empty thread for %s", ErrUnexpectedShape, uri)
	}
	switch {
	case out.Thread.FeedDefs_ThreadViewPost != nil:
		return threadFromView(out.Thread.FeedDefs_ThreadViewPost)
	case out.Thread.FeedDefs_NotFoundPost != nil:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, uri)
	case out.Thread.FeedDefs_BlockedPost != nil:
		return nil, fmt.Errorf("%w: %s", ErrBlocked, uri)
	default:
		return nil, fmt.Errorf("%w: unknown thread type for %s", ErrUnexpectedShape, uri)
	}
}

func (x *XRPCNetwork) ListNotifications(ctx context.Context, limit int64, reasons []string) ([]Notification, error) {
	c, err := x.src.Client(ctx)
	if err != nil {
		return nil, err
	}
	out, err := appbsky.NotificationListNotifications(ctx, c, "", limit, false, reasons, "")
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	notifs := make([]Notification, 0, len(out.Notifications))
	for _, n := range out.Notifications {
		if n == nil {
			continue
		}
		notifs = append(notifs, notificationFromView(n))
	}
	return notifs, nil
}

func (x *XRPCNetwork) CreatePost(ctx context.Context, text string, reply ReplyRef) (StrongRef, error) {
	c, err := x.src.Client(ctx)
	if err != nil {
		return StrongRef{}, err
	}
	if c.Auth == nil {
		return StrongRef{}, fmt.Errorf("xrpc client is not authenticated")
	}
	post := appbsky.FeedPost{
		Text:      text,
		CreatedAt: syntax.DatetimeNow().String(),
		Reply: &appbsky.FeedPost_ReplyRef{
			Parent: &comatproto.RepoStrongRef{Uri: reply.Parent.URI, Cid: reply.Parent.CID},
			Root:   &comatproto.RepoStrongRef{Uri: reply.Root.URI, Cid: reply.Root.CID},
		},
	}
	resp, err := comatproto.RepoCreateRecord(ctx, c, &comatproto.RepoCreateRecord_Input{
		Collection: "app.bsky.feed.post",
		Repo:       c.Auth.Did,
		Record:     &lexutil.LexiconTypeDecoder{Val: &post},
	})
	if err != nil {
		return StrongRef{}, fmt.Errorf("creating reply post: %w", err)
	}
	return StrongRef{URI: resp.Uri, CID: resp.Cid}, nil
}

func threadFromView(tvp *appbsky.FeedDefs_ThreadViewPost) (*Thread, error) {
	if tvp.Post == nil {
		return nil, fmt.Errorf("%w: thread view without post", ErrUnexpectedShape)
	}
	th := Thread{Post: postFromView(tvp.Post)}
	for _, r := range tvp.Replies {
		if r == nil || r.FeedDefs_ThreadViewPost == nil || r.FeedDefs_ThreadViewPost.Post == nil {
			continue
		}
		th.Replies = append(th.Replies, postFromView(r.FeedDefs_ThreadViewPost.Post))
	}
	return &th, nil
}

func postFromView(pv *appbsky.FeedDefs_PostView) Post {
	p := Post{
		URI: pv.Uri,
		CID: pv.Cid,
	}
	if pv.Author != nil {
		p.AuthorDID = pv.Author.Did
		p.AuthorHandle = pv.Author.Handle
	}
	if pv.Record != nil {
		if fp, ok := pv.Record.Val.(*appbsky.FeedPost); ok {
			p.Text = fp.Text
		}
	}
	if pv.Embed != nil {
		switch {
		case pv.Embed.EmbedImages_View != nil:
			p.Images = imagesFromView(pv.Embed.EmbedImages_View)
		case pv.Embed.EmbedRecordWithMedia_View != nil:
			media := pv.Embed.EmbedRecordWithMedia_View.Media
			if media != nil && media.EmbedImages_View != nil {
				p.Images = imagesFromView(media.EmbedImages_View)
			}
		}
	}
	return p
}

func imagesFromView(v *appbsky.EmbedImages_View) []Image {
	var out []Image
	for _, img := range v.Images {
		if img == nil {
			continue
		}
		out = append(out, Image{
			Thumb:    img.Thumb,
			Fullsize: img.Fullsize,
			Alt:      img.Alt,
		})
	}
	return out
}

func notificationFromView(n *appbsky.NotificationListNotifications_Notification) Notification {
	out := Notification{
		URI:       n.Uri,
		CID:       n.Cid,
		Reason:    n.Reason,
		IndexedAt: n.IndexedAt,
	}
	if n.Author != nil {
		out.AuthorHandle = n.Author.Handle
	}
	if n.Record == nil {
		return out
	}
	fp, ok := n.Record.Val.(*appbsky.FeedPost)
	if !ok || fp.Reply == nil || fp.Reply.Root == nil {
		return out
	}
	ref := ReplyRef{
		Root: StrongRef{URI: fp.Reply.Root.Uri, CID: fp.Reply.Root.Cid},
	}
	if fp.Reply.Parent != nil {
		ref.Parent = StrongRef{URI: fp.Reply.Parent.Uri, CID: fp.Reply.Parent.Cid}
	}
	out.Reply = &ref
	return out
}
