// Package session logs the bot account in to its PDS and hands out the authenticated client.
package session

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	comatproto "github.com/bluesky-social/indigo/api/atproto"
	"github.com/bluesky-social/indigo/xrpc"

	"github.com/carlmjohnson/versioninfo"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultHost is the entryway used when no service host is configured.
const DefaultHost = "https://bsky.social"

var ErrMissingCredentials = fmt.Errorf("bluesky identifier and password must both be configured")

// Options are the options for the session Provider
type Options struct {
	Host       string
	Identifier string
	Password   string
	// HTTPClient is optional; an instrumented pooled client is used when nil.
	HTTPClient *http.Client
}

// Provider performs a single password login and memoizes the resulting client. It is safe for
// concurrent use. A failed login is not remembered, so the next call tries again.
type Provider struct {
	opts Options

	mu     sync.Mutex
	client *xrpc.Client
}

func NewProvider(opts Options) *Provider {
	if opts.Host == "" {
		opts.Host = DefaultHost
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = NewHTTPClient()
	}
	return &Provider{opts: opts}
}

// NewHTTPClient returns a non-retrying pooled client with an OTEL instrumented transport.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Transport: otelhttp.NewTransport(cleanhttp.DefaultPooledTransport()),
		Timeout:   30 * time.Second,
	}
}

// Client returns the authenticated XRPC client, logging in on first use.
func (p *Provider) Client(ctx context.Context) (*xrpc.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.client != nil {
		return p.client, nil
	}
	if p.opts.Identifier == "" || p.opts.Password == "" {
		return nil, ErrMissingCredentials
	}

	ua := "aibot/" + versioninfo.Short()
	client := &xrpc.Client{
		Client:    p.opts.HTTPClient,
		Host:      p.opts.Host,
		UserAgent: &ua,
	}

	ses, err := comatproto.ServerCreateSession(ctx, client, &comatproto.ServerCreateSession_Input{
		Identifier: p.opts.Identifier,
		Password:   p.opts.Password,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create session")
	}

	client.Auth = &xrpc.AuthInfo{
		Handle:     ses.Handle,
		Did:        ses.Did,
		RefreshJwt: ses.RefreshJwt,
		AccessJwt:  ses.AccessJwt,
	}
	p.client = client
	return client, nil
}
