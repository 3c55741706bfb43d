package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionServer(t *testing.T, logins *atomic.Int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/xrpc/com.atproto.server.createSession" {
			http.Error(w, "Not Found", http.StatusNotFound)
			return
		}
		logins.Add(1)
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}
		if body["identifier"] != "bot.example.com" || body["password"] != "hunter2" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{
				"error":   "AuthenticationRequired",
				"message": "Invalid identifier or password",
			})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"did":        "did:plc:botaccount",
			"handle":     "bot.example.com",
			"accessJwt":  "access1",
			"refreshJwt": "refresh1",
		})
	}))
}

func TestProviderLogsInOnce(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	var logins atomic.Int32
	srv := sessionServer(t, &logins)
	defer srv.Close()

	p := NewProvider(Options{
		Host:       srv.URL,
		Identifier: "bot.example.com",
		Password:   "hunter2",
		HTTPClient: srv.Client(),
	})

	ctx := context.Background()
	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.Client(ctx)
			assert.NoError(err)
		}()
	}
	wg.Wait()

	c, err := p.Client(ctx)
	require.NoError(err)
	assert.Equal(int32(1), logins.Load())
	assert.Equal("did:plc:botaccount", c.Auth.Did)
	assert.Equal("access1", c.Auth.AccessJwt)
	assert.Equal("bot.example.com", c.Auth.Handle)
}

func TestProviderMissingCredentials(t *testing.T) {
	assert := assert.New(t)

	p := NewProvider(Options{Identifier: "bot.example.com"})
	_, err := p.Client(context.Background())
	assert.ErrorIs(err, ErrMissingCredentials)

	p = NewProvider(Options{Password: "hunter2"})
	_, err = p.Client(context.Background())
	assert.ErrorIs(err, ErrMissingCredentials)
}

func TestProviderFailedLoginNotMemoized(t *testing.T) {
	assert := assert.New(t)

	var logins atomic.Int32
	srv := sessionServer(t, &logins)
	defer srv.Close()

	p := NewProvider(Options{
		Host:       srv.URL,
		Identifier: "bot.example.com",
		Password:   "wrong",
		HTTPClient: srv.Client(),
	})

	_, err := p.Client(context.Background())
	assert.Error(err)
	_, err = p.Client(context.Background())
	assert.Error(err)
	assert.Equal(int32(2), logins.Load())
}

func TestProviderDefaultHost(t *testing.T) {
	p := NewProvider(Options{})
	assert.Equal(t, DefaultHost, p.opts.Host)
	assert.NotNil(t, p.opts.HTTPClient)
}
