package oauth

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

const (
	defaultScope        = "profile"
	defaultPollInterval = 1 * time.Second
	defaultTimeout      = 5 * time.Minute
)

// Client drives the implicit-grant popup handshake for a single relying
// party. The opener origin is derived from the redirect URI; messages from
// any other origin never settle a pending wait.
type Client struct {
	authEndpoint string
	clientId     string
	redirectUri  string
	scope        string
	origin       string
	store        Store
	pollInterval time.Duration
	timeout      time.Duration
}

type ClientArgs struct {
	AuthEndpoint string
	ClientId     string
	RedirectUri  string

	// Scope defaults to "profile".
	Scope string

	// Store defaults to an in-process MemStore.
	Store Store

	// PollInterval is how often the waiter checks for manual popup closure.
	// Defaults to one second.
	PollInterval time.Duration

	// Timeout is the absolute deadline for a handshake. Defaults to five
	// minutes.
	Timeout time.Duration
}

func NewClient(args ClientArgs) (*Client, error) {
	if args.ClientId == "" {
		return nil, fmt.Errorf("%w: no client id provided", ErrMissingConfig)
	}

	if args.RedirectUri == "" {
		return nil, fmt.Errorf("%w: no redirect uri provided", ErrMissingConfig)
	}

	if args.AuthEndpoint == "" {
		return nil, fmt.Errorf("%w: no authorization endpoint provided", ErrMissingConfig)
	}

	if _, err := url.Parse(args.AuthEndpoint); err != nil {
		return nil, fmt.Errorf("%w: bad authorization endpoint: %v", ErrMissingConfig, err)
	}

	origin, err := originOf(args.RedirectUri)
	if err != nil {
		return nil, fmt.Errorf("%w: bad redirect uri: %v", ErrMissingConfig, err)
	}

	if args.Scope == "" {
		args.Scope = defaultScope
	}

	if args.Store == nil {
		args.Store = NewMemStore()
	}

	if args.PollInterval <= 0 {
		args.PollInterval = defaultPollInterval
	}

	if args.Timeout <= 0 {
		args.Timeout = defaultTimeout
	}

	return &Client{
		authEndpoint: args.AuthEndpoint,
		clientId:     args.ClientId,
		redirectUri:  args.RedirectUri,
		scope:        args.Scope,
		origin:       origin,
		store:        args.Store,
		pollInterval: args.PollInterval,
		timeout:      args.Timeout,
	}, nil
}

// Origin is the opener origin derived from the redirect URI.
func (c *Client) Origin() string {
	return c.origin
}

// Store exposes the backing state/result store, for callback contexts that
// share it.
func (c *Client) Store() Store {
	return c.store
}

// AuthURL generates a fresh state token, stores it for later verification,
// and returns the fully qualified authorization URL. The state write is the
// only side effect; a new call overwrites the prior state, invalidating any
// handshake still in flight under the old value.
func (c *Client) AuthURL() (string, error) {
	state, err := generateToken(16)
	if err != nil {
		return "", fmt.Errorf("could not generate state token: %w", err)
	}

	if err := c.store.SetState(state); err != nil {
		return "", fmt.Errorf("could not store state: %w", err)
	}

	u, err := url.Parse(c.authEndpoint)
	if err != nil {
		return "", fmt.Errorf("could not parse authorization endpoint: %w", err)
	}

	params := url.Values{
		"client_id":     {c.clientId},
		"redirect_uri":  {c.redirectUri},
		"response_type": {"token"},
		"scope":         {c.scope},
		"state":         {state},
	}

	u.RawQuery = params.Encode()

	return u.String(), nil
}

// Authorize runs the whole handshake: build the authorization URL, open the
// popup, and wait for the outcome. A blocked popup fails before any bus
// subscription is registered.
func (c *Client) Authorize(ctx context.Context, opener Opener, bus *Bus) (*OAuthResult, error) {
	authUrl, err := c.AuthURL()
	if err != nil {
		return nil, err
	}

	popup, err := opener.Open(authUrl, DefaultGeometry)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPopupBlocked, err)
	}

	if popup == nil {
		return nil, ErrPopupBlocked
	}

	return c.Await(ctx, popup, bus)
}
