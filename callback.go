package oauth

import (
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
)

// Callback handles the provider redirect inside the popup, or inside the
// terminal destination window when no opener exists.
type Callback struct {
	// Origin is this window's own origin. Posts to the opener are targeted
	// at it exactly.
	Origin string

	// Opener is the bus back to the window that launched the popup. Nil when
	// this window is the terminal destination.
	Opener *Bus

	// Store holds the pending state written at URL-build time, and receives
	// the serialized result on the no-opener path.
	Store Store

	// Events receives the result broadcast on the no-opener path. Optional.
	Events *Notifier
}

// Handle parses the implicit-grant fragment at loc and relays the outcome.
// It never returns an error: failures are posted to the opener (or logged
// when there is none), and on every branch the visible URL is rewritten
// fragment-free with path and query preserved.
func (cb *Callback) Handle(loc Location) {
	defer stripFragment(loc)

	res, err := cb.parse(loc)
	if err != nil {
		cb.postError(err)
		return
	}

	if cb.Opener != nil {
		cb.Opener.Post(cb.Origin, Message{
			Type:   MessageTypeSuccess,
			Origin: cb.Origin,
			Token:  res,
		})
		return
	}

	if err := cb.Store.SetResult(res); err != nil {
		slog.Warn("could not persist oauth result", "err", err)
	}

	if cb.Events != nil {
		cb.Events.Notify(res)
	}
}

func (cb *Callback) parse(loc Location) (*OAuthResult, error) {
	frag := loc.Current().Fragment

	if frag == "" || !strings.Contains(frag, "access_token") {
		return nil, fmt.Errorf("%w: no access token in fragment", ErrMissingParams)
	}

	params, err := url.ParseQuery(frag)
	if err != nil {
		return nil, fmt.Errorf("could not parse fragment: %w", err)
	}

	accessToken := params.Get("access_token")
	state := params.Get("state")

	if accessToken == "" || state == "" {
		return nil, fmt.Errorf("%w: access_token or state missing", ErrMissingParams)
	}

	stored, err := cb.Store.State()
	if err != nil {
		return nil, fmt.Errorf("could not read stored state: %w", err)
	}

	if state != stored {
		return nil, fmt.Errorf("%w: callback state does not match stored state", ErrStateMismatch)
	}

	tokenType := params.Get("token_type")
	if tokenType == "" {
		tokenType = DefaultTokenType
	}

	expiresIn := DefaultExpiresIn
	if v := params.Get("expires_in"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			expiresIn = n
		}
	}

	return &OAuthResult{
		AccessToken: accessToken,
		TokenType:   tokenType,
		ExpiresIn:   expiresIn,
		State:       state,
	}, nil
}

func (cb *Callback) postError(err error) {
	if cb.Opener == nil {
		slog.Warn("oauth callback failed", "err", err)
		return
	}

	cb.Opener.Post(cb.Origin, Message{
		Type:   MessageTypeError,
		Origin: cb.Origin,
		Error:  err.Error(),
	})
}

// stripFragment rewrites the visible URL without its fragment so no token
// material survives in the address bar or history.
func stripFragment(loc Location) {
	u := loc.Current()
	if u.Fragment == "" && u.RawFragment == "" {
		return
	}

	cp := *u
	cp.Fragment = ""
	cp.RawFragment = ""
	loc.Replace(&cp)
}
