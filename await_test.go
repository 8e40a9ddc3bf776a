package oauth

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePopup struct {
	mu     sync.Mutex
	closed bool
}

func (p *fakePopup) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *fakePopup) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}

type fakeOpener struct {
	popup    *fakePopup
	blocked  bool
	openErr  error
	lastUrl  string
	lastGeom Geometry
}

func (o *fakeOpener) Open(url string, g Geometry) (Popup, error) {
	o.lastUrl = url
	o.lastGeom = g

	if o.openErr != nil {
		return nil, o.openErr
	}

	if o.blocked {
		return nil, nil
	}

	return o.popup, nil
}

func newWaiterFixture(t *testing.T) (*Client, *fakePopup, *Bus) {
	t.Helper()

	client := newTestClient(t, ClientArgs{
		PollInterval: 5 * time.Millisecond,
		Timeout:      250 * time.Millisecond,
	})

	return client, &fakePopup{}, NewBus()
}

// awaitResult starts Await in the background and hands back the settled
// outcome. It blocks until the waiter has subscribed so tests can post
// messages without racing registration.
func awaitResult(t *testing.T, client *Client, popup *fakePopup, bus *Bus) chan awaitOutcome {
	t.Helper()

	out := make(chan awaitOutcome, 1)

	go func() {
		res, err := client.Await(context.Background(), popup, bus)
		out <- awaitOutcome{res: res, err: err}
	}()

	require.Eventually(t, func() bool { return bus.Subscribers() == 1 }, time.Second, time.Millisecond)

	return out
}

type awaitOutcome struct {
	res *OAuthResult
	err error
}

func TestAwaitSuccessMessage(t *testing.T) {
	assert := assert.New(t)

	client, popup, bus := newWaiterFixture(t)
	out := awaitResult(t, client, popup, bus)

	token := &OAuthResult{AccessToken: "tok1", TokenType: "bearer", ExpiresIn: 1800, State: "abc123"}
	bus.Post(client.Origin(), Message{Type: MessageTypeSuccess, Origin: client.Origin(), Token: token})

	o := <-out
	assert.NoError(o.err)
	assert.Equal(token, o.res)
	assert.True(popup.Closed())
	assert.Equal(0, bus.Subscribers())
}

func TestAwaitProviderError(t *testing.T) {
	assert := assert.New(t)

	client, popup, bus := newWaiterFixture(t)
	out := awaitResult(t, client, popup, bus)

	bus.Post(client.Origin(), Message{Type: MessageTypeError, Origin: client.Origin(), Error: "access_denied"})

	o := <-out
	assert.ErrorIs(o.err, ErrProvider)
	assert.Contains(o.err.Error(), "access_denied")
	assert.Nil(o.res)
	assert.True(popup.Closed())
	assert.Equal(0, bus.Subscribers())
}

func TestAwaitIgnoresForeignOriginMessages(t *testing.T) {
	assert := assert.New(t)

	client, popup, bus := newWaiterFixture(t)
	out := awaitResult(t, client, popup, bus)

	// delivered to our subscription, but claiming a foreign sender origin
	bus.Post(client.Origin(), Message{
		Type:   MessageTypeSuccess,
		Origin: "https://evil.example.net",
		Token:  &OAuthResult{AccessToken: "forged"},
	})

	select {
	case <-out:
		t.Fatal("foreign-origin message settled the waiter")
	case <-time.After(20 * time.Millisecond):
	}

	token := &OAuthResult{AccessToken: "tok1", State: "abc123"}
	bus.Post(client.Origin(), Message{Type: MessageTypeSuccess, Origin: client.Origin(), Token: token})

	o := <-out
	assert.NoError(o.err)
	assert.Equal("tok1", o.res.AccessToken)
}

func TestAwaitManualClosure(t *testing.T) {
	assert := assert.New(t)

	client, popup, bus := newWaiterFixture(t)
	out := awaitResult(t, client, popup, bus)

	popup.Close()

	o := <-out
	assert.ErrorIs(o.err, ErrCancelled)
	assert.Equal(0, bus.Subscribers())

	// a late message after settlement has no one to reach
	bus.Post(client.Origin(), Message{Type: MessageTypeSuccess, Origin: client.Origin()})
	assert.Equal(0, bus.Subscribers())
}

func TestAwaitTimeoutForcesClose(t *testing.T) {
	assert := assert.New(t)

	client, popup, bus := newWaiterFixture(t)
	out := awaitResult(t, client, popup, bus)

	o := <-out
	assert.ErrorIs(o.err, ErrTimeout)
	assert.True(popup.Closed())
	assert.Equal(0, bus.Subscribers())
}

func TestAwaitContextCancellation(t *testing.T) {
	assert := assert.New(t)

	client, popup, bus := newWaiterFixture(t)

	ctx, cancel := context.WithCancel(context.Background())

	out := make(chan awaitOutcome, 1)
	go func() {
		res, err := client.Await(ctx, popup, bus)
		out <- awaitOutcome{res: res, err: err}
	}()

	require.Eventually(t, func() bool { return bus.Subscribers() == 1 }, time.Second, time.Millisecond)
	cancel()

	o := <-out
	assert.ErrorIs(o.err, ErrCancelled)
	assert.Equal(0, bus.Subscribers())
}

func TestAuthorizeBlockedPopup(t *testing.T) {
	assert := assert.New(t)

	client := newTestClient(t, ClientArgs{})
	bus := NewBus()

	_, err := client.Authorize(context.Background(), &fakeOpener{blocked: true}, bus)
	assert.ErrorIs(err, ErrPopupBlocked)
	assert.Equal(0, bus.Subscribers())

	_, err = client.Authorize(context.Background(), &fakeOpener{openErr: fmt.Errorf("window refused")}, bus)
	assert.ErrorIs(err, ErrPopupBlocked)
	assert.Equal(0, bus.Subscribers())
}

func TestAuthorizeSuccess(t *testing.T) {
	assert := assert.New(t)

	store := NewMemStore()
	client := newTestClient(t, ClientArgs{
		Store:        store,
		PollInterval: 5 * time.Millisecond,
		Timeout:      250 * time.Millisecond,
	})

	popup := &fakePopup{}
	opener := &fakeOpener{popup: popup}
	bus := NewBus()

	out := make(chan awaitOutcome, 1)
	go func() {
		res, err := client.Authorize(context.Background(), opener, bus)
		out <- awaitOutcome{res: res, err: err}
	}()

	require.Eventually(t, func() bool { return bus.Subscribers() == 1 }, time.Second, time.Millisecond)

	// the popup-side callback answers with the state the builder stored
	state, err := store.State()
	assert.NoError(err)
	assert.Equal(mustQueryParam(t, opener.lastUrl, "state"), state)
	assert.Equal(DefaultGeometry, opener.lastGeom)

	token := &OAuthResult{AccessToken: "tok1", TokenType: "bearer", ExpiresIn: 3600, State: state}
	bus.Post(client.Origin(), Message{Type: MessageTypeSuccess, Origin: client.Origin(), Token: token})

	o := <-out
	assert.NoError(o.err)
	assert.Equal(state, o.res.State)
	assert.True(popup.Closed())
}
