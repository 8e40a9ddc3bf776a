package main

import (
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	oauth "github.com/noorbagus/implicit-oauth-golang"
	"gorm.io/gorm/clause"
)

func (s *TestServer) handleLogin(e echo.Context) error {
	authUrl, err := s.oauthClient.AuthURL()
	if err != nil {
		return err
	}

	u, err := url.Parse(authUrl)
	if err != nil {
		return err
	}

	sess, err := session.Get("session", e)
	if err != nil {
		return err
	}

	sess.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   300, // save for five minutes
		HttpOnly: true,
	}

	// make sure the session is empty
	sess.Values = map[interface{}]interface{}{}
	sess.Values["oauth_state"] = u.Query().Get("state")

	if err := sess.Save(e.Request(), e.Response()); err != nil {
		return err
	}

	return e.Redirect(302, authUrl)
}

// The provider redirects here with the token in the fragment, which never
// reaches the server. This page forwards location.hash so the server-side
// parser can take over, then scrubs the visible URL.
const callbackRelayPage = `<!DOCTYPE html>
<html>
<body>
<p>Completing sign-in...</p>
<script>
fetch("/callback/complete", {
	method: "POST",
	headers: {"Content-Type": "application/x-www-form-urlencoded"},
	body: "fragment=" + encodeURIComponent(window.location.hash.slice(1)),
}).then(function (resp) {
	history.replaceState(null, "", window.location.pathname + window.location.search);
	window.location = resp.ok ? "/profile" : "/login";
});
</script>
</body>
</html>`

func (s *TestServer) handleCallback(e echo.Context) error {
	return e.HTML(200, callbackRelayPage)
}

func (s *TestServer) handleCallbackComplete(e echo.Context) error {
	fragment := e.FormValue("fragment")

	sess, err := session.Get("session", e)
	if err != nil {
		return err
	}

	sessState, _ := sess.Values["oauth_state"].(string)
	if sessState == "" {
		return fmt.Errorf("no authorization request pending for this session")
	}

	u, err := url.Parse(s.oauthClient.Origin() + "/callback")
	if err != nil {
		return err
	}
	u.Fragment = fragment

	// no opener server-side, so a successful parse lands in the store
	cb := &oauth.Callback{
		Origin: s.oauthClient.Origin(),
		Store:  s.oauthClient.Store(),
	}
	cb.Handle(oauth.NewPageLocation(u))

	res, err := s.oauthClient.Store().Result()
	if err != nil {
		return err
	}

	if res == nil || res.State != sessState {
		return fmt.Errorf("authorization did not complete for this session")
	}

	sid := uuid.NewString()

	oauthSession := &OauthSession{
		SessionID:   sid,
		AccessToken: res.AccessToken,
		TokenType:   res.TokenType,
		ExpiresIn:   res.ExpiresIn,
		State:       res.State,
	}

	if err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		UpdateAll: true,
	}).Create(oauthSession).Error; err != nil {
		return err
	}

	sess.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
	}

	// make sure the session is empty
	sess.Values = map[interface{}]interface{}{}
	sess.Values["sid"] = sid

	if err := sess.Save(e.Request(), e.Response()); err != nil {
		return err
	}

	return e.NoContent(204)
}

func (s *TestServer) handleLogout(e echo.Context) error {
	sess, err := session.Get("session", e)
	if err != nil {
		return err
	}

	sess.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	}

	if err := sess.Save(e.Request(), e.Response()); err != nil {
		return err
	}

	return e.Redirect(302, "/login")
}
