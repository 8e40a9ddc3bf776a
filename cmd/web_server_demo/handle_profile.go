package main

import (
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	oauth "github.com/noorbagus/implicit-oauth-golang"
)

func (s *TestServer) handleProfile(e echo.Context) error {
	sess, err := session.Get("session", e)
	if err != nil {
		return err
	}

	sid, ok := sess.Values["sid"].(string)
	if !ok {
		return e.Redirect(302, "/login")
	}

	var oauthSession OauthSession
	if err := s.db.Raw("SELECT * FROM oauth_sessions WHERE session_id = ?", sid).Scan(&oauthSession).Error; err != nil {
		return err
	}

	if oauthSession.SessionID == "" {
		return e.Redirect(302, "/login")
	}

	out := map[string]any{
		"token_type": oauthSession.TokenType,
		"expires_in": oauthSession.ExpiresIn,
	}

	// best effort: many providers mint JWT access tokens
	if claims, err := oauth.PeekClaims(oauthSession.AccessToken); err == nil {
		out["claims"] = claims
	}

	if s.jwksUrl != "" {
		claims, err := oauth.VerifyAccessToken(e.Request().Context(), oauthSession.AccessToken, s.jwksUrl, nil)
		if err != nil {
			return err
		}

		out["verified_claims"] = claims
	}

	return e.JSON(200, out)
}
