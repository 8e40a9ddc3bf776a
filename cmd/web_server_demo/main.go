package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/carlmjohnson/versioninfo"
	"github.com/gorilla/sessions"
	"github.com/joho/godotenv"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	oauth "github.com/noorbagus/implicit-oauth-golang"
	"github.com/noorbagus/implicit-oauth-golang/helpers"
	slogecho "github.com/samber/slog-echo"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type TestServer struct {
	db          *gorm.DB
	oauthClient *oauth.Client
	jwksUrl     string
}

func main() {
	app := &cli.App{
		Name:    "implicit-oauth-golang-tester",
		Version: versioninfo.Short(),
		Action:  run,
	}

	app.RunAndExitOnError()
}

func run(cmd *cli.Context) error {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using process environment")
	}

	oauthClient, err := oauth.NewClient(oauth.ClientArgs{
		ClientId:     os.Getenv("OAUTH_CLIENT_ID"),
		RedirectUri:  os.Getenv("OAUTH_REDIRECT_URI"),
		AuthEndpoint: os.Getenv("OAUTH_AUTH_ENDPOINT"),
		Scope:        os.Getenv("OAUTH_SCOPE"),
	})
	if err != nil {
		return err
	}

	db, err := gorm.Open(sqlite.Open("oauth-tester.db"), &gorm.Config{})
	if err != nil {
		return err
	}

	if err := db.AutoMigrate(&OauthSession{}); err != nil {
		return err
	}

	s := &TestServer{
		db:          db,
		oauthClient: oauthClient,
		jwksUrl:     os.Getenv("OAUTH_JWKS_URL"),
	}

	cookieSecret := os.Getenv("COOKIE_SECRET")
	if cookieSecret == "" {
		// fine for a demo server, sessions just don't survive restarts
		cookieSecret, err = helpers.GenerateToken(32)
		if err != nil {
			return err
		}
	}

	e := echo.New()

	e.Use(slogecho.New(slog.Default()))
	e.Use(session.Middleware(sessions.NewCookieStore([]byte(cookieSecret))))

	fmt.Println("implicit oauth golang tester server")

	e.GET("/login", s.handleLogin)
	e.GET("/callback", s.handleCallback)
	e.POST("/callback/complete", s.handleCallbackComplete)
	e.GET("/profile", s.handleProfile)
	e.GET("/logout", s.handleLogout)

	httpd := http.Server{
		Addr:    ":7070",
		Handler: e,
	}

	fmt.Println("starting http server...")

	if err := httpd.ListenAndServe(); err != nil {
		return err
	}

	return nil
}
