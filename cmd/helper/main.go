package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"

	"github.com/carlmjohnson/versioninfo"
	"github.com/joho/godotenv"
	oauth "github.com/noorbagus/implicit-oauth-golang"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:    "Implicit Oauth Golang Helper",
		Version: versioninfo.Short(),
		Commands: []*cli.Command{
			runAuthUrl,
			runParseFragment,
		},
	}

	app.RunAndExitOnError()
}

var runAuthUrl = &cli.Command{
	Name:  "auth-url",
	Usage: "print a fresh authorization URL for the configured client",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "client-id",
			EnvVars: []string{"OAUTH_CLIENT_ID"},
		},
		&cli.StringFlag{
			Name:    "redirect-uri",
			EnvVars: []string{"OAUTH_REDIRECT_URI"},
		},
		&cli.StringFlag{
			Name:    "endpoint",
			EnvVars: []string{"OAUTH_AUTH_ENDPOINT"},
		},
		&cli.StringFlag{
			Name:    "scope",
			EnvVars: []string{"OAUTH_SCOPE"},
		},
	},
	Action: func(cmd *cli.Context) error {
		godotenv.Load()

		client, err := oauth.NewClient(oauth.ClientArgs{
			ClientId:     cmd.String("client-id"),
			RedirectUri:  cmd.String("redirect-uri"),
			AuthEndpoint: cmd.String("endpoint"),
			Scope:        cmd.String("scope"),
		})
		if err != nil {
			return err
		}

		authUrl, err := client.AuthURL()
		if err != nil {
			return err
		}

		u, err := url.Parse(authUrl)
		if err != nil {
			return err
		}

		fmt.Println(authUrl)
		fmt.Fprintf(os.Stderr, "state: %s\n", u.Query().Get("state"))

		return nil
	},
}

var runParseFragment = &cli.Command{
	Name:  "parse-fragment",
	Usage: "parse a callback fragment against an expected state and print the result",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "fragment",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "state",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "origin",
			Value: "http://localhost:7070",
		},
	},
	Action: func(cmd *cli.Context) error {
		store := oauth.NewMemStore()
		if err := store.SetState(cmd.String("state")); err != nil {
			return err
		}

		cb := &oauth.Callback{
			Origin: cmd.String("origin"),
			Store:  store,
		}

		u, err := url.Parse(cmd.String("origin") + "/callback")
		if err != nil {
			return err
		}
		u.Fragment = cmd.String("fragment")

		cb.Handle(oauth.NewPageLocation(u))

		res, err := store.Result()
		if err != nil {
			return err
		}

		if res == nil {
			return fmt.Errorf("fragment did not parse to a valid result")
		}

		b, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return err
		}

		fmt.Println(string(b))

		return nil
	},
}
