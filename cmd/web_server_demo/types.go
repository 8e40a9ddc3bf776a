package main

import "time"

type OauthSession struct {
	ID          uint
	SessionID   string `gorm:"uniqueIndex"`
	AccessToken string
	TokenType   string
	ExpiresIn   int
	State       string
	CreatedAt   time.Time
}
