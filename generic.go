package oauth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/url"
)

func generateToken(len int) (string, error) {
	b := make([]byte, len)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}

func originOf(ustr string) (string, error) {
	u, err := url.Parse(ustr)
	if err != nil {
		return "", err
	}

	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("uri %q is not absolute", ustr)
	}

	return u.Scheme + "://" + u.Host, nil
}
