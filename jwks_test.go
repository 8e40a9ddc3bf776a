package oauth

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeekClaims(t *testing.T) {
	assert := assert.New(t)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	signed, err := token.SignedString([]byte("not-checked"))
	require.NoError(t, err)

	claims, err := PeekClaims(signed)
	assert.NoError(err)
	assert.Equal("user-1", claims["sub"])

	_, err = PeekClaims("not-a-jwt")
	assert.Error(err)
}

func TestVerifyAccessToken(t *testing.T) {
	assert := assert.New(t)

	privKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	key, err := jwk.FromRaw(privKey)
	require.NoError(t, err)
	require.NoError(t, key.Set(jwk.KeyIDKey, "test-key"))

	pub, err := key.PublicKey()
	require.NoError(t, err)

	set := jwk.NewSet()
	require.NoError(t, set.AddKey(pub))

	jwksBody, err := json.Marshal(set)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(jwksBody)
	}))
	defer srv.Close()

	token := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	token.Header["kid"] = "test-key"

	signed, err := token.SignedString(privKey)
	require.NoError(t, err)

	claims, err := VerifyAccessToken(context.Background(), signed, srv.URL, srv.Client())
	assert.NoError(err)
	assert.Equal("user-1", claims["sub"])

	// a token signed by a different key fails verification
	otherKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	forged := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	forged.Header["kid"] = "test-key"

	forgedSigned, err := forged.SignedString(otherKey)
	require.NoError(t, err)

	_, err = VerifyAccessToken(context.Background(), forgedSigned, srv.URL, srv.Client())
	assert.Error(err)
}
