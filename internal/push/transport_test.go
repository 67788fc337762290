package push

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"summit-push-go/internal/models"
)

func browserSubscription(t *testing.T, endpoint string) models.Subscription {
	t.Helper()
	key, err := ecdh.P256().GenerateKey(rand.Reader)
	require.NoError(t, err)
	auth := make([]byte, 16)
	_, err = rand.Read(auth)
	require.NoError(t, err)
	return models.Subscription{
		Endpoint: endpoint,
		Keys: models.Keys{
			P256dh: base64.RawURLEncoding.EncodeToString(key.PublicKey().Bytes()),
			Auth:   base64.RawURLEncoding.EncodeToString(auth),
		},
	}
}

func newTestTransport(t *testing.T) *WebPushTransport {
	t.Helper()
	priv, pub, err := webpush.GenerateVAPIDKeys()
	require.NoError(t, err)
	return NewWebPushTransport(WebPushConfig{
		Subscriber:      "https://github.com/devonfw-ng-adv-training",
		VAPIDPublicKey:  pub,
		VAPIDPrivateKey: priv,
		TTL:             30,
	})
}

func TestWebPushTransport_Delivers(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "aes128gcm", r.Header.Get("Content-Encoding"))
		assert.Equal(t, "30", r.Header.Get("TTL"))
		assert.True(t, strings.HasPrefix(r.Header.Get("Authorization"), "vapid "))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	tr := newTestTransport(t)
	err := tr.Deliver(context.Background(), browserSubscription(t, srv.URL+"/push/abc"), []byte(`{"notification":{}}`))
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestWebPushTransport_GoneEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
	}))
	defer srv.Close()

	err := newTestTransport(t).Deliver(context.Background(), browserSubscription(t, srv.URL), []byte("{}"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGone)
}

func TestWebPushTransport_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad vapid", http.StatusForbidden)
	}))
	defer srv.Close()

	err := newTestTransport(t).Deliver(context.Background(), browserSubscription(t, srv.URL), []byte("{}"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRejected)
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "bad vapid")
}

func TestWebPushTransport_BadKeys(t *testing.T) {
	err := newTestTransport(t).Deliver(context.Background(), models.Subscription{Endpoint: "http://127.0.0.1:1"}, []byte("{}"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrGone)
}
