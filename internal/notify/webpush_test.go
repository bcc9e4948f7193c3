package notify

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/marketplace-service/internal/config"
	"github.com/spec-kit/marketplace-service/internal/domain"
)

func testSubscription(t *testing.T, endpoint string) domain.Subscription {
	t.Helper()
	key, err := ecdh.P256().GenerateKey(rand.Reader)
	require.NoError(t, err)
	secret := make([]byte, 16)
	_, err = rand.Read(secret)
	require.NoError(t, err)
	return domain.Subscription{
		Endpoint: endpoint,
		P256dh:   base64.RawURLEncoding.EncodeToString(key.PublicKey().Bytes()),
		Auth:     base64.RawURLEncoding.EncodeToString(secret),
	}
}

func testPusher(t *testing.T) WebPusher {
	t.Helper()
	private, public, err := webpush.GenerateVAPIDKeys()
	require.NoError(t, err)
	pusher := NewWebPusher(config.WebPushConfig{
		Subscriber: "mailto:ops@example.com",
		PublicKey:  public,
		PrivateKey: private,
	})
	require.NotNil(t, pusher)
	return pusher
}

func TestWebPusherClassifiesGone(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusGone} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		result := testPusher(t).Send(context.Background(), testSubscription(t, server.URL), WebPushMessage{Title: "t"})
		server.Close()

		assert.True(t, result.Gone, "status %d marks the endpoint dead", status)
	}
}

func TestWebPusherSucceedsOnCreated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotZero(t, r.ContentLength, "payload must be encrypted and sent")
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	result := testPusher(t).Send(context.Background(), testSubscription(t, server.URL), WebPushMessage{
		Title: "New Token Requested",
		Body:  "details",
		URL:   "/dashboard/tokens",
	})
	assert.False(t, result.Gone)
	assert.NoError(t, result.Err)
}

func TestWebPusherReportsServerErrorsWithoutGone(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	result := testPusher(t).Send(context.Background(), testSubscription(t, server.URL), WebPushMessage{Title: "t"})
	assert.False(t, result.Gone, "transient failures must not prune the subscription")
	assert.Error(t, result.Err)
}

func TestNewWebPusherWithoutKeysIsNil(t *testing.T) {
	assert.Nil(t, NewWebPusher(config.WebPushConfig{}))
}
