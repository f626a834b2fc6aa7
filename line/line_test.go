package line

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"events":[]}`)
	sig := Sign("secret", body)

	assert.True(t, VerifySignature("secret", body, sig))
	assert.False(t, VerifySignature("other", body, sig))
	assert.False(t, VerifySignature("secret", []byte(`{"events":[{}]}`), sig))
	assert.False(t, VerifySignature("secret", body, ""))
	assert.False(t, VerifySignature("", body, sig))
	assert.False(t, VerifySignature("secret", body, "not base64!"))
}

func TestParseWebhook(t *testing.T) {
	body := []byte(`{"destination":"Uoa","events":[
		{"type":"follow","timestamp":1756717200000,"replyToken":"r1","source":{"type":"user","userId":"U1"}},
		{"type":"message","timestamp":1756717200000,"source":{"type":"user","userId":"U2"}},
		{"type":"follow","timestamp":1756717200000,"source":{"type":"group","userId":"U3"}},
		{"type":"unfollow","timestamp":1756717200000,"source":{"type":"user","userId":"U4"}},
		{"type":"follow","timestamp":1756717200000,"source":{"type":"user"}}
	]}`)

	payload, err := ParseWebhook(body)
	require.NoError(t, err)
	assert.Len(t, payload.Events, 5)

	events := payload.UserEvents()
	require.Len(t, events, 2)
	assert.Equal(t, "U1", events[0].Source.UserID)
	assert.Equal(t, "r1", events[0].ReplyToken)
	assert.Equal(t, EventUnfollow, events[1].Type)
	assert.Equal(t, int64(1756717200000), events[0].Time().UnixMilli())

	_, err = ParseWebhook([]byte(`{`))
	assert.Error(t, err)
}

func TestGetProfile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/v2/bot/profile/U1":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"userId":"U1","displayName":"花木 英雄"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "token")
	profile, err := client.GetProfile(context.Background(), "U1")
	require.NoError(t, err)
	assert.Equal(t, "花木 英雄", profile.DisplayName)

	_, err = client.GetProfile(context.Background(), "U404")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")

	_, err = NewClient(srv.URL, "wrong").GetProfile(context.Background(), "U1")
	assert.Error(t, err)
}
