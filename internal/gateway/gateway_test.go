package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/send", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "key", user)
		assert.Equal(t, "secret", pass)

		var req sendRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "AXISDEMO", req.SourceAddr)
		assert.Equal(t, "", req.ScheduleTime)
		assert.Equal(t, 0, req.Encoding)
		assert.Equal(t, "hello", req.Message)
		require.Len(t, req.Recipients, 1)
		assert.Equal(t, "255700000001", req.Recipients[0].DestAddr)

		json.NewEncoder(w).Encode(sendResponse{
			Successful: true,
			RequestID:  123456789,
			Valid:      1,
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "/api/v1/send", "key", "secret", time.Second)
	res := c.Send(context.Background(), "AXISDEMO", "hello", []Recipient{
		{RecipientID: 1, DestAddr: "255700000001"},
	})

	assert.True(t, res.Successful)
	assert.Equal(t, "123456789", res.RequestID)
	assert.Equal(t, 1, res.Valid)
}

func TestSendProviderRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(sendResponse{
			Successful: false,
			Code:       105,
			Message:    "invalid source address",
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "/send", "key", "secret", time.Second)
	res := c.Send(context.Background(), "BAD", "hello", []Recipient{{RecipientID: 1, DestAddr: "255700000001"}})

	assert.False(t, res.Successful)
	assert.Equal(t, 105, res.Code)
	assert.Equal(t, "invalid source address", res.Message)
	assert.Empty(t, res.RequestID)
}

func TestSendNon2xxStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"successful":true,"request_id":1}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "/send", "key", "secret", time.Second)
	res := c.Send(context.Background(), "AXISDEMO", "hello", []Recipient{{RecipientID: 1, DestAddr: "255700000001"}})

	assert.False(t, res.Successful, "non-2xx is a failure even with a successful body")
	assert.Contains(t, res.Message, "502")
}

func TestSendUnparseableBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>gateway error</html>"))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "/send", "key", "secret", time.Second)
	res := c.Send(context.Background(), "AXISDEMO", "hello", []Recipient{{RecipientID: 1, DestAddr: "255700000001"}})

	assert.False(t, res.Successful)
	assert.Equal(t, "unparseable provider response", res.Message)
}

func TestSendTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "/send", "key", "secret", 20*time.Millisecond)
	res := c.Send(context.Background(), "AXISDEMO", "hello", []Recipient{{RecipientID: 1, DestAddr: "255700000001"}})

	assert.False(t, res.Successful)
	assert.Contains(t, res.Message, "gateway unreachable")
}

func TestSendUnreachableHost(t *testing.T) {
	c := NewHTTPClient("http://127.0.0.1:1", "/send", "key", "secret", 200*time.Millisecond)
	res := c.Send(context.Background(), "AXISDEMO", "hello", []Recipient{{RecipientID: 1, DestAddr: "255700000001"}})

	assert.False(t, res.Successful)
	assert.Contains(t, res.Message, "gateway unreachable")
}
