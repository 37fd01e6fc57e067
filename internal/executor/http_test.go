package executor

import (
	"context"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/mickyco94/pullstream/bridge"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHttpSendsElement(t *testing.T) {
	received := make(chan bridge.Element, 1)

	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		assert.Equal(t, nethttp.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var el bridge.Element
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&el))
		received <- el
	}))
	defer server.Close()

	http := NewHttp(logrus.New())
	http.URL = server.URL

	require.NoError(t, http.Execute(context.Background(), bridge.Element{Kind: "open", Args: []any{"top", 2}}))

	el := <-received
	assert.Equal(t, bridge.Kind("open"), el.Kind)
	// numbers decode as float64
	assert.Equal(t, []any{"top", float64(2)}, el.Args)
}

func TestHttpConfiguredBody(t *testing.T) {
	received := make(chan string, 1)

	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "bar", r.Header.Get("X-Foo"))
		received <- string(body)
	}))
	defer server.Close()

	http := NewHttp(logrus.New())
	http.URL = server.URL
	http.Method = nethttp.MethodPut
	http.Body = `{"hello":"world"}`
	http.Headers = map[string]string{"X-Foo": "bar"}

	require.NoError(t, http.Execute(context.Background(), bridge.Element{Kind: "tick"}))
	assert.Equal(t, `{"hello":"world"}`, <-received)
}

func TestHttpUnexpectedStatus(t *testing.T) {
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.WriteHeader(nethttp.StatusInternalServerError)
	}))
	defer server.Close()

	http := NewHttp(logrus.New())
	http.URL = server.URL

	err := http.Execute(context.Background(), bridge.Element{Kind: "tick"})
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
}

func TestHttpLogResponse(t *testing.T) {
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	logger, hook := test.NewNullLogger()
	http := NewHttp(logger)
	http.URL = server.URL
	http.LogResponse = true

	require.NoError(t, http.Execute(context.Background(), bridge.Element{Kind: "tick"}))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "HTTP Response", entry.Message)
	assert.Equal(t, map[string]any{"ok": true}, entry.Data["body"])
}
