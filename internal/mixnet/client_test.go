package mixnet

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const (
	zeroKey  = "11111111111111111111111111111111"
	oneKey   = "11111111111111111111111111111112"
	selfAddr = zeroKey + "." + zeroKey + "@" + oneKey
)

// fakeNymClient serves the subset of the nym-client websocket API used here.
// Every "send" is recorded and answered with a "received" frame built by reply.
type fakeNymClient struct {
	t     *testing.T
	reply func(request) []response

	mu   sync.Mutex
	sent []request
}

func (f *fakeNymClient) handler(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.t.Errorf("upgrade: %v", err)
		return
	}
	defer conn.Close()

	for {
		var req request
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		var out []response
		switch req.Type {
		case typeSelfAddress:
			out = []response{{Type: typeSelfAddress, Address: selfAddr}}
		case typeSend:
			f.mu.Lock()
			f.sent = append(f.sent, req)
			f.mu.Unlock()
			if f.reply != nil {
				out = f.reply(req)
			}
		}
		for _, resp := range out {
			if err := conn.WriteJSON(resp); err != nil {
				return
			}
		}
	}
}

func (f *fakeNymClient) requests() []request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]request(nil), f.sent...)
}

func startFake(t *testing.T, reply func(request) []response) (*fakeNymClient, string) {
	t.Helper()
	fake := &fakeNymClient{t: t, reply: reply}
	srv := httptest.NewServer(http.HandlerFunc(fake.handler))
	t.Cleanup(srv.Close)
	return fake, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := Dial(ctx, url, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestDialLearnsSelfAddress(t *testing.T) {
	_, url := startFake(t, nil)
	c := dial(t, url)
	assert.Equal(t, selfAddr, c.LocalAddress())
}

func TestDialFailsWithoutServer(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := Dial(ctx, "ws://127.0.0.1:1", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dial nym-client")
}

func TestSendAndReceive(t *testing.T) {
	fake, url := startFake(t, func(req request) []response {
		return []response{{Type: typeReceived, Message: "OK\n# Hello"}}
	})
	c := dial(t, url)

	to, err := ParseRecipient(selfAddr)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.Send(ctx, to, "GET / FROM "+selfAddr))

	text, err := c.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "OK\n# Hello", text)

	sent := fake.requests()
	require.Len(t, sent, 1)
	assert.Equal(t, selfAddr, sent[0].Recipient)
	assert.Equal(t, "GET / FROM "+selfAddr, sent[0].Message)
}

func TestReceiveReportsClientErrorsAsText(t *testing.T) {
	_, url := startFake(t, func(req request) []response {
		return []response{
			{Type: "laneQueueLength"},
			{Type: typeError, Message: "gateway unreachable"},
		}
	})
	c := dial(t, url)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	to, _ := ParseRecipient(selfAddr)
	require.NoError(t, c.Send(ctx, to, "GET / FROM x"))

	text, err := c.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ERROR: gateway unreachable", text)
}

func TestReceiveStopsOnCancel(t *testing.T) {
	_, url := startFake(t, nil)
	c := dial(t, url)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.Receive(ctx)
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Receive did not return after cancel")
	}
}

func TestRequestEncoding(t *testing.T) {
	data, err := json.Marshal(request{Type: typeSelfAddress})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"selfAddress"}`, string(data))
}
