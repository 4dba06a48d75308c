package mixnet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// DefaultURL is where nym-client listens unless configured otherwise.
const DefaultURL = "ws://127.0.0.1:1977"

// ErrorPrefix starts every payload that reports a failure instead of content.
const ErrorPrefix = "ERROR: "

// Client is a connected nym-client session. Send and Receive may be called
// from different goroutines; each side is serialised on its own.
type Client struct {
	conn    *websocket.Conn
	address string
	log     *zap.Logger

	readMu  sync.Mutex
	writeMu sync.Mutex
}

// Dial connects to the nym-client websocket at url and asks for the local
// mixnet address. The context bounds the whole handshake.
func Dial(ctx context.Context, url string, log *zap.Logger) (*Client, error) {
	if log == nil {
		log = zap.NewNop()
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial nym-client %s: %w", url, err)
	}

	c := &Client{conn: conn, log: log}
	addr, err := c.selfAddress(ctx)
	if err != nil {
		conn.Close()
		return nil, err
	}
	c.address = addr
	log.Info("mixnet client ready", zap.String("url", url), zap.String("address", addr))
	return c, nil
}

// LocalAddress returns this client's own mixnet address.
func (c *Client) LocalAddress() string { return c.address }

// Send delivers text to the recipient as a plain message.
func (c *Client) Send(ctx context.Context, to Recipient, text string) error {
	err := c.write(ctx, request{Type: typeSend, Recipient: to.String(), Message: text})
	if err != nil {
		return fmt.Errorf("send to %s: %w", to.Gateway, err)
	}
	return nil
}

// Receive blocks until the next message arrives and returns it as text.
// Errors reported by nym-client are returned as text starting with
// ErrorPrefix; only transport failures are returned as errors.
func (c *Client) Receive(ctx context.Context) (string, error) {
	for {
		resp, err := c.read(ctx)
		if err != nil {
			return "", err
		}
		switch resp.Type {
		case typeReceived:
			return resp.Message, nil
		case typeError:
			return ErrorPrefix + resp.Message, nil
		default:
			c.log.Debug("ignoring nym-client frame", zap.String("type", resp.Type))
		}
	}
}

// Close shuts the websocket down.
func (c *Client) Close() error {
	c.writeMu.Lock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.writeMu.Unlock()
	return c.conn.Close()
}

func (c *Client) selfAddress(ctx context.Context) (string, error) {
	if err := c.write(ctx, request{Type: typeSelfAddress}); err != nil {
		return "", fmt.Errorf("request self address: %w", err)
	}
	for {
		resp, err := c.read(ctx)
		if err != nil {
			return "", fmt.Errorf("read self address: %w", err)
		}
		switch resp.Type {
		case typeSelfAddress:
			if resp.Address == "" {
				return "", errors.New("nym-client returned an empty self address")
			}
			return resp.Address, nil
		case typeError:
			return "", fmt.Errorf("nym-client: %s", resp.Message)
		}
	}
}

func (c *Client) write(ctx context.Context, req request) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	deadline, _ := ctx.Deadline()
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return c.conn.WriteJSON(req)
}

func (c *Client) read(ctx context.Context) (response, error) {
	c.readMu.Lock()
	defer c.readMu.Unlock()

	deadline, _ := ctx.Deadline()
	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return response{}, err
	}
	// Unblock ReadMessage when the context ends.
	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return response{}, ctxErr
			}
			return response{}, err
		}
		var resp response
		if err := json.Unmarshal(data, &resp); err != nil {
			c.log.Warn("skipping malformed nym-client frame", zap.Error(err))
			continue
		}
		return resp, nil
	}
}
