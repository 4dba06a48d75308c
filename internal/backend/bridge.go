package backend

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/olivoil/nymview/internal/mixnet"
)

// sendTimeout bounds a single write to the mixnet client.
const sendTimeout = 10 * time.Second

// Session is a connected mixnet client (see mixnet.Client).
type Session interface {
	LocalAddress() string
	Send(ctx context.Context, to mixnet.Recipient, text string) error
	Receive(ctx context.Context) (string, error)
	Close() error
}

// Bridge moves page requests onto a mixnet session and turns whatever the
// session receives into ContentReceived events. Requests and responses are
// not correlated.
type Bridge struct {
	session  Session
	requests *Queue[NavigationRequest]
	emit     func(SessionEvent)
	log      *zap.Logger
}

// NewBridge creates a bridge over a connected session. emit must not block.
func NewBridge(session Session, requests *Queue[NavigationRequest], emit func(SessionEvent), log *zap.Logger) *Bridge {
	return &Bridge{
		session:  session,
		requests: requests,
		emit:     emit,
		log:      log,
	}
}

// Run serves the session until ctx is cancelled. A failed receive side is
// logged and the bridge keeps dispatching; those sends then fail and are
// reported as content.
func (b *Bridge) Run(ctx context.Context) error {
	inbound := make(chan string)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		b.receiveLoop(ctx, inbound)
		return nil
	})
	g.Go(func() error {
		return b.dispatchLoop(ctx, inbound)
	})
	return g.Wait()
}

func (b *Bridge) receiveLoop(ctx context.Context, out chan<- string) {
	for {
		text, err := b.session.Receive(ctx)
		if err != nil {
			if ctx.Err() == nil {
				b.log.Error("mixnet receive failed, no further responses", zap.Error(err))
			}
			return
		}
		select {
		case out <- text:
		case <-ctx.Done():
			return
		}
	}
}

// dispatchLoop races inbound messages against queued requests and handles
// whichever is ready first.
func (b *Bridge) dispatchLoop(ctx context.Context, inbound <-chan string) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case text := <-inbound:
			b.log.Debug("message received", zap.Int("bytes", len(text)))
			b.emit(ContentReceived{Raw: text})
		case <-b.requests.Ready():
			if n := b.requests.Len(); n > 1 {
				b.log.Debug("requests backed up", zap.Int("queued", n))
			}
			for _, req := range b.requests.Drain() {
				b.dispatch(ctx, req)
			}
		}
	}
}

func (b *Bridge) dispatch(ctx context.Context, req NavigationRequest) {
	log := b.log.With(zap.Uint64("seq", req.Seq), zap.String("recipient", req.Recipient))

	to, err := mixnet.ParseRecipient(req.Recipient)
	if err != nil {
		log.Warn("invalid recipient address", zap.Error(err))
		b.emit(ContentReceived{Raw: fmt.Sprintf("%sInvalid address - %v", mixnet.ErrorPrefix, err)})
		return
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	if err := b.session.Send(ctx, to, req.Line); err != nil {
		log.Error("sending request failed", zap.Error(err))
		b.emit(ContentReceived{Raw: mixnet.ErrorPrefix + err.Error()})
		return
	}
	log.Debug("request sent", zap.String("line", req.Line))
}
