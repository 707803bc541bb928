package natsbus

import (
	"context"
	"sync"

	"github.com/nats-io/nats.go"

	ports "shellos-packages/internal/core/ports/output"
)

// Bus delivers catalog change notifications over NATS. Notifications carry
// no payload; subscribers reload the full catalog on each delivery.
type Bus struct {
	conn    *nats.Conn
	subject string
}

func New(url, subject string, opts ...nats.Option) (*Bus, error) {
	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, err
	}
	return &Bus{conn: conn, subject: subject}, nil
}

// Close drains and shuts down the underlying connection.
func (b *Bus) Close() {
	if b == nil {
		return
	}
	if err := b.conn.Drain(); err != nil {
		b.conn.Close()
	}
}

func (b *Bus) NotifyChanged(ctx context.Context) error {
	if err := b.conn.Publish(b.subject, nil); err != nil {
		return err
	}
	return b.conn.FlushWithContext(ctx)
}

type subscription struct {
	sub    *nats.Subscription
	mu     sync.Mutex
	closed bool
}

func (s *subscription) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.sub.Drain()
}

// SubscribeChanges opens one push subscription on the catalog subject.
// onError fires at most once, when the connection is lost for good; the bus
// never retries on the subscriber's behalf.
func (b *Bus) SubscribeChanges(ctx context.Context, onChange func(), onError func(error)) (ports.Subscription, error) {
	sub, err := b.conn.Subscribe(b.subject, func(*nats.Msg) {
		onChange()
	})
	if err != nil {
		return nil, err
	}

	var once sync.Once
	b.conn.SetClosedHandler(func(conn *nats.Conn) {
		if err := conn.LastError(); err != nil {
			once.Do(func() { onError(err) })
		}
	})

	s := &subscription{sub: sub}

	go func() {
		<-ctx.Done()
		_ = s.Close()
	}()

	return s, nil
}
