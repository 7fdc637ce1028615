// Package notify tells rendering clients that a new pocket model is being
// served. Events go out on a mangos PUB socket under the "pockets." topic;
// clients subscribe with a SUB socket and re-query the API on each event.
package notify

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dd0wney/cluso-pockets/pkg/logging"
	"github.com/dd0wney/cluso-pockets/pkg/metrics"
	"github.com/dd0wney/cluso-pockets/pkg/pocket"
	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/pub"
	"go.nanomsg.org/mangos/v3/protocol/sub"

	// Register all transports (inproc, ipc, tcp, ws)
	_ "go.nanomsg.org/mangos/v3/transport/all"
)

// Topic prefixes every published message.
const Topic = "pockets."

// EventModelLoaded is sent after every successful analysis swap.
const EventModelLoaded = "model.loaded"

// ErrClosed is returned by Publish after Close.
var ErrClosed = errors.New("notifier closed")

// Event is the JSON body following the topic prefix.
type Event struct {
	Event       string    `json:"event"`
	RunID       string    `json:"runId"`
	PocketCount int       `json:"pocketCount"`
	Entities    int       `json:"entities"`
	Time        time.Time `json:"time"`
}

// ModelLoaded builds the event announcing ix.
func ModelLoaded(ix *pocket.Index) Event {
	return Event{
		Event:       EventModelLoaded,
		RunID:       ix.RunID(),
		PocketCount: ix.PocketCount(),
		Entities:    ix.Stats().Entities,
		Time:        ix.CreatedAt().UTC(),
	}
}

// Notifier publishes events. Implementations must be safe for concurrent use.
type Notifier interface {
	Publish(ev Event) error
	Close() error
}

// Nop discards every event. It is used when no notify address is configured.
type Nop struct{}

func (Nop) Publish(Event) error { return nil }
func (Nop) Close() error        { return nil }

// PublisherConfig configures NewPublisher.
type PublisherConfig struct {
	Addr     string // Listen address, e.g. "tcp://*:40899" or "inproc://pockets"
	QueueLen int    // Per-subscriber buffer; zero keeps the mangos default
	Logger   logging.Logger
	Metrics  *metrics.Registry
}

// Publisher owns a bound PUB socket.
type Publisher struct {
	sock    mangos.Socket
	addr    string
	logger  logging.Logger
	metrics *metrics.Registry

	mu     sync.Mutex
	closed bool
}

// NewPublisher creates a PUB socket and binds it to cfg.Addr.
func NewPublisher(cfg PublisherConfig) (*Publisher, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	sock, err := pub.NewSocket()
	if err != nil {
		return nil, fmt.Errorf("failed to create PUB socket: %w", err)
	}
	if cfg.QueueLen > 0 {
		if err := sock.SetOption(mangos.OptionWriteQLen, cfg.QueueLen); err != nil {
			sock.Close()
			return nil, fmt.Errorf("failed to set PUB queue length: %w", err)
		}
	}
	if err := sock.Listen(cfg.Addr); err != nil {
		sock.Close()
		return nil, fmt.Errorf("failed to bind PUB socket: %w", err)
	}

	logger = logger.With(logging.Component("notify"))
	logger.Info("notification publisher bound", logging.String("addr", cfg.Addr))

	return &Publisher{sock: sock, addr: cfg.Addr, logger: logger, metrics: cfg.Metrics}, nil
}

// Addr returns the bound address.
func (p *Publisher) Addr() string {
	return p.addr
}

// Publish sends ev to every current subscriber. PUB sockets never block;
// subscribers that fall behind lose messages.
func (p *Publisher) Publish(ev Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}

	err := p.send(ev)
	status := "success"
	if err != nil {
		status = "error"
		p.logger.Warn("failed to publish event", logging.String("event", ev.Event), logging.Error(err))
	} else {
		p.logger.Debug("event published", logging.String("event", ev.Event), logging.RunID(ev.RunID))
	}
	if p.metrics != nil {
		p.metrics.RecordNotification(status)
	}
	return err
}

func (p *Publisher) send(ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	msg := append([]byte(Topic), body...)
	return p.sock.Send(msg)
}

// Close releases the socket. Further Publish calls return ErrClosed.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	return p.sock.Close()
}

// Subscriber receives events from a Publisher.
type Subscriber struct {
	sock mangos.Socket
}

// Subscribe dials addr and subscribes to Topic. A positive timeout bounds each Recv.
func Subscribe(addr string, timeout time.Duration) (*Subscriber, error) {
	sock, err := sub.NewSocket()
	if err != nil {
		return nil, fmt.Errorf("failed to create SUB socket: %w", err)
	}
	if err := sock.SetOption(mangos.OptionSubscribe, []byte(Topic)); err != nil {
		sock.Close()
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}
	if timeout > 0 {
		if err := sock.SetOption(mangos.OptionRecvDeadline, timeout); err != nil {
			sock.Close()
			return nil, fmt.Errorf("failed to set receive deadline: %w", err)
		}
	}
	if err := sock.Dial(addr); err != nil {
		sock.Close()
		return nil, fmt.Errorf("failed to dial %s: %w", addr, err)
	}
	return &Subscriber{sock: sock}, nil
}

// Recv blocks for the next event. It returns mangos.ErrRecvTimeout when the
// deadline passes.
func (s *Subscriber) Recv() (Event, error) {
	msg, err := s.sock.Recv()
	if err != nil {
		return Event{}, err
	}
	return DecodeMessage(msg)
}

// Close releases the socket.
func (s *Subscriber) Close() error {
	return s.sock.Close()
}

// DecodeMessage parses one topic-prefixed message.
func DecodeMessage(msg []byte) (Event, error) {
	if len(msg) < len(Topic) || string(msg[:len(Topic)]) != Topic {
		return Event{}, fmt.Errorf("message without %q topic", Topic)
	}
	var ev Event
	if err := json.Unmarshal(msg[len(Topic):], &ev); err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	return ev, nil
}
