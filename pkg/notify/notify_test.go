package notify

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dd0wney/cluso-pockets/pkg/metrics"
	"github.com/dd0wney/cluso-pockets/pkg/pocket"
	dto "github.com/prometheus/client_model/go"
	"go.nanomsg.org/mangos/v3"
)

var addrSeq atomic.Int64

func inprocAddr(t *testing.T) string {
	return fmt.Sprintf("inproc://notify-%s-%d", t.Name(), addrSeq.Add(1))
}

// receiveEvent publishes until the subscriber sees a message; a SUB socket
// only receives once its connection is established.
func receiveEvent(t *testing.T, p *Publisher, s *Subscriber, ev Event) Event {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if err := p.Publish(ev); err != nil {
			t.Fatalf("Publish() error = %v", err)
		}
		got, err := s.Recv()
		if err == nil {
			return got
		}
		if !errors.Is(err, mangos.ErrRecvTimeout) {
			t.Fatalf("Recv() error = %v", err)
		}
	}
	t.Fatal("No event received before deadline")
	return Event{}
}

func TestPublishSubscribe(t *testing.T) {
	addr := inprocAddr(t)
	reg := metrics.NewRegistry()

	p, err := NewPublisher(PublisherConfig{Addr: addr, QueueLen: 4, Metrics: reg})
	if err != nil {
		t.Fatalf("NewPublisher() error = %v", err)
	}
	defer p.Close()

	s, err := Subscribe(addr, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	defer s.Close()

	ix := pocket.NewIndex([][]string{{"a", "b"}, {"c"}}, 5, 1)
	got := receiveEvent(t, p, s, ModelLoaded(ix))

	if got.Event != EventModelLoaded || got.RunID != ix.RunID() || got.PocketCount != 2 || got.Entities != 5 {
		t.Errorf("Unexpected event %+v", got)
	}

	var m dto.Metric
	if err := reg.NotificationsTotal.WithLabelValues("success").Write(&m); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if m.GetCounter().GetValue() < 1 {
		t.Error("Expected successful notifications to be counted")
	}
}

func TestPublishAfterClose(t *testing.T) {
	p, err := NewPublisher(PublisherConfig{Addr: inprocAddr(t)})
	if err != nil {
		t.Fatalf("NewPublisher() error = %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("Second Close() error = %v", err)
	}
	if err := p.Publish(Event{Event: EventModelLoaded}); !errors.Is(err, ErrClosed) {
		t.Errorf("Publish() after close error = %v, want ErrClosed", err)
	}
}

func TestNewPublisherBadAddress(t *testing.T) {
	if _, err := NewPublisher(PublisherConfig{Addr: "bogus://nowhere"}); err == nil {
		t.Fatal("Expected error for unsupported transport")
	}
}

func TestDecodeMessage(t *testing.T) {
	ev, err := DecodeMessage([]byte(`pockets.{"event":"model.loaded","runId":"r1","pocketCount":3}`))
	if err != nil {
		t.Fatalf("DecodeMessage() error = %v", err)
	}
	if ev.RunID != "r1" || ev.PocketCount != 3 {
		t.Errorf("Unexpected event %+v", ev)
	}

	for _, bad := range []string{"", "WAL:{}", "pockets.{not json"} {
		if _, err := DecodeMessage([]byte(bad)); err == nil {
			t.Errorf("DecodeMessage(%q) expected error", bad)
		}
	}
}

func TestNop(t *testing.T) {
	var n Notifier = Nop{}
	if err := n.Publish(Event{}); err != nil {
		t.Errorf("Nop.Publish() error = %v", err)
	}
	if err := n.Close(); err != nil {
		t.Errorf("Nop.Close() error = %v", err)
	}
}
