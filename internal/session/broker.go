package session

import (
	"sync"

	"github.com/meltforce/fithome/internal/timer"
	"github.com/meltforce/fithome/internal/tracker"
)

// Event types published on a session's stream besides the timer's own.
const (
	EventBeep     = "beep"
	EventProgress = "progress"
	EventClosed   = "closed"
)

// Event is one message on a session's event stream.
type Event struct {
	Type      string         `json:"type"`
	Timer     *timer.State   `json:"timer,omitempty"`
	Tone      string         `json:"tone,omitempty"`
	URL       string         `json:"url,omitempty"`
	Stats     *tracker.Stats `json:"stats,omitempty"`
	Completed []string       `json:"completed,omitempty"`
}

const subscriberBuffer = 32

// Broker fans events out to subscribers. Publish never blocks: a subscriber
// whose buffer is full misses the event.
type Broker struct {
	mu     sync.Mutex
	subs   map[chan Event]struct{}
	closed bool
}

func NewBroker() *Broker {
	return &Broker{subs: make(map[chan Event]struct{})}
}

// Subscribe returns a channel of events and a function that unsubscribes.
// The channel is closed when the broker closes or on unsubscribe.
func (b *Broker) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	b.subs[ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if _, ok := b.subs[ch]; ok {
				delete(b.subs, ch)
				close(ch)
			}
		})
	}
}

func (b *Broker) Publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	for ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribers returns the current subscriber count.
func (b *Broker) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close sends a final closed event where there is room and closes every
// subscriber channel.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.subs {
		select {
		case ch <- Event{Type: EventClosed}:
		default:
		}
		close(ch)
		delete(b.subs, ch)
	}
}
