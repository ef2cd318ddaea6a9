package httpsim

import (
	"sync"

	"github.com/sarchlab/oombak/message"
)

// eventBroker is a dispatch.Listener that fans every Response out to
// however many /events subscribers are currently connected, and
// separately remembers the most recently loaded DUT for /signals.
type eventBroker struct {
	mu         sync.Mutex
	subs       map[chan message.Response]struct{}
	lastLoaded *message.LoadedDut
}

func newEventBroker() *eventBroker {
	return &eventBroker{subs: make(map[chan message.Response]struct{})}
}

// OnReceiveResponse implements dispatch.Listener.
func (b *eventBroker) OnReceiveResponse(response message.Response) {
	b.mu.Lock()
	if response.Payload.Kind == message.KindResultLoadedDut {
		b.lastLoaded = response.Payload.LoadedDut
	}
	subs := make([]chan message.Response, 0, len(b.subs))
	for ch := range b.subs {
		subs = append(subs, ch)
	}
	b.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- response:
		default:
			// A slow subscriber drops the event rather than stalling the
			// dispatcher's notify fan-out.
		}
	}
}

func (b *eventBroker) subscribe() chan message.Response {
	ch := make(chan message.Response, 32)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *eventBroker) unsubscribe(ch chan message.Response) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
	close(ch)
}

func (b *eventBroker) loadedDut() (*message.LoadedDut, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastLoaded, b.lastLoaded != nil
}
