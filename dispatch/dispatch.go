// Package dispatch routes Requests to an Engine, fanning out every
// Response (including an ephemeral "dispatched" notification issued
// the moment a request leaves the queue) to a set of registered
// Listeners.
package dispatch

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/sarchlab/oombak/bitvec"
	"github.com/sarchlab/oombak/message"
)

// EngineAPI is the subset of engine.Engine's methods a Dispatcher
// drives. Depending on an interface keeps this package testable
// without a loaded DUT.
type EngineAPI interface {
	Run(duration uint64) (uint64, error)
	SetSignal(signalName string, value bitvec.Vec) error
	SetPeriodic(signalName string, period uint64, low, high bitvec.Vec) error
	Load(messageID, sourcePath string, notify func(message.Response)) (*message.LoadedDut, error)
	ModifyProbedPoints(messageID string, toAdd, toRemove []string, notify func(message.Response)) (*message.LoadedDut, error)
	GetSimulationResult() *message.SimulationResult
}

// Listener is notified of every Response the dispatcher produces,
// including the dispatched-notification that precedes each request
// actually being served.
type Listener interface {
	OnReceiveResponse(response message.Response)
}

// Journal records a one-line summary of every request as it leaves the
// queue, for later inspection. SetJournal is optional; a Dispatcher
// with none skips recording entirely.
type Journal interface {
	Record(id, payloadSummary string, dispatchedAt time.Time)
}

// Dispatcher owns the single goroutine that reads Requests off a queue
// and drives EngineAPI with them. Requests other than Terminate are
// served on their own goroutine so a slow Run or Load never blocks the
// next request from being dispatched.
type Dispatcher struct {
	engine   EngineAPI
	requests chan message.Request
	registry *Registry
	group    *Group
	done     chan struct{}
	journal  Journal

	listenersMu sync.RWMutex
	listeners   []Listener
}

// New starts a Dispatcher driving engine. The dispatch loop runs
// immediately in the background; call Terminate to stop it.
func New(engine EngineAPI) *Dispatcher {
	d := &Dispatcher{
		engine:   engine,
		requests: make(chan message.Request, 100),
		registry: NewRegistry(),
		group:    &Group{},
		done:     make(chan struct{}),
	}
	d.group.Go(d.run)
	return d
}

// Register adds listener to the set notified of every Response.
func (d *Dispatcher) Register(listener Listener) {
	d.listenersMu.Lock()
	defer d.listenersMu.Unlock()
	d.listeners = append(d.listeners, listener)
}

// SetJournal attaches journal as the recorder of every dispatched
// request. Passing nil disables recording.
func (d *Dispatcher) SetJournal(journal Journal) {
	d.journal = journal
}

// Submit assigns payload a fresh request id, enqueues it, and returns
// the id immediately without waiting for it to be served.
func (d *Dispatcher) Submit(payload message.RequestPayload) string {
	id := xid.New().String()
	d.registry.Register(id, payload.String())
	d.requests <- message.Request{ID: id, Payload: payload}
	return id
}

// Terminate enqueues a Terminate request, waits for the dispatch loop
// to drain and stop, joins every in-flight serve goroutine, and
// reports any of them that panicked instead of returning.
func (d *Dispatcher) Terminate() []error {
	d.requests <- message.Request{Payload: message.RequestPayload{Kind: message.KindTerminate}}
	<-d.done
	close(d.requests)
	return d.group.Join()
}

func (d *Dispatcher) run() {
	for req := range d.requests {
		if req.Payload.Kind == message.KindTerminate {
			close(d.done)
			return
		}
		d.notify(dispatchedNotification(req))
		if d.journal != nil {
			d.journal.Record(req.ID, req.Payload.String(), time.Now())
		}
		req := req
		d.group.Go(func() { d.serve(req) })
	}
}

func (d *Dispatcher) serve(req message.Request) {
	defer d.registry.Forget(req.ID)
	d.notify(d.dispatchToEngine(req))
}

func (d *Dispatcher) dispatchToEngine(req message.Request) message.Response {
	notify := d.notify
	switch req.Payload.Kind {
	case message.KindRun:
		currentTime, err := d.engine.Run(req.Payload.RunDuration)
		if err != nil {
			return message.NewErrorResponse(req.ID, err)
		}
		return message.NewCurrentTimeResponse(req.ID, currentTime)

	case message.KindSetSignal:
		err := d.engine.SetSignal(req.Payload.SignalName, req.Payload.SetValue)
		if err != nil {
			return message.NewErrorResponse(req.ID, err)
		}
		return message.NewEmptyResponse(req.ID)

	case message.KindSetPeriodic:
		err := d.engine.SetPeriodic(
			req.Payload.SignalName,
			req.Payload.PeriodicPeriod,
			req.Payload.PeriodicLowValue,
			req.Payload.PeriodicHighValue,
		)
		if err != nil {
			return message.NewErrorResponse(req.ID, err)
		}
		return message.NewEmptyResponse(req.ID)

	case message.KindLoad:
		loaded, err := d.engine.Load(req.ID, req.Payload.LoadPath, notify)
		if err != nil {
			return message.NewErrorResponse(req.ID, err)
		}
		return message.NewLoadedDutResponse(req.ID, loaded)

	case message.KindModifyProbedPoints:
		loaded, err := d.engine.ModifyProbedPoints(
			req.ID,
			req.Payload.ProbePointsToAdd,
			req.Payload.ProbePointsToRemove,
			notify,
		)
		if err != nil {
			return message.NewErrorResponse(req.ID, err)
		}
		return message.NewLoadedDutResponse(req.ID, loaded)

	case message.KindGetSimulationResult:
		return message.NewSimulationResultResponse(req.ID, d.engine.GetSimulationResult())

	default:
		return message.NewErrorResponse(req.ID, fmt.Errorf("unhandled request kind: %s", req.Payload.Kind))
	}
}

func dispatchedNotification(req message.Request) message.Response {
	return message.NewGenericNotification(req.ID, fmt.Sprintf("`%s` request dispatched", req.Payload.String()))
}

func (d *Dispatcher) notify(response message.Response) {
	d.listenersMu.RLock()
	defer d.listenersMu.RUnlock()
	for _, listener := range d.listeners {
		listener.OnReceiveResponse(response)
	}
}
