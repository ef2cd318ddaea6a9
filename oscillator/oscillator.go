// Package oscillator implements the periodic stimuli driving a
// simulation's settable signals: a min-heap of Oscillators ordered by
// next trigger time, tie-broken by signal name.
package oscillator

import (
	"container/heap"

	"github.com/sarchlab/oombak/bitvec"
)

type state int

const (
	stateHigh state = iota
	stateLow
)

// Oscillator toggles a single signal between a low and a high value
// every period time steps.
type Oscillator struct {
	signalName      string
	period          uint64
	nextState       state
	nextTriggerTime uint64
	lowValue        bitvec.Vec
	highValue       bitvec.Vec
}

// New creates an Oscillator for signalName that first trips at
// currentTime+period, alternating between lowValue and highValue
// starting with highValue.
func New(signalName string, period, currentTime uint64, lowValue, highValue bitvec.Vec) *Oscillator {
	return &Oscillator{
		signalName:      signalName,
		period:          period,
		nextState:       stateHigh,
		nextTriggerTime: currentTime + period,
		lowValue:        lowValue,
		highValue:       highValue,
	}
}

// SignalName returns the signal this oscillator drives.
func (o *Oscillator) SignalName() string { return o.signalName }

// NextTriggerTime returns the next simulation time at which this
// oscillator fires.
func (o *Oscillator) NextTriggerTime() uint64 { return o.nextTriggerTime }

// trip emits the value of the pending state (highValue on the first
// trip), toggles state, and advances the next trigger time by one
// period.
func (o *Oscillator) trip() bitvec.Vec {
	var value bitvec.Vec
	if o.nextState == stateLow {
		value = o.lowValue
	} else {
		value = o.highValue
	}
	o.nextTriggerTime += o.period
	if o.nextState == stateLow {
		o.nextState = stateHigh
	} else {
		o.nextState = stateLow
	}
	return value
}

// oscillatorHeap is a container/heap-ordered slice: earliest
// nextTriggerTime first, ties broken by ascending signalName.
type oscillatorHeap []*Oscillator

func (h oscillatorHeap) Len() int { return len(h) }

func (h oscillatorHeap) Less(i, j int) bool {
	if h[i].nextTriggerTime != h[j].nextTriggerTime {
		return h[i].nextTriggerTime < h[j].nextTriggerTime
	}
	return h[i].signalName < h[j].signalName
}

func (h oscillatorHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *oscillatorHeap) Push(x any) {
	*h = append(*h, x.(*Oscillator))
}

func (h *oscillatorHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// Group holds every oscillator currently driving a simulation, ordered
// so the next one to fire is always at the head.
type Group struct {
	heap oscillatorHeap
}

// NewGroup returns an empty oscillator Group.
func NewGroup() *Group {
	g := &Group{}
	heap.Init(&g.heap)
	return g
}

// Insert adds osc to the group, first removing any existing oscillator
// already driving the same signal.
func (g *Group) Insert(osc *Oscillator) {
	g.Remove(osc.signalName)
	heap.Push(&g.heap, osc)
}

// Remove drops the oscillator driving signalName, if any.
func (g *Group) Remove(signalName string) {
	for i := 0; i < len(g.heap); i++ {
		if g.heap[i].signalName == signalName {
			heap.Remove(&g.heap, i)
			return
		}
	}
}

// NextTriggerTime returns the earliest trigger time among all held
// oscillators, and false if the group is empty.
func (g *Group) NextTriggerTime() (uint64, bool) {
	if len(g.heap) == 0 {
		return 0, false
	}
	return g.heap[0].nextTriggerTime, true
}

// TryPop fires the head oscillator if its next trigger time equals
// currentTime: it returns the signal name and the value to drive it to,
// and reinserts the oscillator with its trigger time advanced. It
// returns false if the head (or the group) isn't due yet.
func (g *Group) TryPop(currentTime uint64) (signalName string, value bitvec.Vec, ok bool) {
	if len(g.heap) == 0 || g.heap[0].nextTriggerTime != currentTime {
		return "", bitvec.Vec{}, false
	}
	osc := heap.Pop(&g.heap).(*Oscillator)
	signalName = osc.signalName
	value = osc.trip()
	heap.Push(&g.heap, osc)
	return signalName, value, true
}
