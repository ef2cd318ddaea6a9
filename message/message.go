// Package message defines the envelopes exchanged between a simulation
// front end and the engine that drives a DUT: requests going in,
// responses and notifications coming back.
package message

import (
	"fmt"

	"github.com/sarchlab/oombak/bitvec"
	"github.com/sarchlab/oombak/probe"
)

// Request is a single unit of work addressed to the engine. Its ID is
// assigned by whoever constructs it (the dispatcher, typically, via
// xid) and is echoed back on every Response that answers it.
type Request struct {
	ID      string         `json:"id"`
	Payload RequestPayload `json:"payload"`
}

// RequestPayload is the sum of request kinds the engine understands.
// Kind says which request it is; only the fields that kind uses are
// populated.
type RequestPayload struct {
	Kind                RequestKind `json:"kind"`
	RunDuration         uint64      `json:"run_duration,omitempty"`
	SignalName          string      `json:"signal_name,omitempty"`
	SetValue            bitvec.Vec  `json:"set_value,omitempty"`
	PeriodicPeriod      uint64      `json:"periodic_period,omitempty"`
	PeriodicLowValue    bitvec.Vec  `json:"periodic_low_value,omitempty"`
	PeriodicHighValue   bitvec.Vec  `json:"periodic_high_value,omitempty"`
	LoadPath            string      `json:"load_path,omitempty"`
	ProbePointsToAdd    []string    `json:"probe_points_to_add,omitempty"`
	ProbePointsToRemove []string    `json:"probe_points_to_remove,omitempty"`
}

// RequestKind tags the active field of a RequestPayload.
type RequestKind int

const (
	KindRun RequestKind = iota
	KindSetSignal
	KindSetPeriodic
	KindLoad
	KindModifyProbedPoints
	KindGetSimulationResult
	KindTerminate
)

func (k RequestKind) String() string {
	switch k {
	case KindRun:
		return "Run"
	case KindSetSignal:
		return "SetSignal"
	case KindSetPeriodic:
		return "SetPeriodic"
	case KindLoad:
		return "Load"
	case KindModifyProbedPoints:
		return "ModifyProbedPoints"
	case KindGetSimulationResult:
		return "GetSimulationResult"
	case KindTerminate:
		return "Terminate"
	default:
		return "Unknown"
	}
}

// String renders a payload the way it should appear in progress and log
// output: the kind plus whichever arguments identify the request, never
// the bit-vector values themselves.
func (p RequestPayload) String() string {
	switch p.Kind {
	case KindRun:
		return fmt.Sprintf("Run(%d)", p.RunDuration)
	case KindSetSignal:
		return fmt.Sprintf("SetSignal(%s)", p.SignalName)
	case KindSetPeriodic:
		return fmt.Sprintf("SetPeriodic(%s, %d)", p.SignalName, p.PeriodicPeriod)
	case KindLoad:
		return fmt.Sprintf("Load(%s)", p.LoadPath)
	case KindModifyProbedPoints:
		return "ModifyProbedPoints"
	case KindGetSimulationResult:
		return "GetSimulationResult"
	case KindTerminate:
		return "Terminate"
	default:
		return p.Kind.String()
	}
}

// NewRunRequest builds a Run request for the given duration, in
// simulation time steps.
func NewRunRequest(id string, duration uint64) Request {
	return Request{ID: id, Payload: RequestPayload{Kind: KindRun, RunDuration: duration}}
}

// NewSetSignalRequest builds a one-shot signal drive request.
func NewSetSignalRequest(id, signalName string, value bitvec.Vec) Request {
	return Request{ID: id, Payload: RequestPayload{Kind: KindSetSignal, SignalName: signalName, SetValue: value}}
}

// NewSetPeriodicRequest builds a request that installs (or replaces) a
// periodic oscillator on signalName.
func NewSetPeriodicRequest(id, signalName string, period uint64, low, high bitvec.Vec) Request {
	return Request{ID: id, Payload: RequestPayload{
		Kind:              KindSetPeriodic,
		SignalName:        signalName,
		PeriodicPeriod:    period,
		PeriodicLowValue:  low,
		PeriodicHighValue: high,
	}}
}

// NewLoadRequest builds a request to (re)load the DUT from the HDL
// source at path.
func NewLoadRequest(id, path string) Request {
	return Request{ID: id, Payload: RequestPayload{Kind: KindLoad, LoadPath: path}}
}

// NewModifyProbedPointsRequest builds a request that adds and removes
// signals from the probe set in a single step.
func NewModifyProbedPointsRequest(id string, toAdd, toRemove []string) Request {
	return Request{ID: id, Payload: RequestPayload{
		Kind:                KindModifyProbedPoints,
		ProbePointsToAdd:    toAdd,
		ProbePointsToRemove: toRemove,
	}}
}

// NewGetSimulationResultRequest builds a request for a snapshot of the
// waveform accumulated since the DUT was last loaded.
func NewGetSimulationResultRequest(id string) Request {
	return Request{ID: id, Payload: RequestPayload{Kind: KindGetSimulationResult}}
}

// NewTerminateRequest builds the request that drains and stops the
// dispatch loop.
func NewTerminateRequest(id string) Request {
	return Request{ID: id, Payload: RequestPayload{Kind: KindTerminate}}
}

// Response answers a Request with the same ID, or reports an
// out-of-band notification.
type Response struct {
	ID      string          `json:"id"`
	Payload ResponsePayload `json:"payload"`
}

// ResponsePayload is the sum of response kinds. Kind selects which of
// CurrentTime, LoadedDut, Simulation, Err/ErrMessage, or Notification
// is meaningful; KindEmpty carries none of them.
type ResponsePayload struct {
	Kind         ResponseKind      `json:"kind"`
	CurrentTime  uint64            `json:"current_time,omitempty"`
	LoadedDut    *LoadedDut        `json:"loaded_dut,omitempty"`
	Simulation   *SimulationResult `json:"simulation,omitempty"`
	Err          error             `json:"-"`
	ErrMessage   string            `json:"error,omitempty"`
	Notification Notification      `json:"notification,omitempty"`
}

// ResponseKind tags the active field of a ResponsePayload.
type ResponseKind int

const (
	KindEmpty ResponseKind = iota
	KindCurrentTime
	KindResultLoadedDut
	KindResultSimulation
	KindError
	KindNotificationProgress
	KindNotificationGeneric
)

// Notification carries an out-of-band progress or informational update,
// not tied to completing a particular request.
type Notification struct {
	Progress Percentage `json:"progress"`
	Message  string     `json:"message"`
}

func (n Notification) String() string {
	if n.Progress.NumSteps > 0 {
		return fmt.Sprintf("%s (%s)", n.Message, n.Progress)
	}
	return n.Message
}

// NewEmptyResponse answers id with no payload, for requests (like
// SetSignal) that succeed without returning data.
func NewEmptyResponse(id string) Response {
	return Response{ID: id, Payload: ResponsePayload{Kind: KindEmpty}}
}

// NewCurrentTimeResponse answers id with the engine's current
// simulation time.
func NewCurrentTimeResponse(id string, currentTime uint64) Response {
	return Response{ID: id, Payload: ResponsePayload{Kind: KindCurrentTime, CurrentTime: currentTime}}
}

// NewLoadedDutResponse answers id with the freshly loaded DUT's probe
// tree and initial probe set.
func NewLoadedDutResponse(id string, dut *LoadedDut) Response {
	return Response{ID: id, Payload: ResponsePayload{Kind: KindResultLoadedDut, LoadedDut: dut}}
}

// NewSimulationResultResponse answers id with a snapshot of the
// accumulated waveform.
func NewSimulationResultResponse(id string, result *SimulationResult) Response {
	return Response{ID: id, Payload: ResponsePayload{Kind: KindResultSimulation, Simulation: result}}
}

// NewErrorResponse answers id reporting that its request failed. Err
// carries the original error for in-process callers (errors.Is/As);
// ErrMessage carries its text for callers, like the HTTP transport,
// that only see the wire form.
func NewErrorResponse(id string, err error) Response {
	return Response{ID: id, Payload: ResponsePayload{Kind: KindError, Err: err, ErrMessage: err.Error()}}
}

// NewProgressNotification reports progress toward a long-running
// request (DUT generation) without completing it.
func NewProgressNotification(id string, progress Percentage, message string) Response {
	return Response{ID: id, Payload: ResponsePayload{
		Kind:         KindNotificationProgress,
		Notification: Notification{Progress: progress, Message: message},
	}}
}

// NewGenericNotification reports an informational message not tied to
// progress.
func NewGenericNotification(id, message string) Response {
	return Response{ID: id, Payload: ResponsePayload{
		Kind:         KindNotificationGeneric,
		Notification: Notification{Message: message},
	}}
}

// LoadedDut describes a freshly (re)loaded design: its elaborated
// instance tree and the paths currently under observation.
type LoadedDut struct {
	RootNode     *probe.InstanceNode `json:"root_node"`
	ProbedPoints []string            `json:"probed_points"`
}

// NewLoadedDut summarizes p as a LoadedDut response payload.
func NewLoadedDut(p *probe.Probe) *LoadedDut {
	points := p.GetProbedPoints()
	paths := make([]string, len(points))
	for i, pt := range points {
		paths[i] = pt.Path
	}
	return &LoadedDut{RootNode: p.RootNode(), ProbedPoints: paths}
}

// SimulationResult is the waveform accumulated since the DUT was last
// loaded, up to CurrentTime.
type SimulationResult struct {
	Waves       []Wave `json:"waves"`
	TimeStepPs  uint64 `json:"time_step_ps"`
	CurrentTime uint64 `json:"current_time"`
}

// Wave holds one signal's sampled values as a run-length-coalesced
// series: each entry is the value held from its start time for its
// duration, both expressed in simulation time steps.
type Wave struct {
	SignalName string      `json:"signal_name"`
	Width      int         `json:"width"`
	Values     []WaveValue `json:"values"`
}

// WaveValue is one run in a Wave: value, held starting at Start, for
// Duration time steps.
type WaveValue struct {
	Value    bitvec.Vec `json:"value"`
	Start    uint64     `json:"start"`
	Duration uint64     `json:"duration"`
}

// ValueIndexAt returns the index into Values holding the signal's value
// at the given simulation time, along with the offset of time from the
// start of that run. ok is false if time precedes the first recorded
// run or falls at or after the end of the last one.
func (w Wave) ValueIndexAt(time uint64) (index int, offset uint64, ok bool) {
	lo, hi := 0, len(w.Values)
	for lo < hi {
		mid := (lo + hi) / 2
		if w.Values[mid].Start <= time {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo == 0 {
		return 0, 0, false
	}
	run := w.Values[lo-1]
	offset = time - run.Start
	if offset < run.Duration {
		return lo - 1, offset, true
	}
	return 0, 0, false
}

// Percentage tracks completion of a fixed number of discrete steps, for
// reporting long-running operations like DUT generation.
type Percentage struct {
	NumSteps       int `json:"num_steps"`
	CompletedSteps int `json:"completed_steps"`
}

// NewPercentage starts a Percentage tracker over numSteps steps.
func NewPercentage(numSteps int) Percentage {
	return Percentage{NumSteps: numSteps}
}

// Increment marks one more step complete.
func (p *Percentage) Increment() {
	p.CompletedSteps++
}

// Value returns completion as a fraction in [0, 1].
func (p Percentage) Value() float64 {
	if p.NumSteps == 0 {
		return 0
	}
	return float64(p.CompletedSteps) / float64(p.NumSteps)
}

func (p Percentage) String() string {
	return fmt.Sprintf("%d/%d", p.CompletedSteps, p.NumSteps)
}
