// Package engine serves simulation requests against a loaded DUT: it
// advances time sample-by-sample, coalescing a waveform as it grows,
// interleaves periodic stimuli, and reloads or re-probes the design
// without ever blocking a concurrent reader on generation work.
package engine

import (
	"sync"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/oombak/bitvec"
	"github.com/sarchlab/oombak/dut"
	"github.com/sarchlab/oombak/dutgen"
	"github.com/sarchlab/oombak/message"
	"github.com/sarchlab/oombak/oscillator"
	"github.com/sarchlab/oombak/probe"
)

// Engine owns the loaded design, the waveform accumulated since the
// design was last loaded, and the periodic stimuli driving it. Its
// exported methods are the full set of operations a dispatcher can
// route a Request to.
type Engine struct {
	stateMu  sync.RWMutex
	state    dutState
	resultMu sync.RWMutex
	result   message.SimulationResult

	oscMu       sync.Mutex
	oscillators *oscillator.Group

	parser     probe.Parser
	timeStepPs uint64
}

// Builder assembles an Engine. Its zero value is usable; WithParser and
// WithFreq override defaults before Build.
type Builder struct {
	parser probe.Parser
	freq   sim.Freq
}

// NewBuilder returns a Builder defaulting to a 1Hz clock, so Build never
// divides by zero if WithFreq is omitted.
func NewBuilder() Builder {
	return Builder{freq: sim.Freq(1)}
}

// WithParser sets the HDL elaboration front end used by Load.
func (b Builder) WithParser(parser probe.Parser) Builder {
	b.parser = parser
	return b
}

// WithFreq sets the DUT's clock frequency, which determines the
// simulation time step reported in every SimulationResult.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// Build returns a ready, unloaded Engine.
func (b Builder) Build() *Engine {
	return &Engine{
		parser:      b.parser,
		timeStepPs:  timeStepPs(b.freq),
		oscillators: oscillator.NewGroup(),
	}
}

func timeStepPs(freq sim.Freq) uint64 {
	hz := float64(freq)
	if hz <= 0 {
		return 0
	}
	return uint64(1e12 / hz)
}

// Run advances simulation time by duration time steps, sampling and
// extending the waveform as it goes and tripping any periodic stimulus
// whose trigger time falls within the advance.
func (e *Engine) Run(duration uint64) (uint64, error) {
	e.resultMu.Lock()
	defer e.resultMu.Unlock()
	e.stateMu.RLock()
	defer e.stateMu.RUnlock()

	target := e.result.CurrentTime + duration
	for e.result.CurrentTime < target {
		step := target - e.result.CurrentTime
		if next, ok := e.nextOscillatorTrigger(); ok {
			if remaining := next - e.result.CurrentTime; next > e.result.CurrentTime && remaining < step {
				step = remaining
			}
		}

		newTime, err := e.state.run(step)
		if err != nil {
			return 0, err
		}
		e.appendUntil(newTime)
		if err := e.tripDueOscillators(newTime); err != nil {
			return 0, err
		}
	}
	return e.result.CurrentTime, nil
}

func (e *Engine) nextOscillatorTrigger() (uint64, bool) {
	e.oscMu.Lock()
	defer e.oscMu.Unlock()
	return e.oscillators.NextTriggerTime()
}

func (e *Engine) tripDueOscillators(currentTime uint64) error {
	e.oscMu.Lock()
	defer e.oscMu.Unlock()
	for {
		signalName, value, ok := e.oscillators.TryPop(currentTime)
		if !ok {
			return nil
		}
		if err := e.state.set(signalName, value); err != nil {
			return err
		}
	}
}

// appendUntil samples every probed wave's current value and extends its
// last run (or starts a new one, if the value changed) up to end. The
// caller must hold resultMu for writing and stateMu at least for
// reading.
func (e *Engine) appendUntil(end uint64) {
	current := e.result.CurrentTime
	duration := end - current
	for i := range e.result.Waves {
		wave := &e.result.Waves[i]
		value, err := e.state.get(wave.SignalName)
		if err != nil {
			continue
		}
		if n := len(wave.Values); n > 0 && wave.Values[n-1].Value.Equal(value) {
			wave.Values[n-1].Duration += duration
		} else {
			wave.Values = append(wave.Values, message.WaveValue{Value: value, Start: current, Duration: duration})
		}
	}
	e.result.CurrentTime = end
}

// SetSignal drives signalName immediately. The waveform is not extended;
// the new value is only visible in the next sample taken by Run.
func (e *Engine) SetSignal(signalName string, value bitvec.Vec) error {
	e.stateMu.RLock()
	defer e.stateMu.RUnlock()
	return e.state.set(signalName, value)
}

// SetPeriodic installs (or replaces) an oscillator on signalName. Before
// installing it, low and high are each driven in turn (and low restored
// last) so a bad signal name or width mismatch is reported immediately
// rather than at the oscillator's first trip.
func (e *Engine) SetPeriodic(signalName string, period uint64, low, high bitvec.Vec) error {
	e.stateMu.RLock()
	defer e.stateMu.RUnlock()

	for _, value := range []bitvec.Vec{low, high, low} {
		if err := e.state.set(signalName, value); err != nil {
			return err
		}
	}

	e.oscMu.Lock()
	defer e.oscMu.Unlock()
	e.oscillators.Insert(oscillator.New(signalName, period, e.result.CurrentTime, low, high))
	return nil
}

// Load (re)generates and loads the DUT at sourcePath, reporting progress
// through notify tagged with messageID. It fails with ErrDutIsLoading if
// another Load or ModifyProbedPoints is already in flight.
func (e *Engine) Load(messageID, sourcePath string, notify func(message.Response)) (*message.LoadedDut, error) {
	e.stateMu.Lock()
	if e.state.willBeReloaded {
		e.stateMu.Unlock()
		return nil, ErrDutIsLoading
	}
	e.state.willBeReloaded = true
	e.stateMu.Unlock()

	builder := dutgen.NewBuilder(messageID, notify)
	tempDir, p, err := builder.Build(e.parser, sourcePath)
	if err != nil {
		e.clearWillBeReloaded()
		return nil, err
	}

	return e.installLoaded(sourcePath, tempDir, p)
}

// ModifyProbedPoints regenerates the DUT with an edited probe set: the
// current probe is cloned, toAdd and toRemove are applied to the clone,
// and only a clone that edits cleanly is used to rebuild. A failed edit
// never touches the currently running DUT.
func (e *Engine) ModifyProbedPoints(messageID string, toAdd, toRemove []string, notify func(message.Response)) (*message.LoadedDut, error) {
	e.stateMu.Lock()
	if e.state.willBeReloaded {
		e.stateMu.Unlock()
		return nil, ErrDutIsLoading
	}
	if e.state.probe == nil {
		e.stateMu.Unlock()
		return nil, ErrDutNotLoaded
	}
	e.state.willBeReloaded = true
	clone := e.state.probe.Clone()
	sourcePath := e.state.sourcePath
	e.stateMu.Unlock()

	for _, path := range toAdd {
		if err := clone.AddSignalToProbe(path); err != nil {
			e.clearWillBeReloaded()
			return nil, err
		}
	}
	for _, path := range toRemove {
		if err := clone.RemoveSignalFromProbe(path); err != nil {
			e.clearWillBeReloaded()
			return nil, err
		}
	}

	builder := dutgen.NewBuilder(messageID, notify)
	tempDir, err := builder.BuildWithProbe(sourcePath, clone)
	if err != nil {
		e.clearWillBeReloaded()
		return nil, err
	}

	return e.installLoaded(sourcePath, tempDir, clone)
}

func (e *Engine) installLoaded(sourcePath string, tempDir *dutgen.TempGenDir, p *probe.Probe) (*message.LoadedDut, error) {
	e.stateMu.Lock()
	if err := e.state.reload(sourcePath, tempDir, p); err != nil {
		e.state.willBeReloaded = false
		e.stateMu.Unlock()
		return nil, err
	}
	signals, err := e.state.query()
	e.stateMu.Unlock()
	if err != nil {
		return nil, err
	}

	e.resetSimulationResult(signals)
	return message.NewLoadedDut(p), nil
}

func (e *Engine) clearWillBeReloaded() {
	e.stateMu.Lock()
	e.state.willBeReloaded = false
	e.stateMu.Unlock()
}

// resetSimulationResult replaces the waveform with one empty Wave per
// queried signal and drops every oscillator, since it may target a
// signal the new design no longer has.
func (e *Engine) resetSimulationResult(signals []dut.Signal) {
	waves := make([]message.Wave, len(signals))
	for i, s := range signals {
		waves[i] = message.Wave{SignalName: s.Name, Width: int(s.Width)}
	}

	e.resultMu.Lock()
	e.result = message.SimulationResult{Waves: waves, TimeStepPs: e.timeStepPs}
	e.resultMu.Unlock()

	e.oscMu.Lock()
	e.oscillators = oscillator.NewGroup()
	e.oscMu.Unlock()
}

// GetSimulationResult returns a snapshot of the waveform accumulated so
// far, safe for the caller to retain independent of further Run calls.
func (e *Engine) GetSimulationResult() *message.SimulationResult {
	e.resultMu.RLock()
	defer e.resultMu.RUnlock()

	result := message.SimulationResult{
		Waves:       make([]message.Wave, len(e.result.Waves)),
		TimeStepPs:  e.result.TimeStepPs,
		CurrentTime: e.result.CurrentTime,
	}
	for i, wave := range e.result.Waves {
		result.Waves[i] = message.Wave{
			SignalName: wave.SignalName,
			Width:      wave.Width,
			Values:     append([]message.WaveValue(nil), wave.Values...),
		}
	}
	return &result
}

// Close releases the loaded DUT handle and its generated build tree, if
// any. It does not stop the engine from being used again via Load.
func (e *Engine) Close() error {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	e.state.releaseResources()
	return nil
}
