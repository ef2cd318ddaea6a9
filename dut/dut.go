// Package dut wraps a dynamically loaded native shared object exposing
// the fixed oombak_query/run/set/get C ABI, presenting it as a handle
// that exchanges bitvec.Vec values keyed by signal path.
package dut

import (
	"github.com/sarchlab/oombak/bitvec"
)

// Signal is one entry of a DUT's static signal table, as reported by
// oombak_query.
type Signal struct {
	Name     string
	Width    uint64
	Gettable bool
	Settable bool
}

// Dut is a loaded native shared object. Lifetime: Close must be called
// before the temporary directory backing the shared object is removed.
type Dut struct {
	lib *dutLib
}

// New loads the shared object at libPath and resolves its four ABI
// symbols.
func New(libPath string) (*Dut, error) {
	lib, err := newDutLib(libPath)
	if err != nil {
		return nil, err
	}
	return &Dut{lib: lib}, nil
}

// Close unloads the shared object. The backing file must not be removed
// until Close returns.
func (d *Dut) Close() error {
	return d.lib.close()
}

// Query returns the DUT's static signal table.
func (d *Dut) Query() []Signal {
	raw := d.lib.query()
	signals := make([]Signal, len(raw))
	for i, s := range raw {
		signals[i] = Signal{Name: s.Name, Width: s.Width, Gettable: s.Get, Settable: s.Set}
	}
	return signals
}

// Run advances the simulation by duration time steps and returns the
// simulator's new current time.
func (d *Dut) Run(duration uint64) (uint64, error) {
	currentTime, err := d.lib.run(duration)
	if err != nil {
		return 0, err
	}
	return currentTime, nil
}

// Set drives the named signal to value.
func (d *Dut) Set(signalName string, value bitvec.Vec) error {
	if err := d.lib.set(signalName, value.Words()); err != nil {
		return &SetSignalError{SignalName: signalName}
	}
	return nil
}

// Get samples the named signal's current value, truncated to the exact
// bit width the DUT reports for it.
func (d *Dut) Get(signalName string) (bitvec.Vec, error) {
	words, nBits, err := d.lib.get(signalName)
	if err != nil {
		return bitvec.Vec{}, &GetSignalError{SignalName: signalName}
	}
	return bitvec.FromWords(int(nBits), words), nil
}
