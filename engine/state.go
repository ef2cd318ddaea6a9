package engine

import (
	"github.com/sarchlab/oombak/bitvec"
	"github.com/sarchlab/oombak/dut"
	"github.com/sarchlab/oombak/dutgen"
	"github.com/sarchlab/oombak/probe"
)

// dutHandle is the subset of *dut.Dut that dutState needs. Depending on
// an interface rather than the concrete dlopen-backed type lets the
// engine's Run/sample/oscillator logic be exercised with a fake DUT.
type dutHandle interface {
	Run(duration uint64) (uint64, error)
	Set(signalName string, value bitvec.Vec) error
	Get(signalName string) (bitvec.Vec, error)
	Query() []dut.Signal
	Close() error
}

// dutState holds everything tied to the currently loaded design. It is
// always accessed through Engine's RWMutex: reads take the read lock,
// reload/release take the write lock. willBeReloaded is a mutex flag of
// its own, guarding against two overlapping Load/ModifyProbedPoints
// calls rather than against concurrent readers.
type dutState struct {
	dut            dutHandle
	probe          *probe.Probe
	sourcePath     string
	tempDir        *dutgen.TempGenDir
	willBeReloaded bool

	// newDut opens the native handle at a generated tempDir's library
	// path. It defaults to dut.New; tests override it to exercise
	// reload's failure path without a real shared object.
	newDut func(libPath string) (dutHandle, error)
}

func (s *dutState) run(duration uint64) (uint64, error) {
	if s.dut == nil {
		return 0, ErrDutNotLoaded
	}
	return s.dut.Run(duration)
}

func (s *dutState) get(signalName string) (bitvec.Vec, error) {
	if s.dut == nil {
		return bitvec.Vec{}, ErrDutNotLoaded
	}
	return s.dut.Get(signalName)
}

func (s *dutState) set(signalName string, value bitvec.Vec) error {
	if s.dut == nil {
		return ErrDutNotLoaded
	}
	return s.dut.Set(signalName, value)
}

func (s *dutState) query() ([]dut.Signal, error) {
	if s.dut == nil {
		return nil, ErrDutNotLoaded
	}
	return s.dut.Query(), nil
}

// reload installs a freshly generated dut/probe pair, releasing whatever
// was loaded before it. Resources are always released before the new
// handle is installed: dut.Close must run before tempDir is removed, and
// release order below guarantees that.
func (s *dutState) reload(sourcePath string, tempDir *dutgen.TempGenDir, p *probe.Probe) error {
	s.releaseResources()

	open := s.newDut
	if open == nil {
		open = openDut
	}
	newDut, err := open(tempDir.LibPath())
	if err != nil {
		return err
	}

	s.tempDir = tempDir
	s.dut = newDut
	s.sourcePath = sourcePath
	s.probe = p
	s.willBeReloaded = false
	return nil
}

func openDut(libPath string) (dutHandle, error) {
	return dut.New(libPath)
}

func (s *dutState) releaseResources() {
	if s.dut != nil {
		s.dut.Close()
		s.dut = nil
	}
	if s.tempDir != nil {
		s.tempDir.Close()
		s.tempDir = nil
	}
}
