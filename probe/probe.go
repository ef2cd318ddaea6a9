// Package probe builds and queries the hierarchy of probeable signals
// inside an elaborated hardware design: an InstanceNode tree produced by
// a Parser, plus the flat set of ProbePoints currently under
// observation.
package probe

import (
	"errors"
	"fmt"
	"strings"
)

// Direction distinguishes input from output ports. Net/var signals have
// no direction.
type Direction int

const (
	DirectionIn Direction = iota
	DirectionOut
)

// SignalKind classifies a Signal as a port (with a Direction) or an
// internal net/variable.
type SignalKind int

const (
	KindPort SignalKind = iota
	KindNetVar
)

// SignalType describes the shape of a Signal: whether it is a port or a
// net/var, its direction (ports only), and its bit width.
type SignalType struct {
	Kind      SignalKind `json:"kind"`
	Direction Direction  `json:"direction"`
	Width     int        `json:"width"`
}

// PortType builds a SignalType for a port of the given direction and
// width.
func PortType(direction Direction, width int) SignalType {
	return SignalType{Kind: KindPort, Direction: direction, Width: width}
}

// NetVarType builds a SignalType for an internal net or variable of the
// given width.
func NetVarType(width int) SignalType {
	return SignalType{Kind: KindNetVar, Width: width}
}

func (t SignalType) String() string {
	switch {
	case t.Kind == KindPort && t.Direction == DirectionIn:
		return "packed array (input port)"
	case t.Kind == KindPort && t.Direction == DirectionOut:
		return "packed array (output port)"
	default:
		return "packed array (net / var)"
	}
}

// Signal is a single named, typed value inside an InstanceNode.
type Signal struct {
	Name string     `json:"name"`
	Type SignalType `json:"type"`
}

// IsPort reports whether s is a port of its owning instance.
func (s Signal) IsPort() bool { return s.Type.Kind == KindPort }

// IsInputPort reports whether s is a port of its owning instance driven
// from outside.
func (s Signal) IsInputPort() bool {
	return s.Type.Kind == KindPort && s.Type.Direction == DirectionIn
}

// BitWidth returns the signal's width in bits.
func (s Signal) BitWidth() int { return s.Type.Width }

// InstanceNode is one node of the elaborated instance tree: a module
// instance, its own signals, and its child instances.
type InstanceNode struct {
	Name       string          `json:"name"`
	ModuleName string          `json:"module_name"`
	Children   []*InstanceNode `json:"children"`
	Signals    []Signal        `json:"signals"`
}

// GetSignal resolves a dotted path such as "top.child.grandchild.sig" to
// the Signal it names. The first segment must match n's own name; each
// subsequent segment up to the last must name a child instance, and the
// final segment must name one of that instance's own signals.
func (n *InstanceNode) GetSignal(path string) (*Signal, error) {
	head, tail, ok := strings.Cut(path, ".")
	if !ok {
		return nil, nil
	}
	if n.Name != head {
		return nil, nil
	}
	for i := range n.Signals {
		if n.Signals[i].Name == tail {
			return &n.Signals[i], nil
		}
	}
	for _, child := range n.Children {
		signal, err := child.GetSignal(tail)
		if err != nil {
			return nil, err
		}
		if signal != nil {
			return signal, nil
		}
	}
	return nil, nil
}

// GetPorts returns n's own signals that are ports, in declaration order.
func (n *InstanceNode) GetPorts() []Signal {
	var ports []Signal
	for _, s := range n.Signals {
		if s.IsPort() {
			ports = append(ports, s)
		}
	}
	return ports
}

// Parser elaborates a set of HDL source files rooted at a top-level
// module into an InstanceNode tree. Implementations typically shell out
// to or bind against an external elaboration front end.
type Parser interface {
	Parse(sourcePaths []string, topModuleName string) (*InstanceNode, error)
}

// Sentinel parser errors. A Parser implementation should wrap one of
// these with fmt.Errorf's %w so callers can match with errors.Is.
var (
	ErrFileNotFound             = errors.New("file not found")
	ErrTopLevelModuleNotFound   = errors.New("top-level module not found")
	ErrUnsupportedSymbolType    = errors.New("found unsupported symbol type")
	ErrUnsupportedPortDirection = errors.New("found unsupported port direction")
	ErrNullDereference          = errors.New("null dereference")
)

// CompileError reports a front-end diagnostic produced while
// elaborating a design.
type CompileError struct {
	Diagnostics string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("failed to compile:\n%s", e.Diagnostics)
}

// ErrUnknownSignal is returned by AddSignalToProbe when a path does not
// resolve to any signal reachable from a Probe's root instance, and by
// RemoveSignalFromProbe when no probed point has that path.
type ErrUnknownSignal struct {
	Path string
}

func (e *ErrUnknownSignal) Error() string {
	return fmt.Sprintf("signal '%s' not available", e.Path)
}

// ProbePoint is a single signal under observation: its lookup path, the
// underlying Signal, and whether it may be driven from outside the
// design.
type ProbePoint struct {
	Path            string
	Signal          Signal
	IsTopLevelInput bool
}

// DotReplacedPath returns the point's path with every '.' replaced by
// "_DOT_", suitable for use as a generated identifier.
func (p ProbePoint) DotReplacedPath() string {
	return strings.ReplaceAll(p.Path, ".", "_DOT_")
}

// BitWidth returns the width of the underlying signal.
func (p ProbePoint) BitWidth() int { return p.Signal.BitWidth() }

// IsGettable reports whether the point's current value can be sampled.
// Every probe point is gettable.
func (p ProbePoint) IsGettable() bool { return true }

// IsSettable reports whether the point can be driven, which is true
// only for top-level input ports.
func (p ProbePoint) IsSettable() bool { return p.IsTopLevelInput }

// Probe holds the elaborated instance tree for a design along with the
// set of points currently under observation.
type Probe struct {
	rootNode           *InstanceNode
	points             []ProbePoint
	topLevelPorts      []ProbePoint
	topLevelModuleName string
}

// NewProbe elaborates sourcePaths via parser and returns a Probe whose
// initial probed points are exactly the top module's own ports.
func NewProbe(parser Parser, sourcePaths []string, topModuleName string) (*Probe, error) {
	root, err := parser.Parse(sourcePaths, topModuleName)
	if err != nil {
		return nil, err
	}
	points := topLevelPoints(root)
	ports := make([]ProbePoint, len(points))
	copy(ports, points)
	return &Probe{
		rootNode:           root,
		points:             points,
		topLevelPorts:      ports,
		topLevelModuleName: root.ModuleName,
	}, nil
}

func topLevelPoints(root *InstanceNode) []ProbePoint {
	ports := root.GetPorts()
	points := make([]ProbePoint, 0, len(ports))
	for _, s := range ports {
		segments := strings.Split(s.Name, ".")
		path := segments[len(segments)-1]
		signal := Signal{Name: path, Type: s.Type}
		points = append(points, ProbePoint{
			Path:            path,
			Signal:          signal,
			IsTopLevelInput: signal.IsInputPort(),
		})
	}
	return points
}

// GetProbedPoints returns every point currently under observation.
func (p *Probe) GetProbedPoints() []ProbePoint { return p.points }

// GetTopLevelPorts returns the design's top-level ports, independent of
// which points are currently probed.
func (p *Probe) GetTopLevelPorts() []ProbePoint { return p.topLevelPorts }

// TopLevelModuleName returns the name of the module elaborated at the
// root of the instance tree.
func (p *Probe) TopLevelModuleName() string { return p.topLevelModuleName }

// RootNode returns the root of the elaborated instance tree.
func (p *Probe) RootNode() *InstanceNode { return p.rootNode }

// Clone returns a copy of p whose points (and top-level ports) can be
// edited independently of the original, sharing the same instance tree.
func (p *Probe) Clone() *Probe {
	clone := &Probe{
		rootNode:           p.rootNode,
		topLevelModuleName: p.topLevelModuleName,
	}
	clone.points = append([]ProbePoint(nil), p.points...)
	clone.topLevelPorts = append([]ProbePoint(nil), p.topLevelPorts...)
	return clone
}

// GetSettablePoints returns every probed point that can be driven.
func (p *Probe) GetSettablePoints() []ProbePoint {
	return filterPoints(p.points, func(pt ProbePoint) bool { return pt.IsSettable() })
}

// GetGettablePoints returns every probed point, since all points are
// gettable.
func (p *Probe) GetGettablePoints() []ProbePoint {
	return filterPoints(p.points, func(ProbePoint) bool { return true })
}

// GetMultibitSettablePoints returns every settable probed point wider
// than one bit.
func (p *Probe) GetMultibitSettablePoints() []ProbePoint {
	return filterPoints(p.points, func(pt ProbePoint) bool { return pt.IsSettable() && pt.BitWidth() > 1 })
}

// GetMultibitGettablePoints returns every probed point wider than one
// bit.
func (p *Probe) GetMultibitGettablePoints() []ProbePoint {
	return filterPoints(p.points, func(pt ProbePoint) bool { return pt.BitWidth() > 1 })
}

// GetSingleBitSettablePoints returns every settable single-bit probed
// point.
func (p *Probe) GetSingleBitSettablePoints() []ProbePoint {
	return filterPoints(p.points, func(pt ProbePoint) bool { return pt.IsSettable() && pt.BitWidth() == 1 })
}

// GetSingleBitGettablePoints returns every single-bit probed point.
func (p *Probe) GetSingleBitGettablePoints() []ProbePoint {
	return filterPoints(p.points, func(pt ProbePoint) bool { return pt.BitWidth() == 1 })
}

func filterPoints(points []ProbePoint, keep func(ProbePoint) bool) []ProbePoint {
	out := make([]ProbePoint, 0, len(points))
	for _, pt := range points {
		if keep(pt) {
			out = append(out, pt)
		}
	}
	return out
}

// AddSignalToProbe resolves path against the root instance tree and, if
// found, appends it to the set of probed points. The new point is never
// settable: only a design's top-level ports are settable, and those are
// already present from NewProbe.
func (p *Probe) AddSignalToProbe(path string) error {
	signal, err := p.rootNode.GetSignal(path)
	if err != nil {
		return err
	}
	if signal == nil {
		return &ErrUnknownSignal{Path: path}
	}
	p.points = append(p.points, ProbePoint{
		Path:   path,
		Signal: *signal,
	})
	return nil
}

// RemoveSignalFromProbe removes the probed point with the given path.
func (p *Probe) RemoveSignalFromProbe(path string) error {
	for i, pt := range p.points {
		if pt.Path == path {
			p.points = append(p.points[:i], p.points[i+1:]...)
			return nil
		}
	}
	return &ErrUnknownSignal{Path: path}
}
