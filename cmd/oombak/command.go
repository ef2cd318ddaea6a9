package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sarchlab/oombak/bitvec"
)

// commandKind tags the active field of a command, mirroring the fixed
// set of lines this front end accepts.
type commandKind int

const (
	cmdNoop commandKind = iota
	cmdRun
	cmdLoad
	cmdSet
	cmdSetPeriodic
	cmdProbe
	cmdUnprobe
	cmdStatus
	cmdHelp
	cmdQuit
)

// command is a single parsed input line.
type command struct {
	kind              commandKind
	runDuration       uint64
	loadPath          string
	signalName        string
	setValue          bitvec.Vec
	periodicPeriod    uint64
	periodicLowValue  bitvec.Vec
	periodicHighValue bitvec.Vec
	probePath         string
}

type commandInfo struct {
	name        string
	args        []string
	description string
	parse       func(args []string) (command, error)
}

var allCommandInfo = []commandInfo{
	{"run", []string{"duration"}, "run the simulation for the given number of time steps.", parseRun},
	{"load", []string{"SystemVerilog file path"}, "loads the file for simulation.", parseLoad},
	{"set", []string{"signal name", "value"}, "sets the signal value.", parseSet},
	{"set-periodic", []string{"signal name", "period", "low value", "high value"}, "installs a periodic signal value.", parseSetPeriodic},
	{"probe", []string{"signal path"}, "adds a signal to the probe set.", parseProbe},
	{"unprobe", []string{"signal path"}, "removes a signal from the probe set.", parseUnprobe},
	{"status", nil, "shows host memory headroom.", parseStatus},
	{"help", nil, "displays this message.", parseHelp},
	{"quit", nil, "closes this application.", parseQuit},
}

// parseCommand tokenizes line and dispatches to the named command's
// parser. An empty line parses as cmdNoop.
func parseCommand(line string) (command, error) {
	words, err := tokenize(line)
	if err != nil {
		return command{}, err
	}
	if len(words) == 0 {
		return command{kind: cmdNoop}, nil
	}

	name, args := words[0], words[1:]
	for _, info := range allCommandInfo {
		if info.name != name {
			continue
		}
		if len(info.args) != len(args) {
			return command{}, fmt.Errorf("expected %d arguments (usage: %s)", len(info.args), info.usage())
		}
		return info.parse(args)
	}
	return command{}, fmt.Errorf("unknown command %q", name)
}

func (c commandInfo) usage() string {
	usage := c.name
	for _, arg := range c.args {
		usage += " <" + arg + ">"
	}
	return usage
}

// helpText renders every command's usage and description. Command names
// are printed exactly as they must be typed, not title-cased.
func helpText() string {
	var b strings.Builder
	b.WriteString("Commands:\n")
	for _, info := range allCommandInfo {
		fmt.Fprintf(&b, "   %s\n       %s\n", info.usage(), info.description)
	}
	return b.String()
}

// tokenize splits line on whitespace, honoring double-quoted segments
// so a path containing spaces can be passed as one argument.
func tokenize(line string) ([]string, error) {
	var words []string
	var current strings.Builder
	inQuotes := false
	hasCurrent := false

	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			hasCurrent = true
		case r == ' ' && !inQuotes:
			if hasCurrent {
				words = append(words, current.String())
				current.Reset()
				hasCurrent = false
			}
		default:
			current.WriteRune(r)
			hasCurrent = true
		}
	}
	if inQuotes {
		return nil, fmt.Errorf("unterminated quoted string")
	}
	if hasCurrent {
		words = append(words, current.String())
	}
	return words, nil
}

func parseRun(args []string) (command, error) {
	duration, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return command{}, fmt.Errorf("cannot parse %q as a duration: %w", args[0], err)
	}
	return command{kind: cmdRun, runDuration: duration}, nil
}

func parseLoad(args []string) (command, error) {
	return command{kind: cmdLoad, loadPath: args[0]}, nil
}

func parseSet(args []string) (command, error) {
	value, err := bitvec.Parse(args[1])
	if err != nil {
		return command{}, err
	}
	return command{kind: cmdSet, signalName: args[0], setValue: value}, nil
}

func parseSetPeriodic(args []string) (command, error) {
	period, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		return command{}, fmt.Errorf("cannot parse %q as a period: %w", args[1], err)
	}
	low, err := bitvec.Parse(args[2])
	if err != nil {
		return command{}, err
	}
	high, err := bitvec.Parse(args[3])
	if err != nil {
		return command{}, err
	}
	return command{
		kind:              cmdSetPeriodic,
		signalName:        args[0],
		periodicPeriod:    period,
		periodicLowValue:  low,
		periodicHighValue: high,
	}, nil
}

func parseProbe(args []string) (command, error) {
	return command{kind: cmdProbe, probePath: args[0]}, nil
}

func parseUnprobe(args []string) (command, error) {
	return command{kind: cmdUnprobe, probePath: args[0]}, nil
}

func parseStatus([]string) (command, error) {
	return command{kind: cmdStatus}, nil
}

func parseHelp([]string) (command, error) {
	return command{kind: cmdHelp}, nil
}

func parseQuit([]string) (command, error) {
	return command{kind: cmdQuit}, nil
}
