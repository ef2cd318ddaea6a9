package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os/exec"

	"github.com/sarchlab/oombak/probe"
)

// execParser elaborates a design by shelling out to an external
// front end, per probe.Parser's own contract ("implementations
// typically shell out to or bind against an external elaboration
// front end"). It expects that command, invoked as
// `<command> <topModuleName> <sourcePaths...>`, to print the
// elaborated probe.InstanceNode tree as JSON on stdout and any
// diagnostics on stderr.
type execParser struct {
	command string
}

func newExecParser(command string) *execParser {
	return &execParser{command: command}
}

// Parse implements probe.Parser.
func (p *execParser) Parse(sourcePaths []string, topModuleName string) (*probe.InstanceNode, error) {
	args := append([]string{topModuleName}, sourcePaths...)
	cmd := exec.Command(p.command, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			return nil, &probe.CompileError{Diagnostics: stderr.String()}
		}
		return nil, fmt.Errorf("%s: %w", p.command, err)
	}

	var root probe.InstanceNode
	if err := json.Unmarshal(stdout.Bytes(), &root); err != nil {
		return nil, fmt.Errorf("%s: malformed elaboration output: %w", p.command, err)
	}
	return &root, nil
}
