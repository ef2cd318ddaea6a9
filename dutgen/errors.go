package dutgen

import (
	"errors"
	"fmt"
)

var (
	// ErrExtensionNotSv is returned when the path handed to Build does
	// not end in ".sv".
	ErrExtensionNotSv = errors.New("source path does not have a .sv extension")

	// ErrSvFilePathNotFound is returned when the path handed to Build
	// does not exist or is a directory.
	ErrSvFilePathNotFound = errors.New("sv file path not found")
)

// BuildError reports a failed cmake invocation, carrying its captured
// stderr.
type BuildError struct {
	Stderr string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("cmake: %s", e.Stderr)
}

// ErrIdentifierCollision reports that two distinct probed points
// collapse to the same generated C++/SystemVerilog identifier once
// their dots are replaced, e.g. "a.b" and "a_DOT_b" both becoming
// "a_DOT_b". Generating either would silently shadow the other's
// symbols.
type ErrIdentifierCollision struct {
	Identifier string
	First      string
	Second     string
}

func (e *ErrIdentifierCollision) Error() string {
	return fmt.Sprintf("probed points %q and %q both generate identifier %q", e.First, e.Second, e.Identifier)
}
