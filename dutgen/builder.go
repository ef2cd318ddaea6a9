// Package dutgen emits and builds the native shared object that backs a
// DUT handle: a fixed C++ front-end shim, a generated C++/SystemVerilog
// wrapper tailored to a Probe's probed points, and a CMake recipe, all
// under a scoped temporary directory.
package dutgen

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sarchlab/oombak/message"
	"github.com/sarchlab/oombak/probe"
)

// TempGenDir is a generated build tree. Its lifetime is bound to the
// temporary directory it wraps: call Close to remove it once the
// shared object has been loaded (or generation failed downstream).
type TempGenDir struct {
	dir     string
	libPath string
}

// LibPath returns the absolute path to the built shared object.
func (d *TempGenDir) LibPath() string {
	return filepath.Join(d.dir, d.libPath)
}

// Close removes the generated tree, including the built shared object.
func (d *TempGenDir) Close() error {
	return os.RemoveAll(d.dir)
}

// Builder drives one generation, optionally reporting progress over a
// notification sink as it goes.
type Builder struct {
	notify    func(message.Response)
	messageID string
	progress  message.Percentage
}

// NewBuilder creates a Builder that reports its four progress ticks to
// notify (if non-nil) tagged with messageID.
func NewBuilder(messageID string, notify func(message.Response)) *Builder {
	return &Builder{
		messageID: messageID,
		notify:    notify,
		progress:  message.NewPercentage(4),
	}
}

// Build elaborates svPath via parser into a Probe, then generates and
// builds the native shim for it. It returns both the build tree and the
// Probe so the caller can report the freshly loaded DUT.
func (b *Builder) Build(parser probe.Parser, svPath string) (*TempGenDir, *probe.Probe, error) {
	sourcePaths, err := sourcePathsFromSvPath(svPath)
	if err != nil {
		return nil, nil, err
	}

	b.notifyProgress("Creating probe...")
	base := filepath.Base(svPath)
	if !strings.HasSuffix(base, ".sv") {
		return nil, nil, ErrExtensionNotSv
	}
	topModuleName := strings.TrimSuffix(base, ".sv")

	p, err := probe.NewProbe(parser, sourcePaths, topModuleName)
	if err != nil {
		return nil, nil, err
	}

	gen, err := b.BuildWithProbe(svPath, p)
	if err != nil {
		return nil, nil, err
	}
	return gen, p, nil
}

// BuildWithProbe generates and builds the native shim for an
// already-elaborated Probe, skipping elaboration. The "creating probe"
// tick is charged immediately since the caller already did that work.
func (b *Builder) BuildWithProbe(svPath string, p *probe.Probe) (*TempGenDir, error) {
	b.progress.Increment()

	b.notifyProgress("Generating CMake project...")
	dir, err := generate(svPath, p)
	if err != nil {
		return nil, err
	}
	b.progress.Increment()

	return b.cmake(dir)
}

func (b *Builder) cmake(dir string) (*TempGenDir, error) {
	if err := b.cmakeConfigure(dir); err != nil {
		os.RemoveAll(dir)
		return nil, err
	}
	if err := b.cmakeBuild(dir); err != nil {
		os.RemoveAll(dir)
		return nil, err
	}
	b.notifyProgress("libdut.so generated!")
	return &TempGenDir{dir: dir, libPath: filepath.Join("build", "libdut.so")}, nil
}

func (b *Builder) cmakeConfigure(dir string) error {
	b.notifyProgress("Running CMake configure...")
	cmd := exec.Command("cmake", "-S", ".", "-B", "build")
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return &BuildError{Stderr: string(out)}
	}
	b.progress.Increment()
	return nil
}

func (b *Builder) cmakeBuild(dir string) error {
	b.notifyProgress("Running CMake build...")
	cmd := exec.Command("cmake", "--build", "build")
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return &BuildError{Stderr: string(out)}
	}
	b.progress.Increment()
	return nil
}

func (b *Builder) notifyProgress(msg string) {
	if b.notify == nil {
		return
	}
	b.notify(message.NewProgressNotification(b.messageID, b.progress, msg))
}

// sourcePathsFromSvPath returns svPath followed by every sibling .sv
// file in its directory, so the generator can feed the whole design's
// sources to the probe parser.
func sourcePathsFromSvPath(svPath string) ([]string, error) {
	info, err := os.Stat(svPath)
	if err != nil || info.IsDir() {
		return nil, ErrSvFilePathNotFound
	}

	paths := []string{svPath}
	dir := filepath.Dir(svPath)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		full := filepath.Join(dir, entry.Name())
		if filepath.Ext(full) == ".sv" && full != svPath {
			paths = append(paths, full)
		}
	}
	return paths, nil
}
