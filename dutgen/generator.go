package dutgen

import (
	"os"
	"path/filepath"
	"text/template"

	"github.com/sarchlab/oombak/probe"
)

// generate lays out a self-contained CMake project for p's probed
// points under a freshly created temporary directory and returns its
// path. The caller owns the directory and must remove it once done.
func generate(svPath string, p *probe.Probe) (dir string, err error) {
	dir, err = os.MkdirTemp("", "oombak-dutgen-*")
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			os.RemoveAll(dir)
		}
	}()

	if err = checkIdentifierCollisions(p); err != nil {
		return "", err
	}

	sourceDir := filepath.Dir(svPath)
	data := newTemplateData(p, sourceDir)

	if err = putFile(dir, "dut_bind.cpp", dutBindCpp); err != nil {
		return "", err
	}
	if err = putFile(dir, "dut_bind.h", dutBindH); err != nil {
		return "", err
	}
	if err = putTemplate(dir, "dut.cpp", dutCppTemplate, data); err != nil {
		return "", err
	}
	if err = putTemplate(dir, "dut.hpp", dutHppTemplate, data); err != nil {
		return "", err
	}
	if err = putTemplate(dir, "getters.cpp", gettersCppTemplate, data); err != nil {
		return "", err
	}
	if err = putTemplate(dir, "setters.cpp", settersCppTemplate, data); err != nil {
		return "", err
	}
	if err = putTemplate(dir, "signals.cpp", signalsCppTemplate, data); err != nil {
		return "", err
	}
	if err = putTemplate(dir, "ombak_dut.sv", ombakDutSvTemplate, data); err != nil {
		return "", err
	}
	if err = putTemplate(dir, "CMakeLists.txt", cmakeListsTemplate, data); err != nil {
		return "", err
	}
	return dir, nil
}

// checkIdentifierCollisions fails generation if two distinct probed
// points dot-replace to the same identifier (e.g. "a.b" and "a_DOT_b"
// both become "a_DOT_b"), which would otherwise emit duplicate
// C++ symbol names silently.
func checkIdentifierCollisions(p *probe.Probe) error {
	seen := make(map[string]string, len(p.GetGettablePoints()))
	for _, pt := range p.GetGettablePoints() {
		ident := pt.DotReplacedPath()
		if first, ok := seen[ident]; ok {
			return &ErrIdentifierCollision{Identifier: ident, First: first, Second: pt.Path}
		}
		seen[ident] = pt.Path
	}
	return nil
}

func putFile(dir, name, content string) error {
	return os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644)
}

func putTemplate(dir, name string, t *template.Template, data templateData) error {
	content, err := render(t, data)
	if err != nil {
		return err
	}
	return putFile(dir, name, content)
}
