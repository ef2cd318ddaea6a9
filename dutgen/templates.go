package dutgen

import (
	"strings"
	"text/template"

	"github.com/sarchlab/oombak/probe"
)

var templateFuncs = template.FuncMap{
	"sub": func(a, b int) int { return a - b },
}

func mustParse(name, src string) *template.Template {
	return template.Must(template.New(name).Funcs(templateFuncs).Parse(src))
}

var (
	dutCppTemplate     = mustParse("dut.cpp", dutCppSrc)
	dutHppTemplate     = mustParse("dut.hpp", dutHppSrc)
	gettersCppTemplate = mustParse("getters.cpp", gettersCppSrc)
	settersCppTemplate = mustParse("setters.cpp", settersCppSrc)
	signalsCppTemplate = mustParse("signals.cpp", signalsCppSrc)
	ombakDutSvTemplate = mustParse("ombak_dut.sv", ombakDutSvSrc)
	cmakeListsTemplate = mustParse("CMakeLists.txt", cmakeListsSrc)
)

// dutBindCpp and dutBindH are the fixed front-end shim: they declare the
// oombak_query/run/set/get C ABI entry points over the generated Dut
// class and never vary with the probed point set.
const dutBindCpp = `#include "dut_bind.h"

#include <cstring>

#include "dut.hpp"

extern "C" {

oombak_sig_t *oombak_query(Dut *self, uint64_t *n) {
  return self->query(n);
}

int oombak_run(Dut *self, uint64_t duration, uint64_t *current_time) {
  return self->run(duration, current_time);
}

int oombak_set(Dut *self, const char *name, const uint32_t *words, uint64_t num_words) {
  return self->set(name, words, num_words);
}

uint32_t *oombak_get(Dut *self, const char *name, uint64_t *n_bits) {
  return self->get(name, n_bits);
}

}
`

const dutBindH = `#pragma once

#include <cstdint>

typedef struct {
  const char *name;
  uint64_t width;
  uint8_t gettable;
  uint8_t settable;
} oombak_sig_t;

extern "C" {

oombak_sig_t *oombak_query(void *self, uint64_t *n);
int oombak_run(void *self, uint64_t duration, uint64_t *current_time);
int oombak_set(void *self, const char *name, const uint32_t *words, uint64_t num_words);
uint32_t *oombak_get(void *self, const char *name, uint64_t *n_bits);

}
`

const dutCppSrc = `#include "dut.hpp"

using namespace std;

Dut::Dut() {
{{- range .Settable}}
  signalMapping["{{.Path}}"].set = set_{{.DotReplacedPath}};
{{- end}}
{{- range .Gettable}}
  signalMapping["{{.Path}}"].get = get_{{.DotReplacedPath}};
{{- end}}
}
`

const dutHppSrc = `#pragma once

#include <cstdint>
#include <string>
#include <utility>
#include <vector>

using namespace std;

class Dut {
public:
  Dut();
  oombak_sig_t *query(uint64_t *n);
  int run(uint64_t duration, uint64_t *current_time);
  int set(const string &name, const uint32_t *words, uint64_t num_words);
  uint32_t *get(const string &name, uint64_t *n_bits);

{{range .Settable}}  static bool set_{{.DotReplacedPath}}(Dut *self, const vector<uint32_t> &words);
{{end -}}
{{range .Gettable}}  static pair<vector<uint32_t>, uint64_t> get_{{.DotReplacedPath}}(Dut *self);
{{end -}}
};
`

const gettersCppSrc = `#include "dut.hpp"

{{range .SingleBitGettable}}
pair<vector<uint32_t>, uint64_t> Dut::get_{{.DotReplacedPath}}(Dut *self) {
  svBit out;
  self->vDut->v_sample_get_{{.DotReplacedPath}}(&out);
  return {vector<uint32_t>(1, out), 1};
}
{{end -}}
{{range .MultiBitGettable}}
pair<vector<uint32_t>, uint64_t> Dut::get_{{.DotReplacedPath}}(Dut *self) {
  int nBits = {{.BitWidth}};
  svBitVecVal out[nBits / 32 + 1];
  self->vDut->v_sample_get_{{.DotReplacedPath}}(out);
  return {Dut::get_words_vec_from(out, nBits), (uint64_t)nBits};
}
{{end -}}
`

const settersCppSrc = `#include "dut.hpp"

{{range .SingleBitSettable}}
bool Dut::set_{{.DotReplacedPath}}(Dut *self, const vector<uint32_t> &words) {
  if (words.size() > 0) {
    self->vDut->v_sample_set_{{.DotReplacedPath}}(words[0]);
    return true;
  }
  return false;
}
{{end -}}
{{range .MultiBitSettable}}
bool Dut::set_{{.DotReplacedPath}}(Dut *self, const vector<uint32_t> &words) {
  int nBits = {{.BitWidth}};
  svBitVecVal in[nBits / 32];
  if (Dut::set_from_words_vec(in, words, nBits)) {
    self->vDut->v_sample_set_{{.DotReplacedPath}}(in);
    return true;
  }
  return false;
}
{{end -}}
`

const signalsCppSrc = `#include "dut.hpp"

oombak_sig_t signals[{{len .Points}}] = {
{{range .Points}}    { "{{.Path}}", {{.BitWidth}}, {{if .IsGettable}}1{{else}}0{{end}}, {{if .IsSettable}}1{{else}}0{{end}} },
{{end -}}
};
`

const ombakDutSvSrc = `module ombak_dut;

{{range .TopLevelPorts}}logic {{if gt .BitWidth 1}}[{{sub .BitWidth 1}}:0] {{end}}{{.Path}};
{{end -}}

{{.TopModuleName}} {{.TopModuleName}} (
{{range $i, $p := .TopLevelPorts}}{{if $i}},
{{end}}  .{{$p.Path}}({{$p.Path}}){{end}}
);

{{range .SingleBitSettable -}}
export "DPI-C" function v_sample_set_{{.DotReplacedPath}};
function automatic void v_sample_set_{{.DotReplacedPath}}(input bit _in);
  {{.Path}} = _in;
endfunction
{{end -}}
{{range .MultiBitSettable -}}
export "DPI-C" function v_sample_set_{{.DotReplacedPath}};
function automatic void v_sample_set_{{.DotReplacedPath}}(input bit [{{sub .BitWidth 1}}:0] _in);
  {{.Path}} = _in;
endfunction
{{end -}}
{{range .SingleBitGettable -}}
export "DPI-C" function v_sample_get_{{.DotReplacedPath}};
function automatic void v_sample_get_{{.DotReplacedPath}}(output bit _out);
  _out = {{.Path}};
endfunction
{{end -}}
{{range .MultiBitGettable -}}
export "DPI-C" function v_sample_get_{{.DotReplacedPath}};
function automatic void v_sample_get_{{.DotReplacedPath}}(output bit [{{sub .BitWidth 1}}:0] _out);
  _out = {{.Path}};
endfunction
{{end -}}
endmodule
`

const cmakeListsSrc = `cmake_minimum_required(VERSION 3.16)
project(oombak_dut)

set(CMAKE_CXX_STANDARD 17)

include_directories({{.SourceDir}})

add_library(dut SHARED
  dut.cpp
  dut_bind.cpp
  getters.cpp
  setters.cpp
  signals.cpp
)

set_target_properties(dut PROPERTIES OUTPUT_NAME "dut")
`

// templateData is the view over a Probe that every templated file
// renders from.
type templateData struct {
	Points            []probe.ProbePoint
	Settable          []probe.ProbePoint
	Gettable          []probe.ProbePoint
	SingleBitSettable []probe.ProbePoint
	MultiBitSettable  []probe.ProbePoint
	SingleBitGettable []probe.ProbePoint
	MultiBitGettable  []probe.ProbePoint
	TopLevelPorts     []probe.ProbePoint
	TopModuleName     string
	SourceDir         string
}

func newTemplateData(p *probe.Probe, sourceDir string) templateData {
	return templateData{
		Points:            p.GetProbedPoints(),
		Settable:          p.GetSettablePoints(),
		Gettable:          p.GetGettablePoints(),
		SingleBitSettable: p.GetSingleBitSettablePoints(),
		MultiBitSettable:  p.GetMultibitSettablePoints(),
		SingleBitGettable: p.GetSingleBitGettablePoints(),
		MultiBitGettable:  p.GetMultibitGettablePoints(),
		TopLevelPorts:     p.GetTopLevelPorts(),
		TopModuleName:     p.TopLevelModuleName(),
		SourceDir:         sourceDir,
	}
}

func render(t *template.Template, data templateData) (string, error) {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
