package dut

/*
#cgo LDFLAGS: -ldl
#include <dlfcn.h>
#include <stdint.h>
#include <stdlib.h>
#include <string.h>

typedef struct {
	const char *name;
	uint64_t width;
	uint8_t get;
	uint8_t set;
} oombak_sig_t;

typedef oombak_sig_t *(*oombak_query_fn)(uint64_t *n);
typedef int (*oombak_run_fn)(uint64_t duration, uint64_t *current_time);
typedef int (*oombak_set_fn)(const char *name, const uint32_t *words, uint64_t num_words);
typedef uint32_t *(*oombak_get_fn)(const char *name, uint64_t *n_bits);

static void *oombak_dlopen(const char *path) {
	dlerror();
	return dlopen(path, RTLD_NOW | RTLD_LOCAL);
}

static void *oombak_dlsym(void *handle, const char *name) {
	dlerror();
	return dlsym(handle, name);
}

static oombak_sig_t *oombak_call_query(void *fn, uint64_t *n) {
	return ((oombak_query_fn)fn)(n);
}

static int oombak_call_run(void *fn, uint64_t duration, uint64_t *current_time) {
	return ((oombak_run_fn)fn)(duration, current_time);
}

static int oombak_call_set(void *fn, const char *name, const uint32_t *words, uint64_t num_words) {
	return ((oombak_set_fn)fn)(name, words, num_words);
}

static uint32_t *oombak_call_get(void *fn, const char *name, uint64_t *n_bits) {
	return ((oombak_get_fn)fn)(name, n_bits);
}

static oombak_sig_t *oombak_sig_at(oombak_sig_t *base, uint64_t i) {
	return &base[i];
}
*/
import "C"

import (
	"fmt"
	"unsafe"
)

// rawSignal is the Go-side mirror of one oombak_sig_t entry, decoded
// out of C memory before it crosses back into the rest of the package.
type rawSignal struct {
	Name  string
	Width uint64
	Get   bool
	Set   bool
}

// dutLib is a dlopen'd shared object exposing the four-symbol oombak C
// ABI. The library's path is only known at generation time, so it is
// loaded with dlopen/dlsym rather than a link-time #cgo directive.
type dutLib struct {
	handle  unsafe.Pointer
	queryFn unsafe.Pointer
	runFn   unsafe.Pointer
	setFn   unsafe.Pointer
	getFn   unsafe.Pointer
	libPath string
}

func newDutLib(libPath string) (*dutLib, error) {
	cPath := C.CString(libPath)
	defer C.free(unsafe.Pointer(cPath))

	handle := C.oombak_dlopen(cPath)
	if handle == nil {
		return nil, fmt.Errorf("dlopen %s: %w", libPath, ErrDlopen)
	}

	lib := &dutLib{handle: handle, libPath: libPath}
	for _, sym := range []struct {
		name string
		dst  *unsafe.Pointer
	}{
		{"oombak_query", &lib.queryFn},
		{"oombak_run", &lib.runFn},
		{"oombak_set", &lib.setFn},
		{"oombak_get", &lib.getFn},
	} {
		cName := C.CString(sym.name)
		ptr := C.oombak_dlsym(handle, cName)
		C.free(unsafe.Pointer(cName))
		if ptr == nil {
			C.dlclose(handle)
			return nil, fmt.Errorf("dlsym %s in %s: %w", sym.name, libPath, ErrDlsym)
		}
		*sym.dst = ptr
	}
	return lib, nil
}

func (l *dutLib) close() error {
	if l.handle == nil {
		return nil
	}
	if C.dlclose(l.handle) != 0 {
		return ErrDlclose
	}
	l.handle = nil
	return nil
}

// query returns the DUT's static signal table.
func (l *dutLib) query() []rawSignal {
	var n C.uint64_t
	base := C.oombak_call_query(l.queryFn, &n)
	signals := make([]rawSignal, 0, int(n))
	for i := C.uint64_t(0); i < n; i++ {
		entry := C.oombak_sig_at(base, i)
		signals = append(signals, rawSignal{
			Name:  C.GoString(entry.name),
			Width: uint64(entry.width),
			Get:   entry.get == 1,
			Set:   entry.set == 1,
		})
	}
	return signals
}

// run advances the simulation by duration time steps and returns the
// simulator's current time, or an error if the call did not report
// success.
func (l *dutLib) run(duration uint64) (uint64, error) {
	var currentTime C.uint64_t
	if rc := C.oombak_call_run(l.runFn, C.uint64_t(duration), &currentTime); rc != 0 {
		return 0, ErrRun
	}
	return uint64(currentTime), nil
}

// set drives the named signal from a little-endian, LSB-first word
// array.
func (l *dutLib) set(name string, words []uint32) error {
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))

	var wordsPtr *C.uint32_t
	if len(words) > 0 {
		wordsPtr = (*C.uint32_t)(unsafe.Pointer(&words[0]))
	}
	if rc := C.oombak_call_set(l.setFn, cName, wordsPtr, C.uint64_t(len(words))); rc != 0 {
		return ErrSet
	}
	return nil
}

// get samples the named signal, returning its words and exact bit
// width.
func (l *dutLib) get(name string) ([]uint32, uint64, error) {
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))

	var nBits C.uint64_t
	wordsPtr := C.oombak_call_get(l.getFn, cName, &nBits)
	if wordsPtr == nil {
		return nil, 0, ErrGet
	}
	numWords := (uint64(nBits) + 31) / 32
	if numWords == 0 {
		return nil, uint64(nBits), nil
	}
	words := make([]uint32, numWords)
	src := unsafe.Slice((*uint32)(unsafe.Pointer(wordsPtr)), numWords)
	copy(words, src)
	return words, uint64(nBits), nil
}
