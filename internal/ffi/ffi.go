//go:build cgo

// Package ffi hands decoded config records to C callers.
//
// A record crosses the boundary as a camera_config_t allocated with the C
// allocator. Every string is an independently owned, NUL-terminated buffer and
// the choices are an owned array of such buffers. Handles are produced only by
// Decode and destroyed only by Release.
package ffi

/*
#include <stdbool.h>
#include <stdlib.h>

typedef struct camera_config {
	char   *id;
	char   *value;
	char  **choices;
	size_t  choices_len;
	bool    readonly;
} camera_config_t;
*/
import "C"

import (
	"sync/atomic"
	"unsafe"

	"github.com/srg/astrod/internal/record"
	"github.com/srg/astrod/internal/wire"
)

var (
	allocations   atomic.Int64
	deallocations atomic.Int64
)

func cmalloc(size uintptr) unsafe.Pointer {
	p := C.malloc(C.size_t(size))
	if p == nil {
		panic("ffi: out of memory")
	}
	allocations.Add(1)
	return p
}

func cfree(p unsafe.Pointer) {
	if p == nil {
		return
	}
	C.free(p)
	deallocations.Add(1)
}

// cstring copies s into a NUL-terminated buffer owned by the C allocator.
// Interior NUL bytes terminate the C view of the string early.
func cstring(s string) *C.char {
	p := cmalloc(uintptr(len(s)) + 1)
	buf := unsafe.Slice((*byte)(p), len(s)+1)
	copy(buf, s)
	buf[len(s)] = 0
	return (*C.char)(p)
}

// Handle owns one camera_config_t. The zero Handle is the null handle.
type Handle struct {
	ptr *C.camera_config_t
}

// MaxInputLen is the largest payload Encode can produce. Longer inputs are
// rejected before the buffer is touched.
var MaxInputLen = wire.MaxEncodedLen()

// Decode decodes len bytes at data and materializes the record as an owned C structure.
// It returns the null handle on nil, empty or oversized input and on any decode failure.
func Decode(data unsafe.Pointer, length int) Handle {
	if data == nil || length <= 0 || length > MaxInputLen {
		return Handle{}
	}
	return DecodeBytes(C.GoBytes(data, C.int(length)))
}

// DecodeBytes is Decode for Go-owned input.
func DecodeBytes(data []byte) Handle {
	if len(data) == 0 {
		return Handle{}
	}
	cfg, err := wire.DecodeConfig(data)
	if err != nil {
		return Handle{}
	}
	return Handle{ptr: materialize(cfg)}
}

// materialize only runs after a successful decode, so it cannot fail halfway
// and leave buffers behind.
func materialize(r *record.ConfigRecord) *C.camera_config_t {
	cfg := (*C.camera_config_t)(cmalloc(unsafe.Sizeof(C.camera_config_t{})))
	cfg.id = cstring(r.ID)
	cfg.value = cstring(r.Value)
	cfg.choices_len = C.size_t(len(r.Choices))
	cfg.readonly = C.bool(r.Readonly)
	cfg.choices = nil

	if n := len(r.Choices); n > 0 {
		arr := (**C.char)(cmalloc(uintptr(n) * unsafe.Sizeof((*C.char)(nil))))
		choices := unsafe.Slice(arr, n)
		for i, c := range r.Choices {
			choices[i] = cstring(c)
		}
		cfg.choices = arr
	}
	return cfg
}

// Release frees the id buffer, the value buffer, each choice buffer, the choice
// array and finally the structure. Releasing the null handle is a no-op, and a
// released Handle becomes the null handle.
func (h *Handle) Release() {
	if h == nil || h.ptr == nil {
		return
	}
	release(h.ptr)
	h.ptr = nil
}

func release(cfg *C.camera_config_t) {
	cfree(unsafe.Pointer(cfg.id))
	cfree(unsafe.Pointer(cfg.value))
	if cfg.choices != nil {
		for _, c := range unsafe.Slice(cfg.choices, int(cfg.choices_len)) {
			cfree(unsafe.Pointer(c))
		}
		cfree(unsafe.Pointer(cfg.choices))
	}
	cfree(unsafe.Pointer(cfg))
}

// IsNull reports whether h holds no structure.
func (h Handle) IsNull() bool {
	return h.ptr == nil
}

// Pointer exposes the structure for return across the C ABI. Ownership stays
// with the handle contract: the foreign side must hand the pointer back to
// ReleasePointer exactly once.
func (h Handle) Pointer() unsafe.Pointer {
	return unsafe.Pointer(h.ptr)
}

// ReleasePointer releases a pointer previously obtained from Handle.Pointer.
func ReleasePointer(p unsafe.Pointer) {
	h := Handle{ptr: (*C.camera_config_t)(p)}
	h.Release()
}

// Record copies the structure back into Go memory. The null handle yields nil.
func (h Handle) Record() *record.ConfigRecord {
	if h.ptr == nil {
		return nil
	}
	r := &record.ConfigRecord{
		ID:       C.GoString(h.ptr.id),
		Value:    C.GoString(h.ptr.value),
		Readonly: bool(h.ptr.readonly),
		Choices:  make([]string, 0, int(h.ptr.choices_len)),
	}
	if h.ptr.choices != nil {
		for _, c := range unsafe.Slice(h.ptr.choices, int(h.ptr.choices_len)) {
			r.Choices = append(r.Choices, C.GoString(c))
		}
	}
	return r
}

// Outstanding reports allocations not yet matched by a deallocation.
func Outstanding() int64 {
	return allocations.Load() - deallocations.Load()
}
