// Command libastro builds the C shared library used by desktop clients to decode
// config record notifications:
//
//	go build -buildmode=c-shared -o libastro.so ./cmd/libastro
//
// decode_camera_config returns NULL on NULL/empty input or undecodable bytes.
// Every non-NULL result must be passed to free_camera_config exactly once and
// its fields must never be freed individually.
package main

/*
#include <stdbool.h>
#include <stddef.h>
#include <stdint.h>

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
	"unsafe"

	"github.com/srg/astrod/internal/ffi"
)

//export decode_camera_config
func decode_camera_config(data *C.uint8_t, length C.size_t) *C.camera_config_t {
	h := ffi.Decode(unsafe.Pointer(data), int(length))
	return (*C.camera_config_t)(h.Pointer())
}

//export free_camera_config
func free_camera_config(cfg *C.camera_config_t) {
	ffi.ReleasePointer(unsafe.Pointer(cfg))
}

func main() {}
