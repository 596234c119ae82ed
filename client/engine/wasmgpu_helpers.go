//go:build js && wasm

package engine

import (
	"runtime"
	"syscall/js"
	"unsafe"
)

var uint8ArrayCtor = js.Global().Get("Uint8Array")

// sliceAsBytesSlice reinterprets the provided slice of data as a []byte.
// See https://github.com/golang/go/issues/32402.
func sliceAsBytesSlice[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	bytePtr := (*byte)(unsafe.Pointer(&data[0]))
	byteLen := len(data) * int(unsafe.Sizeof(zero))
	bytes := unsafe.Slice(bytePtr, byteLen)
	runtime.KeepAlive(data)
	return bytes
}
