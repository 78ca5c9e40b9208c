//go:build cgo

package ffi

// Counters returns the total allocations and deallocations made by the package.
func Counters() (allocs, frees int64) {
	return allocations.Load(), deallocations.Load()
}
