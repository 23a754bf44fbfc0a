package media

import (
	"runtime"

	"github.com/shirou/gopsutil/v3/mem"
)

// frameBytes1080 approximates one decoded 1920x1080 RGBA frame.
const frameBytes1080 = 1920 * 1080 * 4

// PreloadConcurrency picks how many assets to decode in parallel during a
// render pass. Decoding is memory-hungry, so the limit follows available
// memory rather than raw CPU count, capped at NumCPU.
func PreloadConcurrency() int {
	limit := runtime.NumCPU()
	if limit < 1 {
		limit = 1
	}

	vm, err := mem.VirtualMemory()
	if err != nil || vm == nil {
		return limit
	}

	// Budget a quarter of available memory; assume ~8 frames of working set
	// per in-flight decode.
	byMem := int(vm.Available / 4 / (frameBytes1080 * 8))
	if byMem < 1 {
		byMem = 1
	}
	if byMem < limit {
		return byMem
	}
	return limit
}
