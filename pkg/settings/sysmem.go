package settings

import (
	"strconv"
	"sync"

	"github.com/shirou/gopsutil/v3/mem"
)

// RAM caps per architecture, in MiB.
const (
	MaxRAM32BitMB = 1536
	MaxRAM64BitMB = 4096
)

var (
	systemMaxOnce sync.Once
	systemMaxRAM  uint32
)

// SystemMaxRAMMB returns the largest RAM value the launcher will hand to the
// client: physical memory capped at 1536 MiB on 32-bit and 4096 MiB on 64-bit.
func SystemMaxRAMMB() uint32 {
	systemMaxOnce.Do(func() {
		systemMaxRAM = computeMaxRAM(physicalRAMMB(), strconv.IntSize)
	})
	return systemMaxRAM
}

func physicalRAMMB() uint64 {
	vm, err := mem.VirtualMemory()
	if err != nil || vm == nil {
		return 0
	}
	return vm.Total / (1024 * 1024)
}

// computeMaxRAM applies the architecture cap; unknown physical memory (0) uses the cap alone.
func computeMaxRAM(physicalMB uint64, bits int) uint32 {
	limit := uint64(MaxRAM64BitMB)
	if bits == 32 {
		limit = MaxRAM32BitMB
	}
	if physicalMB > 0 && physicalMB < limit {
		limit = physicalMB
	}
	return uint32(limit)
}
