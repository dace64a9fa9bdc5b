// Package sysmem probes the platform for its free-memory estimate.
// The cache uses it only to sanity-check Resize requests.
package sysmem

import "github.com/shirou/gopsutil/v3/mem"

// Available returns the current estimate of memory available for new
// allocations, in bytes, without the system starting to swap.
func Available() (uint64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}
	return vm.Available, nil
}
