package xsysinfo

import (
	"github.com/klauspost/cpuid/v2"
)

func HasCPUCaps(ids ...cpuid.FeatureID) bool {
	return cpuid.CPU.Supports(ids...)
}

func CPUPhysicalCores() int {
	if cpuid.CPU.PhysicalCores == 0 {
		return 1
	}
	return cpuid.CPU.PhysicalCores
}

// CPUSummary describes the host CPU for startup logs.
func CPUSummary() []any {
	return []any{
		"cpu", cpuid.CPU.BrandName,
		"cores", CPUPhysicalCores(),
		"avx2", HasCPUCaps(cpuid.AVX2),
		"avx512", HasCPUCaps(cpuid.AVX512F),
	}
}
