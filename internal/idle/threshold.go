// Package idle holds the suspend decision logic: the threshold arithmetic
// and the hysteresis counter that accumulates consecutive low-load verdicts.
package idle

// ComputeThreshold derives the absolute load threshold from the configured
// ratio and the physical core count. Computed once at startup; immutable
// for the process lifetime.
func ComputeThreshold(ratio float64, physicalCores int) float64 {
	return ratio * float64(physicalCores)
}

// IsLow reports whether a load sample counts as low load. The comparison is
// strictly less-than: a sample equal to the threshold is NOT low, the load
// must drop clearly below the threshold to count.
func IsLow(sample, threshold float64) bool {
	return sample < threshold
}
