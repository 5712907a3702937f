package stillframe

// KeepRate returns the fraction of processed frames that were emitted
// (0.0 to 1.0). Returns 0.0 before any frame has been processed.
func KeepRate(stats DecimatorStats) float64 {
	if stats.FramesIn == 0 {
		return 0.0
	}
	return float64(stats.FramesKept) / float64(stats.FramesIn)
}

// SuppressRate returns the fraction of processed frames that were dropped
// (0.0 to 1.0). Returns 0.0 before any frame has been processed.
func SuppressRate(stats DecimatorStats) float64 {
	if stats.FramesIn == 0 {
		return 0.0
	}
	return 1.0 - KeepRate(stats)
}
