package outlier

const (
	DefaultThresholdFactor = 3.0
	DefaultMinWindowSize   = 5
	DefaultMaxIterations   = 100
	DefaultFrameSpan       = 8

	// quartiles of fewer points say nothing about spread
	MinAllowedWindowSize = 3

	statsCacheName  = "robust_stats"
	resultCacheName = "detect_result"
)
