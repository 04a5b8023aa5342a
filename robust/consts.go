package robust

const (
	// (q75 - q25) / 1.349 estimates the standard deviation of normal data
	IQRNormalizer = 1.349

	LowerQuartile = 0.25
	UpperQuartile = 0.75
)
