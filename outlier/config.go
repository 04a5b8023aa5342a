package outlier

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"github.com/uyouii/robust-outliers/common"
	"github.com/uyouii/robust-outliers/robust"
)

// Scope decides which points form the surrounding data of a point.
type Scope int

const (
	// ScopeGlobal uses every non flagged point of the series.
	ScopeGlobal Scope = 0
	// ScopeFrame uses the non flagged points within FrameSpan positions,
	// shifted inwards at both ends of the series to keep 2*FrameSpan+1 points.
	ScopeFrame Scope = 1
)

func (s Scope) String() string {
	switch s {
	case ScopeGlobal:
		return "global"
	case ScopeFrame:
		return "frame"
	}
	return fmt.Sprintf("scope(%d)", int(s))
}

func (s Scope) MarshalText() ([]byte, error) {
	if s != ScopeGlobal && s != ScopeFrame {
		return nil, errors.Wrapf(common.ErrorInvalidParameter, "unknown scope %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Scope) UnmarshalText(text []byte) error {
	switch string(text) {
	case "global", "":
		*s = ScopeGlobal
	case "frame":
		*s = ScopeFrame
	default:
		return errors.Wrapf(common.ErrorInvalidParameter, "unknown scope %q", string(text))
	}
	return nil
}

type Config struct {
	// a point is flagged when |value - median| > ThresholdFactor * iqr scale
	ThresholdFactor float64 `json:"threshold_factor" yaml:"threshold_factor"`
	MinWindowSize   int     `json:"min_window_size" yaml:"min_window_size"`
	// 0 means DefaultMaxIterations
	MaxIterations int           `json:"max_iterations,omitempty" yaml:"max_iterations,omitempty"`
	Scope         Scope         `json:"scope" yaml:"scope"`
	FrameSpan     int           `json:"frame_span,omitempty" yaml:"frame_span,omitempty"`
	SkipNonFinite bool          `json:"skip_non_finite,omitempty" yaml:"skip_non_finite,omitempty"`
	Method        robust.Method `json:"quantile_method" yaml:"quantile_method"`
}

func DefaultConfig() Config {
	return Config{
		ThresholdFactor: DefaultThresholdFactor,
		MinWindowSize:   DefaultMinWindowSize,
		MaxIterations:   DefaultMaxIterations,
		Scope:           ScopeGlobal,
		FrameSpan:       DefaultFrameSpan,
		Method:          robust.MethodLinear,
	}
}

func (c Config) Validate() error {
	if math.IsNaN(c.ThresholdFactor) || math.IsInf(c.ThresholdFactor, 0) || c.ThresholdFactor <= 0 {
		return errors.Wrapf(common.ErrorInvalidParameter, "threshold factor must be positive, got %v", c.ThresholdFactor)
	}
	if c.MinWindowSize < MinAllowedWindowSize {
		return errors.Wrapf(common.ErrorInvalidParameter, "min window size must be at least %d, got %d",
			MinAllowedWindowSize, c.MinWindowSize)
	}
	if c.MaxIterations < 0 {
		return errors.Wrapf(common.ErrorInvalidParameter, "max iterations must not be negative, got %d", c.MaxIterations)
	}
	switch c.Scope {
	case ScopeGlobal:
	case ScopeFrame:
		if c.FrameSpan < 1 {
			return errors.Wrapf(common.ErrorInvalidParameter, "frame span must be positive, got %d", c.FrameSpan)
		}
	default:
		return errors.Wrapf(common.ErrorInvalidParameter, "unknown scope %d", int(c.Scope))
	}
	if !c.Method.Valid() {
		return errors.Wrapf(common.ErrorInvalidParameter, "unknown quantile method %d", int(c.Method))
	}
	return nil
}

// validateFor checks the parameters that depend on the series length.
func (c Config) validateFor(n int) error {
	if c.MinWindowSize > n {
		return errors.Wrapf(common.ErrorInvalidParameter, "min window size %d exceeds series length %d",
			c.MinWindowSize, n)
	}
	return nil
}

func (c Config) maxIterations() int {
	if c.MaxIterations == 0 {
		return DefaultMaxIterations
	}
	return c.MaxIterations
}

// minPoints is the number of non flagged points a window needs before its
// point is judged.
func (c Config) minPoints() int {
	if c.Scope == ScopeFrame && 2*c.FrameSpan+1 < c.MinWindowSize {
		return 2*c.FrameSpan + 1
	}
	return c.MinWindowSize
}
