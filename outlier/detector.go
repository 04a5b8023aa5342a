package outlier

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/uyouii/robust-outliers/common"
	"github.com/uyouii/robust-outliers/memo"
	"github.com/uyouii/robust-outliers/model"
	"github.com/uyouii/robust-outliers/robust"
	"github.com/uyouii/robust-outliers/utils"
	"go.uber.org/zap"
)

type StatsCache = memo.Cache[robust.StatsKey, model.RobustStats]
type ResultCache = memo.Cache[resultKey, Result]

type resultKey struct {
	fingerprint uint64
	length      int
	config      Config
}

func (k resultKey) String() string {
	return fmt.Sprintf("%016x:%d:%+v", k.fingerprint, k.length, k.config)
}

// NewStatsCache returns a stats cache for WithStatsCache, bounded to lruSize
// entries when lruSize > 0.
func NewStatsCache(lruSize int) (*StatsCache, error) {
	if lruSize > 0 {
		return memo.NewLRU[robust.StatsKey, model.RobustStats](statsCacheName, lruSize)
	}
	return memo.New[robust.StatsKey, model.RobustStats](statsCacheName, nil), nil
}

func NewResultCache(lruSize int) (*ResultCache, error) {
	if lruSize > 0 {
		return memo.NewLRU[resultKey, Result](resultCacheName, lruSize)
	}
	return memo.New[resultKey, Result](resultCacheName, nil), nil
}

type Option func(*Detector)

// WithStatsCache shares a robust stats cache, e.g. between detectors that
// see overlapping data.
func WithStatsCache(cache *StatsCache) Option {
	return func(d *Detector) {
		if cache != nil {
			d.stats = cache
		}
	}
}

func WithResultCache(cache *ResultCache) Option {
	return func(d *Detector) {
		if cache != nil {
			d.results = cache
		}
	}
}

// WithLogger overrides the context logger.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Detector) {
		d.logger = logger
	}
}

// Detector flags points that lie too far from the median of their
// surrounding data, repeating the scan without the flagged points until no
// new point is flagged. It is safe for concurrent use.
type Detector struct {
	config  Config
	stats   *StatsCache
	results *ResultCache
	logger  *zap.Logger
}

func NewDetector(config Config, opts ...Option) (*Detector, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	d := &Detector{
		config: config,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.stats == nil {
		d.stats = memo.New[robust.StatsKey, model.RobustStats](statsCacheName, nil)
	}
	if d.results == nil {
		d.results = memo.New[resultKey, Result](resultCacheName, nil)
	}
	return d, nil
}

// Detect runs a one off detection with the default config.
func Detect(ctx context.Context, values []float64, thresholdFactor float64, minWindowSize int) (*Result, error) {
	config := DefaultConfig()
	config.ThresholdFactor = thresholdFactor
	config.MinWindowSize = minWindowSize

	d, err := NewDetector(config)
	if err != nil {
		return nil, err
	}
	return d.Detect(ctx, values)
}

func (d *Detector) Config() Config {
	return d.config
}

func (d *Detector) getLogger(ctx context.Context) *zap.Logger {
	if d.logger != nil {
		return d.logger
	}
	return utils.GetLogger(ctx)
}

// Detect flags the outliers of values. values is not modified. A result
// that stopped early is still returned with a nil error, see Result.Warning.
func (d *Detector) Detect(ctx context.Context, values []float64) (*Result, error) {
	logger := d.getLogger(ctx)

	if err := d.validateInput(values); err != nil {
		logger.Error("invalid detect input", zap.Error(err), zap.Int("len", len(values)))
		return nil, err
	}

	key := resultKey{
		fingerprint: robust.SeriesFingerprint(values),
		length:      len(values),
		config:      d.config,
	}
	// the computation may be shared with concurrent callers, it stops only
	// when the context of the caller that started it is done
	res, err := d.results.GetOrComputeContext(ctx, key, func(ctx context.Context) (result Result, err error) {
		// recover here, a panic in a shared computation is not raised in the caller
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Detect recover panic error!", zap.Any("err", r),
					zap.String("panic info", utils.GetPanicInfo()), zap.Int("len", len(values)))
				result, err = Result{}, errors.Errorf("detect panic: %v", r)
			}
		}()
		return d.detect(ctx, values)
	})
	if err != nil {
		return nil, err
	}
	return res.clone(), nil
}

// DetectTimeSeries detects on the values of a time ordered series.
func (d *Detector) DetectTimeSeries(ctx context.Context, timeSeries *model.TimeSeries) (*Result, error) {
	if timeSeries.IsEmpty() {
		return nil, errors.Wrap(common.ErrorInvalidInput, "empty time series")
	}
	for i := 1; i < len(timeSeries.Values); i++ {
		if timeSeries.Values[i].Before(timeSeries.Values[i-1]) {
			return nil, errors.Wrapf(common.ErrorInvalidInput, "sample %d at %v is before the previous sample",
				i, timeSeries.Values[i].Time)
		}
	}
	return d.Detect(ctx, timeSeries.FloatValues())
}

func (d *Detector) validateInput(values []float64) error {
	if len(values) == 0 {
		return errors.Wrap(common.ErrorInvalidInput, "empty series")
	}
	if !d.config.SkipNonFinite {
		if idx := utils.FirstNonFinite(values); idx >= 0 {
			return errors.Wrapf(common.ErrorInvalidInput, "non finite value %v at index %d", values[idx], idx)
		}
	}
	return d.config.validateFor(len(values))
}

func (d *Detector) detect(ctx context.Context, values []float64) (Result, error) {
	logger := d.getLogger(ctx)

	n := len(values)
	flags := model.NewFlagSet(n)
	// flagged points plus skipped non finite ones
	excluded := model.NewFlagSet(n)
	remaining := 0
	for i, v := range values {
		if !utils.IsFinite(v) {
			excluded[i] = true
			continue
		}
		remaining++
	}

	res := Result{
		Flags:     flags,
		Remaining: remaining,
	}

	if remaining < d.config.MinWindowSize {
		res.Status = model.StatusInsufficientData
		logger.Info("too few finite points, skip detect", zap.Int("remaining", remaining),
			zap.Int("minWindowSize", d.config.MinWindowSize))
		return res, nil
	}

	maxIterations := d.config.maxIterations()
	for pass := 1; pass <= maxIterations; pass++ {
		if err := ctx.Err(); err != nil {
			return Result{}, errors.Wrapf(err, "detect canceled before pass %d", pass)
		}

		marked, err := d.scan(values, excluded)
		if err != nil {
			logger.Error("scan failed", zap.Error(err), zap.Int("pass", pass))
			return Result{}, err
		}
		res.Iterations = pass

		if len(marked) == 0 {
			res.Status = model.StatusConverged
			logger.Info("detect converged", zap.Int("iterations", pass),
				zap.Int("outliers", flags.Count()), zap.Int("len", n))
			return res, nil
		}

		for _, idx := range marked {
			flags[idx] = true
			excluded[idx] = true
		}
		remaining -= len(marked)
		res.Remaining = remaining

		if remaining < d.config.MinWindowSize {
			res.Status = model.StatusInsufficientData
			logger.Warn("not enough points left to continue", zap.Int("iterations", pass),
				zap.Int("remaining", remaining), zap.Int("minWindowSize", d.config.MinWindowSize))
			return res, nil
		}
	}

	res.Status = model.StatusNonConvergence
	logger.Warn("detect reached iteration limit", zap.Int("maxIterations", maxIterations),
		zap.Int("outliers", flags.Count()))
	return res, nil
}

// scan returns the points newly judged as outliers. Flags apply only after
// the whole pass, so every point of a pass sees the same surrounding data.
func (d *Detector) scan(values []float64, excluded model.FlagSet) ([]int, error) {
	n := len(values)
	minPoints := d.config.minPoints()
	marked := []int{}

	var (
		lastWindow model.Window
		lastKey    robust.StatsKey
		haveKey    bool
	)
	for i := 0; i < n; i++ {
		if excluded[i] {
			continue
		}

		window := d.config.windowFor(i, n)
		if !haveKey || window != lastWindow {
			lastKey = robust.NewStatsKey(values, window, excluded, d.config.Method)
			lastWindow, haveKey = window, true
		}
		if lastKey.Count < minPoints {
			continue
		}

		stats, err := d.statsFor(lastKey, values, excluded)
		if err != nil {
			return nil, err
		}

		if stats.Deviation(values[i]) > d.config.ThresholdFactor*stats.IQRScale {
			marked = append(marked, i)
		}
	}
	return marked, nil
}

// ComputeRobustStats returns the robust stats of the values inside window
// that are not excluded. Results are memoized by window, quantile method and
// the included values.
func (d *Detector) ComputeRobustStats(window model.Window, values []float64,
	excluded model.FlagSet) (model.RobustStats, error) {
	if !window.Valid(len(values)) {
		return model.RobustStats{}, errors.Wrapf(common.ErrorInvalidInput,
			"window %v out of series bounds %d", window, len(values))
	}
	key := robust.NewStatsKey(values, window, excluded, d.config.Method)
	if key.Count == 0 {
		return model.RobustStats{}, errors.Wrapf(common.ErrorInvalidInput, "window %v has no points", window)
	}
	return d.statsFor(key, values, excluded)
}

func (d *Detector) statsFor(key robust.StatsKey, values []float64, excluded model.FlagSet) (model.RobustStats, error) {
	return d.stats.GetOrCompute(key, func() (model.RobustStats, error) {
		return robust.Compute(robust.Collect(values, key.Window, excluded), key.Method)
	})
}

// Reset drops all memoized stats and results.
func (d *Detector) Reset() {
	d.stats.Reset()
	d.results.Reset()
}

func (d *Detector) CacheStats() []memo.Stats {
	return []memo.Stats{d.stats.Stats(), d.results.Stats()}
}

// Collector exports the detector caches to prometheus.
func (d *Detector) Collector(namespace string) *memo.Collector {
	return memo.NewCollector(namespace, d.stats, d.results)
}

func (d *Detector) StatsCache() *StatsCache {
	return d.stats
}
