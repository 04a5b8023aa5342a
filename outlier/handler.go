package outlier

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/uyouii/robust-outliers/common"
	"github.com/uyouii/robust-outliers/model"
	"github.com/uyouii/robust-outliers/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type SeriesOutliers struct {
	Series   *model.TimeSeries
	Outliers []model.TimeValue
	Result   *Result
	// set when the series itself was rejected, other series still run
	Err error
}

// the handler runs one detector over many labelled series,
// every series is independent but they all share the detector caches,
// so overlapping data across requests is only computed once

type Handler struct {
	detector    *Detector
	parallelism int
}

func NewHandler(config Config, parallelism int, opts ...Option) (*Handler, error) {
	detector, err := NewDetector(config, opts...)
	if err != nil {
		return nil, err
	}
	if parallelism <= 0 {
		parallelism = 1
	}
	return &Handler{
		detector:    detector,
		parallelism: parallelism,
	}, nil
}

func (h *Handler) Detector() *Detector {
	return h.detector
}

// HandleTimeSeries returns the flagged points of timeSeries in time order.
func (h *Handler) HandleTimeSeries(ctx context.Context, timeSeries *model.TimeSeries) ([]model.TimeValue, *Result, error) {
	logger := utils.GetLogger(ctx)

	if timeSeries.IsEmpty() {
		return nil, nil, errors.Wrap(common.ErrorInvalidInput, "empty time series")
	}

	result, err := h.detector.DetectTimeSeries(ctx, timeSeries)
	if err != nil {
		logger.Error("DetectTimeSeries failed", zap.Error(err), zap.String("series", timeSeries.DebugString()))
		return nil, nil, err
	}

	outliers := make([]model.TimeValue, 0, result.Flags.Count())
	for _, idx := range result.Flags.Indexes() {
		outliers = append(outliers, timeSeries.Values[idx])
	}

	if warning := result.Warning(); warning != nil {
		logger.Warn("detect stopped early", zap.Error(warning), zap.String("series", timeSeries.DebugString()))
	}
	logger.Info(fmt.Sprintf("found %v outliers", len(outliers)), zap.String("series", timeSeries.DebugString()))

	return outliers, result, nil
}

// HandleAll processes every series, at most parallelism at a time. Invalid
// series are reported in their SeriesOutliers, only cancellation and
// unexpected failures abort the batch.
func (h *Handler) HandleAll(ctx context.Context, series []*model.TimeSeries) ([]*SeriesOutliers, error) {
	logger := utils.GetLogger(ctx)

	res := make([]*SeriesOutliers, len(series))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(h.parallelism)

	for i, timeSeries := range series {
		i, timeSeries := i, timeSeries
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			outliers, result, err := h.HandleTimeSeries(groupCtx, timeSeries)
			if err != nil && !isRejection(err) {
				return err
			}
			res[i] = &SeriesOutliers{
				Series:   timeSeries,
				Outliers: outliers,
				Result:   result,
				Err:      err,
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		logger.Error("HandleAll failed", zap.Error(err), zap.Int("seriesCnt", len(series)))
		return nil, err
	}
	return res, nil
}

func isRejection(err error) bool {
	return errors.Is(err, common.ErrorInvalidInput) || errors.Is(err, common.ErrorInvalidParameter)
}
