package model

import (
	"fmt"
	"time"
)

type TimeValue struct {
	Time  time.Time
	Value float64
}

func (v *TimeValue) Before(timeValue TimeValue) bool {
	return v.Time.Before(timeValue.Time)
}

type TimeSeries struct {
	// Labels contains label key -> label value, like "station": "mauna-loa"
	Labels map[string]string
	Values []TimeValue
}

func (s *TimeSeries) DebugString() string {
	res := fmt.Sprintf("labels: %+v, valueCount: %+v", s.Labels, len(s.Values))
	return res
}

func (s *TimeSeries) IsEmpty() bool {
	if s == nil {
		return true
	}
	return len(s.Values) == 0
}

// FloatValues copies the sample values out of the series, in order.
func (s *TimeSeries) FloatValues() []float64 {
	if s == nil {
		return nil
	}
	res := make([]float64, len(s.Values))
	for i, v := range s.Values {
		res[i] = v.Value
	}
	return res
}
