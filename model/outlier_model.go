package model

import "fmt"

// Window is an inclusive index range [Start, End] of a series.
type Window struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (w Window) Len() int {
	return w.End - w.Start + 1
}

func (w Window) Contains(i int) bool {
	return i >= w.Start && i <= w.End
}

// Valid reports whether the window lies inside a series of length n.
func (w Window) Valid(n int) bool {
	return w.Start >= 0 && w.Start <= w.End && w.End < n
}

func (w Window) String() string {
	return fmt.Sprintf("[%d,%d]", w.Start, w.End)
}

type RobustStats struct {
	Median   float64 `json:"median"`
	Q1       float64 `json:"q1"`
	Q3       float64 `json:"q3"`
	IQR      float64 `json:"iqr"`
	IQRScale float64 `json:"iqr_scale"` // iqr normalized to a standard deviation estimate
	Count    int     `json:"count"`
}

// Deviation is the absolute distance of value from the median.
func (s RobustStats) Deviation(value float64) float64 {
	d := value - s.Median
	if d < 0 {
		return -d
	}
	return d
}

// FlagSet holds one outlier flag per series index.
type FlagSet []bool

func NewFlagSet(n int) FlagSet {
	return make(FlagSet, n)
}

func (f FlagSet) Count() int {
	res := 0
	for _, flagged := range f {
		if flagged {
			res++
		}
	}
	return res
}

func (f FlagSet) Indexes() []int {
	res := []int{}
	for i, flagged := range f {
		if flagged {
			res = append(res, i)
		}
	}
	return res
}

func (f FlagSet) Clone() FlagSet {
	res := make(FlagSet, len(f))
	copy(res, f)
	return res
}

type Status int

const (
	StatusConverged        Status = 1
	StatusInsufficientData Status = 2
	StatusNonConvergence   Status = 3
)

func (s Status) String() string {
	switch s {
	case StatusConverged:
		return "converged"
	case StatusInsufficientData:
		return "insufficient_data"
	case StatusNonConvergence:
		return "non_convergence"
	}
	return fmt.Sprintf("status(%d)", int(s))
}
