package outlier

import "github.com/uyouii/robust-outliers/model"

// frameWindow returns the 2*span+1 points around i. Points closer than span
// to either end share the first or last full frame.
func frameWindow(i, n, span int) model.Window {
	width := 2*span + 1
	if width >= n {
		return model.Window{Start: 0, End: n - 1}
	}
	if i < span {
		return model.Window{Start: 0, End: width - 1}
	}
	if i >= n-span {
		return model.Window{Start: n - width, End: n - 1}
	}
	return model.Window{Start: i - span, End: i + span}
}

func (c Config) windowFor(i, n int) model.Window {
	if c.Scope == ScopeFrame {
		return frameWindow(i, n, c.FrameSpan)
	}
	return model.Window{Start: 0, End: n - 1}
}
