package robust

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/uyouii/robust-outliers/model"
)

// StatsKey identifies one memoized robust stats computation. Two windows
// never share a key, and the same window with a different set of excluded
// points hashes differently.
type StatsKey struct {
	Window      model.Window
	Method      Method
	Count       int
	Fingerprint uint64
}

func (k StatsKey) String() string {
	return fmt.Sprintf("%d:%d:%d:%d:%016x", k.Window.Start, k.Window.End, k.Method, k.Count, k.Fingerprint)
}

// Fingerprint hashes the index and value of every included point of window,
// so equal values left by a different set of excluded points hash differently.
func Fingerprint(values []float64, window model.Window, excluded model.FlagSet) (uint64, int) {
	digest := xxhash.New()
	var buf [16]byte
	count := 0
	for i := window.Start; i <= window.End; i++ {
		if i < len(excluded) && excluded[i] {
			continue
		}
		binary.LittleEndian.PutUint64(buf[:8], uint64(i))
		binary.LittleEndian.PutUint64(buf[8:], math.Float64bits(values[i]))
		digest.Write(buf[:])
		count++
	}
	return digest.Sum64(), count
}

func NewStatsKey(values []float64, window model.Window, excluded model.FlagSet, method Method) StatsKey {
	fingerprint, count := Fingerprint(values, window, excluded)
	return StatsKey{
		Window:      window,
		Method:      method,
		Count:       count,
		Fingerprint: fingerprint,
	}
}

// SeriesFingerprint hashes every value of the series, NaN payloads included.
func SeriesFingerprint(values []float64) uint64 {
	if len(values) == 0 {
		return xxhash.Sum64(nil)
	}
	fingerprint, _ := Fingerprint(values, model.Window{Start: 0, End: len(values) - 1}, nil)
	return fingerprint
}
