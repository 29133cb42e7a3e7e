package device

import (
	"math"

	"github.com/viterin/vek"

	"github.com/lixenwraith/gallop/parameter"
)

// Level summarizes a rendered buffer
type Level struct {
	Peak float64
	RMS  float64
}

// Measure returns the absolute peak and RMS of buf
func Measure(buf []float64) Level {
	if len(buf) == 0 {
		return Level{}
	}
	return Level{
		Peak: vek.Max(vek.Abs(buf)),
		RMS:  math.Sqrt(vek.Dot(buf, buf) / float64(len(buf))),
	}
}

// DB converts a linear amplitude to dBFS
func DB(v float64) float64 {
	if v <= 0 {
		return parameter.MeterFloorDB
	}
	return math.Max(20*math.Log10(v), parameter.MeterFloorDB)
}

// PeakDB is the peak level in dBFS
func (l Level) PeakDB() float64 { return DB(l.Peak) }

// RMSDB is the RMS level in dBFS
func (l Level) RMSDB() float64 { return DB(l.RMS) }
