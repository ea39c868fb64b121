package main

import (
	"fmt"

	"github.com/guptarohit/asciigraph"
)

// plotField renders values as an ASCII line chart. The series is averaged
// down to width columns so long rods still fit a terminal.
func plotField(values []float64, width, height int, caption string) string {
	if len(values) == 0 {
		return ""
	}
	series := downsample(values, width)
	return asciigraph.Plot(series,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(3),
		asciigraph.Caption(caption))
}

// downsample averages values into at most buckets bins.
func downsample(values []float64, buckets int) []float64 {
	if buckets <= 0 || len(values) <= buckets {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, buckets)
	for b := range out {
		start := b * len(values) / buckets
		end := (b + 1) * len(values) / buckets
		var sum float64
		for _, v := range values[start:end] {
			sum += v
		}
		out[b] = sum / float64(end-start)
	}
	return out
}

// plotSnapshotFile reads an artifact and returns its chart. A positive n is
// the expected number of grid points.
func plotSnapshotFile(path string, p snapshotPrecision, n int) (string, error) {
	values, err := readSnapshot(path, p)
	if err != nil {
		return "", err
	}
	if len(values) == 0 {
		return "", fmt.Errorf("snapshot %q is empty", path)
	}
	if n > 0 && len(values) != n {
		return "", fmt.Errorf("%w: snapshot %q holds %d values, expected %d at %d-bit",
			ErrInvalidParameters, path, len(values), n, int(p))
	}
	caption := fmt.Sprintf("%s (%d points, %d-bit)", path, len(values), int(p))
	return plotField(values, plotWidth, plotHeight, caption), nil
}
