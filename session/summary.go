package session

import (
	"fmt"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"

	"github.com/kneelab/femurtrack/spatialmath"
)

// ErrNoDeviations is returned when summarizing an empty set of deviations.
var ErrNoDeviations = errors.New("no deviations to summarize")

// DeviationSummary describes the distance between reconstructed and measured positions over a
// run, in millimeters.
type DeviationSummary struct {
	Count  int
	Mean   float64
	StdDev float64
	P95    float64
	Max    float64
}

func (ds DeviationSummary) String() string {
	return fmt.Sprintf("n=%d mean=%.2f sd=%.2f p95=%.2f max=%.2f", ds.Count, ds.Mean, ds.StdDev, ds.P95, ds.Max)
}

// SummarizeDeviations computes statistics over the magnitudes of deviations.
func SummarizeDeviations(deviations []spatialmath.Deviation) (DeviationSummary, error) {
	if len(deviations) == 0 {
		return DeviationSummary{}, ErrNoDeviations
	}
	magnitudes := make(stats.Float64Data, 0, len(deviations))
	for _, d := range deviations {
		magnitudes = append(magnitudes, d.Magnitude)
	}

	summary := DeviationSummary{Count: len(deviations)}
	var err error
	if summary.Mean, err = stats.Mean(magnitudes); err != nil {
		return DeviationSummary{}, err
	}
	if summary.StdDev, err = stats.StandardDeviation(magnitudes); err != nil {
		return DeviationSummary{}, err
	}
	if summary.P95, err = stats.Percentile(magnitudes, 95); err != nil {
		return DeviationSummary{}, err
	}
	if summary.Max, err = stats.Max(magnitudes); err != nil {
		return DeviationSummary{}, err
	}
	return summary, nil
}
