// Package batch reconstructs catalog landmarks for every femur pose in a recorded capture.
package batch

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"runtime"
	"strconv"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/kneelab/femurtrack/landmark"
	"github.com/kneelab/femurtrack/posesource"
)

// Result is one landmark located from one frame's femur pose.
type Result struct {
	Frame    int
	Label    string
	Position r3.Vector
}

// PairResult is one lateral/medial pair located from one frame's femur pose.
type PairResult struct {
	Frame   int
	Index   int
	Lateral r3.Vector
	Medial  r3.Vector
}

// ReadFrames reads femur poses from a capture export. Stylus columns are ignored if present.
func ReadFrames(r io.Reader) ([]posesource.Frame, error) {
	frames, err := posesource.ReadFrames(r)
	if err != nil {
		return nil, err
	}
	for i := range frames {
		frames[i].Stylus = nil
	}
	return frames, nil
}

// Run locates each label for each frame. With no labels every catalog landmark is located.
// Results are ordered by frame and then by label.
func Run(ctx context.Context, catalog *landmark.Catalog, frames []posesource.Frame, labels []string) ([]Result, error) {
	if len(labels) == 0 {
		labels = catalog.Labels()
	}
	entries := make([]landmark.Entry, 0, len(labels))
	for _, label := range labels {
		e, err := catalog.Get(label)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	perFrame := make([][]Result, len(frames))
	err := forEachFrame(ctx, frames, func(i int, frame posesource.Frame) {
		out := make([]Result, 0, len(entries))
		for _, e := range entries {
			out = append(out, Result{Frame: frame.Index, Label: e.Label, Position: e.Reproject(frame.Femur)})
		}
		perFrame[i] = out
	})
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(frames)*len(entries))
	for _, rs := range perFrame {
		results = append(results, rs...)
	}
	return results, nil
}

// RunPairs locates every lateral/medial pair of the catalog for each frame.
func RunPairs(ctx context.Context, catalog *landmark.Catalog, frames []posesource.Frame) ([]PairResult, error) {
	pairs := catalog.Pairs()
	if len(pairs) == 0 {
		return nil, errors.Wrap(landmark.ErrLandmarkNotFound, "catalog has no lateral/medial pairs")
	}

	perFrame := make([][]PairResult, len(frames))
	err := forEachFrame(ctx, frames, func(i int, frame posesource.Frame) {
		out := make([]PairResult, 0, len(pairs))
		for _, p := range pairs {
			out = append(out, PairResult{
				Frame:   frame.Index,
				Index:   p.Index,
				Lateral: p.Lateral.Reproject(frame.Femur),
				Medial:  p.Medial.Reproject(frame.Femur),
			})
		}
		perFrame[i] = out
	})
	if err != nil {
		return nil, err
	}

	results := make([]PairResult, 0, len(frames)*len(pairs))
	for _, rs := range perFrame {
		results = append(results, rs...)
	}
	return results, nil
}

func forEachFrame(ctx context.Context, frames []posesource.Frame, fn func(int, posesource.Frame)) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, frame := range frames {
		i, frame := i, frame
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn(i, frame)
			return nil
		})
	}
	return g.Wait()
}

// WriteResults writes results as CSV with millimeter positions to three decimals.
func WriteResults(w io.Writer, results []Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Frame", "Label", "X_mm", "Y_mm", "Z_mm"}); err != nil {
		return err
	}
	for _, r := range results {
		row := append([]string{strconv.Itoa(r.Frame), r.Label}, vectorFields(r.Position)...)
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WritePairResults writes pair results as CSV.
func WritePairResults(w io.Writer, results []PairResult) error {
	cw := csv.NewWriter(w)
	header := []string{
		"Frame", "Pair",
		"Lateral_X_mm", "Lateral_Y_mm", "Lateral_Z_mm",
		"Medial_X_mm", "Medial_Y_mm", "Medial_Z_mm",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range results {
		row := []string{strconv.Itoa(r.Frame), strconv.Itoa(r.Index)}
		row = append(row, vectorFields(r.Lateral)...)
		row = append(row, vectorFields(r.Medial)...)
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func vectorFields(v r3.Vector) []string {
	return []string{fmt.Sprintf("%.3f", v.X), fmt.Sprintf("%.3f", v.Y), fmt.Sprintf("%.3f", v.Z)}
}
