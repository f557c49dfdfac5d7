package posesource

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/kneelab/femurtrack/spatialmath"
)

// Column names of the capture export file.
var captureHeader = []string{
	"Point_Number", "Timestamp",
	"Femur_X_mm", "Femur_Y_mm", "Femur_Z_mm", "Femur_W", "Femur_X", "Femur_Y", "Femur_Z",
	"Stylus_X_mm", "Stylus_Y_mm", "Stylus_Z_mm", "Stylus_W", "Stylus_X", "Stylus_Y", "Stylus_Z",
}

// CaptureHeader returns the header row of a capture file.
func CaptureHeader() []string {
	return append([]string(nil), captureHeader...)
}

// Frame is one row of a capture file: a femur tracker pose and a stylus pose, both in
// millimeters. Stylus is nil when the row has no stylus columns.
type Frame struct {
	Index     int
	Timestamp string
	Femur     spatialmath.Pose
	Stylus    *spatialmath.Pose
}

// ReadFrames parses a capture file. Columns are found by header name; the stylus columns are
// optional. Rotation columns are W first and are reordered here.
func ReadFrames(r io.Reader) ([]Frame, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("capture file is empty")
		}
		return nil, errors.Wrap(err, "reading capture header")
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		// spreadsheet exports start the file with a byte order mark
		cols[strings.TrimPrefix(strings.TrimSpace(name), "\ufeff")] = i
	}

	femurCols := []string{"Femur_X_mm", "Femur_Y_mm", "Femur_Z_mm", "Femur_W", "Femur_X", "Femur_Y", "Femur_Z"}
	stylusCols := []string{"Stylus_X_mm", "Stylus_Y_mm", "Stylus_Z_mm", "Stylus_W", "Stylus_X", "Stylus_Y", "Stylus_Z"}
	for _, name := range femurCols {
		if _, ok := cols[name]; !ok {
			return nil, errors.Errorf("capture file is missing column %q", name)
		}
	}
	hasStylus := true
	for _, name := range stylusCols {
		if _, ok := cols[name]; !ok {
			hasStylus = false
		}
	}

	var frames []Frame
	var errs error
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}

		frame := Frame{Index: len(frames) + 1}
		if i, ok := cols["Point_Number"]; ok && i < len(record) {
			if n, err := strconv.Atoi(strings.TrimSpace(record[i])); err == nil {
				frame.Index = n
			}
		}
		if i, ok := cols["Timestamp"]; ok && i < len(record) {
			frame.Timestamp = record[i]
		}

		femur, err := parsePose(record, cols, femurCols)
		if err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "line %d femur", line))
			continue
		}
		frame.Femur = femur
		if hasStylus {
			stylus, err := parsePose(record, cols, stylusCols)
			if err != nil {
				errs = multierr.Append(errs, errors.Wrapf(err, "line %d stylus", line))
				continue
			}
			frame.Stylus = &stylus
		}
		frames = append(frames, frame)
	}
	if errs != nil {
		return nil, errs
	}
	return frames, nil
}

// parsePose reads x, y, z in millimeters followed by w, x, y, z.
func parsePose(record []string, cols map[string]int, names []string) (spatialmath.Pose, error) {
	var vals [7]float64
	for i, name := range names {
		idx := cols[name]
		if idx >= len(record) {
			return spatialmath.Pose{}, errors.Errorf("missing value for %s", name)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(record[idx]), 64)
		if err != nil {
			return spatialmath.Pose{}, errors.Wrapf(err, "column %s", name)
		}
		vals[i] = v
	}
	return spatialmath.NewPose(
		r3.Vector{X: vals[0], Y: vals[1], Z: vals[2]},
		spatialmath.QuatFromWXYZ([4]float64{vals[3], vals[4], vals[5], vals[6]}),
	), nil
}
