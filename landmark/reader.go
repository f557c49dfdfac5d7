package landmark

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

// Catalog columns.
const (
	ColumnLabel = "Point_Number"
)

var (
	femurPosColumns  = []string{"Femur_Pos_X_mm", "Femur_Pos_Y_mm", "Femur_Pos_Z_mm"}
	femurRotColumns  = []string{"Femur_Rot_W", "Femur_Rot_X", "Femur_Rot_Y", "Femur_Rot_Z"}
	stylusPosColumns = []string{"Stylus_Pos_X_mm", "Stylus_Pos_Y_mm", "Stylus_Pos_Z_mm"}
)

// Header returns the columns a catalog file must have.
func Header() []string {
	h := []string{ColumnLabel}
	h = append(h, femurPosColumns...)
	h = append(h, femurRotColumns...)
	return append(h, stylusPosColumns...)
}

// ReadCatalog parses a catalog. Columns are found by header name and extra columns are
// ignored. The femur rotation is stored W first in the file; it is reordered into the
// quaternion here and nowhere else. Every malformed row is reported.
func ReadCatalog(r io.Reader) (*Catalog, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("catalog has no header")
		}
		return nil, errors.Wrap(err, "reading catalog header")
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		// spreadsheets like to prefix a byte order mark
		cols[strings.TrimPrefix(strings.TrimSpace(name), "\ufeff")] = i
	}
	for _, name := range Header() {
		if _, ok := cols[name]; !ok {
			return nil, errors.Errorf("catalog is missing column %q", name)
		}
	}

	var entries []Entry
	var errs error
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", line)
		}
		if isBlank(record) {
			continue
		}
		entry, err := parseEntry(record, cols)
		if err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "line %d", line))
			continue
		}
		entries = append(entries, entry)
	}
	if errs != nil {
		return nil, errs
	}
	return NewCatalog(entries...), nil
}

func parseEntry(record []string, cols map[string]int) (Entry, error) {
	field := func(name string) (string, error) {
		idx := cols[name]
		if idx >= len(record) {
			return "", errors.Errorf("missing value for %s", name)
		}
		return strings.TrimSpace(record[idx]), nil
	}
	floats := func(names []string) ([]float64, error) {
		out := make([]float64, len(names))
		for i, name := range names {
			s, err := field(name)
			if err != nil {
				return nil, err
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "column %s", name)
			}
			out[i] = v
		}
		return out, nil
	}

	label, err := field(ColumnLabel)
	if err != nil {
		return Entry{}, err
	}
	if label == "" {
		return Entry{}, errors.Errorf("empty %s", ColumnLabel)
	}
	pos, err := floats(femurPosColumns)
	if err != nil {
		return Entry{}, err
	}
	rot, err := floats(femurRotColumns)
	if err != nil {
		return Entry{}, err
	}
	stylus, err := floats(stylusPosColumns)
	if err != nil {
		return Entry{}, err
	}

	return Entry{
		Label: label,
		Reference: spatialmath.NewPose(
			r3.Vector{X: pos[0], Y: pos[1], Z: pos[2]},
			spatialmath.QuatFromWXYZ([4]float64{rot[0], rot[1], rot[2], rot[3]}),
		),
		Target: r3.Vector{X: stylus[0], Y: stylus[1], Z: stylus[2]},
	}, nil
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
