package session

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/kneelab/femurtrack/posesource"
	"github.com/kneelab/femurtrack/spatialmath"
)

// ErrNothingToExport is returned when exporting an empty point log.
var ErrNothingToExport = errors.New("no data points to export")

// TimestampFormat is how captured point times are written.
const TimestampFormat = "2006-01-02 15:04:05"

// ExportFileName returns the name of an export written at the given time.
func ExportFileName(at time.Time) string {
	return fmt.Sprintf("rigid_body_data_%s.csv", at.Format("20060102_150405"))
}

// WriteExport writes points as CSV. Positions have three decimals and rotations six, W first.
func WriteExport(w io.Writer, points []CapturedPoint) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(posesource.CaptureHeader()); err != nil {
		return err
	}
	for _, p := range points {
		row := make([]string, 0, 16)
		row = append(row, strconv.Itoa(p.Index), p.Time.Format(TimestampFormat))
		row = append(row, poseFields(p.Femur)...)
		row = append(row, poseFields(p.Stylus)...)
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func poseFields(p spatialmath.Pose) []string {
	wxyz := spatialmath.QuatToWXYZ(p.Orientation)
	return []string{
		fmt.Sprintf("%.3f", p.Point.X), fmt.Sprintf("%.3f", p.Point.Y), fmt.Sprintf("%.3f", p.Point.Z),
		fmt.Sprintf("%.6f", wxyz[0]), fmt.Sprintf("%.6f", wxyz[1]), fmt.Sprintf("%.6f", wxyz[2]), fmt.Sprintf("%.6f", wxyz[3]),
	}
}

// ExportFile writes points to a new timestamped file in dir and returns its path.
func ExportFile(dir string, points []CapturedPoint, at time.Time) (path string, err error) {
	if len(points) == 0 {
		return "", ErrNothingToExport
	}
	path = filepath.Join(dir, ExportFileName(at))
	//nolint:gosec
	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(err, "creating export file")
	}
	defer func() {
		if closeErr := f.Close(); err == nil && closeErr != nil {
			err = closeErr
		}
	}()
	if err := WriteExport(f, points); err != nil {
		return "", errors.Wrapf(err, "writing %q", path)
	}
	return path, nil
}

// Export writes the session's points to a new timestamped file in dir.
func (s *Session) Export(dir string) (string, error) {
	path, err := ExportFile(dir, s.Points(), s.clock.Now())
	if err != nil {
		return "", err
	}
	s.logger.Infow("points exported", "session", s.id.String(), "path", path, "points", s.points.Len())
	return path, nil
}
