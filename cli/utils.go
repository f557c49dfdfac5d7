package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap/zapcore"
	goutils "go.viam.com/utils"
	"gonum.org/v1/gonum/num/quat"

	"github.com/kneelab/femurtrack/config"
	"github.com/kneelab/femurtrack/landmark"
	"github.com/kneelab/femurtrack/logging"
	"github.com/kneelab/femurtrack/spatialmath"
	"github.com/kneelab/femurtrack/utils"
)

// actionContext is what every action needs: the resolved config and a logger writing to the
// app's error stream.
type actionContext struct {
	cfg     *config.Config
	logger  logging.Logger
	out     io.Writer
	logFile *logging.FileAppender
}

func newActionContext(c *cli.Context) (*actionContext, error) {
	ac := &actionContext{out: c.App.Writer}
	logger := logging.NewBlankLogger("femurtrack")
	logger.AddAppender(logging.NewWriterAppender(c.App.ErrWriter, zapcore.CapitalLevelEncoder))
	if path := c.String(logFileFlag); path != "" {
		ac.logFile = logging.NewFileAppender(utils.ExpandHomeDir(path))
		logger.AddAppender(ac.logFile)
	}
	logging.ReplaceGlobal(logger)
	ac.logger = logger

	cfg := config.Default()
	if path := c.String(configFlag); path != "" {
		var err error
		if cfg, err = config.Read(path, logger); err != nil {
			ac.close()
			return nil, err
		}
	}
	if !c.Bool(debugFlag) {
		logger.SetLevel(cfg.Level())
	}
	ac.cfg = cfg
	return ac, nil
}

// close releases the log file, if any.
func (ac *actionContext) close() {
	if ac.logFile != nil {
		goutils.UncheckedError(ac.logFile.Close())
	}
}

// catalogPath is the --catalog flag or the configured catalog.
func (ac *actionContext) catalogPath(c *cli.Context) string {
	if path := c.String(catalogFlag); path != "" {
		return utils.ExpandHomeDir(path)
	}
	return utils.ExpandHomeDir(ac.cfg.CatalogPath)
}

// loadCatalog loads the catalog and fails if it is unavailable.
func (ac *actionContext) loadCatalog(c *cli.Context) (*landmark.Catalog, error) {
	result := landmark.LoadCatalog(ac.catalogPath(c), ac.logger)
	if !result.Loaded() {
		return nil, result.Err
	}
	return result.Catalog, nil
}

// normalizeLabel upper-cases a landmark label typed by a user; catalog labels are upper case.
func normalizeLabel(label string) string {
	return strings.ToUpper(strings.TrimSpace(label))
}

// normalizeLabels normalizes labels and drops duplicates, keeping the first occurrence.
func normalizeLabels(labels []string) []string {
	return lo.Uniq(lo.Map(labels, func(label string, _ int) string {
		return normalizeLabel(label)
	}))
}

func printf(w io.Writer, format string, a ...interface{}) {
	//nolint:errcheck
	fmt.Fprintf(w, format+"\n", a...)
}

// parseFloats parses exactly n comma separated numbers.
func parseFloats(raw string, n int) ([]float64, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != n {
		return nil, errors.Errorf("expected %d comma separated values, got %d in %q", n, len(parts), raw)
	}
	out := make([]float64, 0, n)
	for _, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing %q", raw)
		}
		out = append(out, f)
	}
	return out, nil
}

func vectorFlag(c *cli.Context, name string) (r3.Vector, error) {
	v, err := parseFloats(c.String(name), 3)
	if err != nil {
		return r3.Vector{}, errors.Wrapf(err, "--%s", name)
	}
	return r3.Vector{X: v[0], Y: v[1], Z: v[2]}, nil
}

// quatFlag parses a quaternion flag in feed order, or w first when --wxyz is set.
func quatFlag(c *cli.Context, name string) (quat.Number, error) {
	v, err := parseFloats(c.String(name), 4)
	if err != nil {
		return quat.Number{}, errors.Wrapf(err, "--%s", name)
	}
	q := [4]float64{v[0], v[1], v[2], v[3]}
	if c.Bool(wxyzFlag) {
		return spatialmath.QuatFromWXYZ(q), nil
	}
	return spatialmath.QuatFromXYZW(q), nil
}

func poseFlags(c *cli.Context, posName, quatName string) (spatialmath.Pose, error) {
	point, err := vectorFlag(c, posName)
	if err != nil {
		return spatialmath.Pose{}, err
	}
	orientation, err := quatFlag(c, quatName)
	if err != nil {
		return spatialmath.Pose{}, err
	}
	return spatialmath.NewPose(point, orientation), nil
}

func formatVector(v r3.Vector) string {
	return fmt.Sprintf("X:%.3f Y:%.3f Z:%.3f", v.X, v.Y, v.Z)
}

func formatQuat(q quat.Number) string {
	wxyz := spatialmath.QuatToWXYZ(q)
	return fmt.Sprintf("W:%.4f X:%.4f Y:%.4f Z:%.4f", wxyz[0], wxyz[1], wxyz[2], wxyz[3])
}
