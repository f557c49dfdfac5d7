package cli

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"golang.org/x/time/rate"

	"github.com/kneelab/femurtrack/landmark"
	"github.com/kneelab/femurtrack/logging"
	"github.com/kneelab/femurtrack/posesource"
	"github.com/kneelab/femurtrack/session"
	"github.com/kneelab/femurtrack/spatialmath"
	"github.com/kneelab/femurtrack/utils"
)

// ReplayAction plays a capture file through a session. The first frame with a stylus becomes
// the reference; every later one is compared against the reconstructed stylus position.
func ReplayAction(c *cli.Context) error {
	ac, err := newActionContext(c)
	if err != nil {
		return err
	}
	defer ac.close()
	ctx := c.Context
	if c.Bool(debugFlag) {
		ctx = logging.EnableDebugMode(ctx, "")
	}

	interval := ac.cfg.ReplayIntervalDuration()
	if c.IsSet(replayFlagInterval) {
		interval = c.Duration(replayFlagInterval)
	}
	clk := clock.New()
	source, err := posesource.NewReplaySourceFromFile(
		c.String(replayFlagFile),
		posesource.ReplayConfig{FemurID: ac.cfg.FemurID, StylusID: ac.cfg.StylusID, Interval: interval},
		clk,
		ac.logger,
	)
	if err != nil {
		return err
	}

	// the catalog is optional here, a missing one only disables landmark output
	catalogPath := ac.catalogPath(c)
	holder := landmark.NewHolder()
	holder.Reload(catalogPath, ac.logger)

	labels := normalizeLabels(c.StringSlice(replayFlagLandmarks))

	sess := session.New(session.Config{FemurID: ac.cfg.FemurID, StylusID: ac.cfg.StylusID}, clk, ac.logger)
	exportDir := c.String(replayFlagExportDir)
	if exportDir != "" {
		exportDir = utils.ExpandHomeDir(exportDir)
	}
	r := &replayer{
		ac:     ac,
		sess:   sess,
		holder: holder,
		labels: labels,
		store:  exportDir != "",
		warn:   &rate.Sometimes{Interval: time.Second},
	}

	frameSource := posesource.SourceFunc(func(ctx context.Context, ingest func(posesource.Sample)) error {
		return source.Run(ctx, func(s posesource.Sample) {
			ingest(s)
			if s.RigidBodyID == ac.cfg.StylusID {
				r.onFrame(ctx)
			}
		})
	})

	workers, result := sess.Run(ctx, frameSource)
	if timeout := utils.GetConnectionTimeout(ac.cfg.ConnectionTimeoutDuration(), ac.logger); timeout > 0 {
		workers.AddWorkers(func(ctx context.Context) {
			watchStaleness(ctx, clk, sess, timeout, ac.logger)
		})
	}
	if c.Bool(replayFlagWatchCatalog) {
		workers.AddWorkers(func(ctx context.Context) {
			if err := landmark.Watch(ctx, catalogPath, holder, ac.logger); err != nil {
				ac.logger.Warnw("catalog watch stopped", "error", err)
			}
		})
	}
	runErr := <-result
	workers.Stop()
	if runErr != nil {
		return errors.Wrap(runErr, "replay")
	}

	ac.logger.Infow("replay finished", "session", sess.ID().String(), "frames", source.Len(), "compared", r.compared)
	if summary, err := session.SummarizeDeviations(r.deviations); err == nil {
		printf(ac.out, "deviation (mm): %s", summary.String())
	}
	if exportDir == "" {
		return nil
	}
	path, err := sess.Export(exportDir)
	if err != nil {
		return err
	}
	printf(ac.out, "exported %d points to %s", len(sess.Points()), path)
	return nil
}

type replayer struct {
	ac     *actionContext
	sess   *session.Session
	holder *landmark.Holder
	labels []string
	store  bool
	// warn limits repeated per-frame warnings
	warn *rate.Sometimes

	compared   int
	deviations []spatialmath.Deviation
}

func (r *replayer) warnw(msg string, keysAndValues ...interface{}) {
	r.warn.Do(func() {
		r.ac.logger.Warnw(msg, keysAndValues...)
	})
}

func (r *replayer) onFrame(ctx context.Context) {
	if r.store {
		if _, err := r.sess.Store(); err != nil {
			r.warnw("cannot store frame", "error", err)
		}
	}

	if _, ok := r.sess.Reference(); !ok {
		ref, err := r.sess.CaptureReference()
		if err != nil {
			r.warnw("cannot capture reference", "error", err)
			return
		}
		printf(r.ac.out, "reference: femur %s stylus %s offset %s",
			ref.Femur.String(), ref.Stylus.String(), formatVector(ref.Offset()))
		return
	}

	update, err := r.sess.UpdatedStylus()
	if err != nil {
		r.warnw("cannot update stylus", "error", err)
		return
	}
	r.compared++
	r.ac.logger.CDebugw(ctx, "frame", "femur", update.Femur.String())
	if update.Deviation == nil {
		printf(r.ac.out, "calculated %s", formatVector(update.Calculated))
	} else {
		r.deviations = append(r.deviations, *update.Deviation)
		printf(r.ac.out, "calculated %s | actual %s | %s",
			formatVector(update.Calculated), formatVector(*update.Actual), update.Deviation.String())
	}

	catalog := r.holder.Catalog()
	for _, label := range r.labels {
		mapped, err := r.sess.MappedPoint(catalog, label)
		if err != nil {
			r.warnw("cannot locate landmark", "label", label, "error", err)
			continue
		}
		printf(r.ac.out, "  %s %s", label, formatVector(mapped.Calculated))
	}
}

// watchStaleness warns once each time the feed goes quiet for longer than timeout.
func watchStaleness(ctx context.Context, clk clock.Clock, sess *session.Session, timeout time.Duration, logger logging.Logger) {
	period := timeout / 2
	if period <= 0 {
		period = timeout
	}
	ticker := clk.Ticker(period)
	defer ticker.Stop()
	warned := false
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if sess.LastSample().IsZero() {
			continue
		}
		stale := sess.Stale(timeout)
		if stale && !warned {
			logger.Warnw("no pose data received", "since", sess.LastSample(), "timeout", timeout)
		}
		warned = stale
	}
}
