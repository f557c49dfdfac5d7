package posesource

import (
	"context"
	"os"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"github.com/kneelab/femurtrack/logging"
)

// ReplaySource plays back capture frames as feed samples: for every frame a femur sample and,
// when present, a stylus sample.
type ReplaySource struct {
	frames   []Frame
	femurID  int
	stylusID int
	interval time.Duration
	clock    clock.Clock
	logger   logging.Logger
}

// ReplayConfig describes how to play a capture back.
type ReplayConfig struct {
	FemurID  int
	StylusID int
	// Interval is the delay between frames; zero plays as fast as possible.
	Interval time.Duration
}

// NewReplaySource returns a source that plays the given frames.
func NewReplaySource(frames []Frame, cfg ReplayConfig, clk clock.Clock, logger logging.Logger) *ReplaySource {
	if clk == nil {
		clk = clock.New()
	}
	return &ReplaySource{
		frames:   frames,
		femurID:  cfg.FemurID,
		stylusID: cfg.StylusID,
		interval: cfg.Interval,
		clock:    clk,
		logger:   logger,
	}
}

// NewReplaySourceFromFile reads a capture file and returns a source that plays it.
func NewReplaySourceFromFile(path string, cfg ReplayConfig, clk clock.Clock, logger logging.Logger) (*ReplaySource, error) {
	//nolint:gosec
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer goutils.UncheckedErrorFunc(f.Close)

	frames, err := ReadFrames(f)
	if err != nil {
		return nil, errors.Wrapf(err, "reading capture %q", path)
	}
	logger.Debugw("loaded capture for replay", "path", path, "frames", len(frames))
	return NewReplaySource(frames, cfg, clk, logger), nil
}

// Len returns the number of frames.
func (rs *ReplaySource) Len() int {
	return len(rs.frames)
}

// Run emits the frames in order, waiting Interval between frames.
func (rs *ReplaySource) Run(ctx context.Context, fn func(Sample)) error {
	for i, frame := range rs.frames {
		if i > 0 && rs.interval > 0 {
			timer := rs.clock.Timer(rs.interval)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		fn(SampleFromPose(rs.femurID, frame.Femur))
		if frame.Stylus != nil {
			fn(SampleFromPose(rs.stylusID, *frame.Stylus))
		}
	}
	rs.logger.Debugw("replay finished", "frames", len(rs.frames))
	return nil
}
