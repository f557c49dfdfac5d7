package cli

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"github.com/kneelab/femurtrack/batch"
)

// BatchAction locates landmarks for every femur pose of a capture file and writes them as CSV.
func BatchAction(c *cli.Context) (err error) {
	ac, err := newActionContext(c)
	if err != nil {
		return err
	}
	defer ac.close()
	catalog, err := ac.loadCatalog(c)
	if err != nil {
		return err
	}

	//nolint:gosec
	in, err := os.Open(c.String(batchFlagFrames))
	if err != nil {
		return errors.Wrap(err, "opening frames")
	}
	frames, err := batch.ReadFrames(in)
	err = multierr.Combine(err, in.Close())
	if err != nil {
		return errors.Wrapf(err, "reading frames from %q", c.String(batchFlagFrames))
	}

	var out io.Writer = ac.out
	if path := c.String(batchFlagOut); path != "" {
		//nolint:gosec
		f, createErr := os.Create(path)
		if createErr != nil {
			return errors.Wrap(createErr, "creating output")
		}
		defer func() {
			err = multierr.Combine(err, f.Close())
		}()
		out = f
	}

	if c.Bool(batchFlagPairs) {
		results, err := batch.RunPairs(c.Context, catalog, frames)
		if err != nil {
			return err
		}
		ac.logger.Infow("batch finished", "frames", len(frames), "results", len(results))
		return batch.WritePairResults(out, results)
	}

	results, err := batch.Run(c.Context, catalog, frames, normalizeLabels(c.StringSlice(batchFlagLabels)))
	if err != nil {
		return err
	}
	ac.logger.Infow("batch finished", "frames", len(frames), "results", len(results))
	return batch.WriteResults(out, results)
}
