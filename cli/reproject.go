package cli

import (
	"github.com/urfave/cli/v2"

	"github.com/kneelab/femurtrack/spatialmath"
)

// ReprojectAction reconstructs a target point from a reference capture and a new tracker pose.
func ReprojectAction(c *cli.Context) error {
	ac, err := newActionContext(c)
	if err != nil {
		return err
	}
	defer ac.close()
	reference, err := poseFlags(c, reprojectFlagRefPos, reprojectFlagRefQuat)
	if err != nil {
		return err
	}
	target, err := vectorFlag(c, reprojectFlagRefTarget)
	if err != nil {
		return err
	}
	current, err := poseFlags(c, reprojectFlagNewPos, reprojectFlagNewQuat)
	if err != nil {
		return err
	}

	req := spatialmath.ReprojectionRequest{Reference: reference, ReferenceTarget: target, Current: current}
	calculated := req.Reproject()
	ac.logger.Debugw("reprojected", "reference", reference.String(), "current", current.String())

	printf(ac.out, "offset:     %s", formatVector(spatialmath.Offset(reference.Point, target)))
	printf(ac.out, "calculated: %s", formatVector(calculated))
	if c.String(reprojectFlagActual) == "" {
		return nil
	}
	actual, err := vectorFlag(c, reprojectFlagActual)
	if err != nil {
		return err
	}
	printf(ac.out, "actual:     %s", formatVector(actual))
	printf(ac.out, "deviation:  %s", spatialmath.NewDeviation(calculated, actual).String())
	return nil
}
