// Package cli contains the femurtrack command line.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"
)

const (
	configFlag  = "config"
	debugFlag   = "debug"
	logFileFlag = "log-file"
	catalogFlag = "catalog"
	wxyzFlag    = "wxyz"

	reprojectFlagRefPos    = "ref-pos"
	reprojectFlagRefQuat   = "ref-quat"
	reprojectFlagRefTarget = "ref-target"
	reprojectFlagNewPos    = "new-pos"
	reprojectFlagNewQuat   = "new-quat"
	reprojectFlagActual    = "actual"

	landmarkFlagLabel     = "label"
	landmarkFlagFemurPos  = "femur-pos"
	landmarkFlagFemurQuat = "femur-quat"

	batchFlagFrames = "frames"
	batchFlagLabels = "labels"
	batchFlagPairs  = "pairs"
	batchFlagOut    = "out"

	replayFlagFile         = "file"
	replayFlagWatchCatalog = "watch-catalog"
	replayFlagExportDir    = "export-dir"
	replayFlagInterval     = "interval"
	replayFlagLandmarks    = "landmarks"
)

var quatOrderUsage = "quaternions are x,y,z,w unless --" + wxyzFlag + " is set"

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:            "femurtrack",
		Usage:           "follow points on a tracked femur",
		HideHelpCommand: true,
		Writer:          out,
		ErrWriter:       errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    configFlag,
				Aliases: []string{"c"},
				Usage:   "load configuration from `FILE`",
			},
			&cli.BoolFlag{
				Name:    debugFlag,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
			&cli.StringFlag{
				Name:  logFileFlag,
				Usage: "also write logs to `FILE`, rotated by size",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "reproject",
				Usage:     "reconstruct a target point after the tracker moves",
				UsageText: "femurtrack reproject --ref-pos x,y,z --ref-quat q --ref-target x,y,z --new-pos x,y,z --new-quat q",
				Description: "positions are millimeters, " + quatOrderUsage,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: reprojectFlagRefPos, Usage: "tracker position at reference time", Required: true},
					&cli.StringFlag{Name: reprojectFlagRefQuat, Usage: "tracker rotation at reference time", Required: true},
					&cli.StringFlag{Name: reprojectFlagRefTarget, Usage: "target position at reference time", Required: true},
					&cli.StringFlag{Name: reprojectFlagNewPos, Usage: "current tracker position", Required: true},
					&cli.StringFlag{Name: reprojectFlagNewQuat, Usage: "current tracker rotation", Required: true},
					&cli.StringFlag{Name: reprojectFlagActual, Usage: "measured target position to compare against"},
					&cli.BoolFlag{Name: wxyzFlag, Usage: "quaternions are given w,x,y,z"},
				},
				Action: ReprojectAction,
			},
			{
				Name:            "landmark",
				Usage:           "work with the landmark catalog",
				HideHelpCommand: true,
				Subcommands: []*cli.Command{
					{
						Name:  "list",
						Usage: "list the landmarks in a catalog",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: catalogFlag, Usage: "catalog `FILE`, defaults to the configured catalog"},
						},
						Action: LandmarkListAction,
					},
					{
						Name:        "locate",
						Usage:       "locate a landmark from a femur pose",
						Description: "femur position is millimeters, " + quatOrderUsage,
						Flags: []cli.Flag{
							&cli.StringFlag{Name: catalogFlag, Usage: "catalog `FILE`, defaults to the configured catalog"},
							&cli.StringFlag{Name: landmarkFlagLabel, Usage: "landmark label, e.g. L3", Required: true},
							&cli.StringFlag{Name: landmarkFlagFemurPos, Usage: "current femur position", Required: true},
							&cli.StringFlag{Name: landmarkFlagFemurQuat, Usage: "current femur rotation", Required: true},
							&cli.BoolFlag{Name: wxyzFlag, Usage: "quaternions are given w,x,y,z"},
						},
						Action: LandmarkLocateAction,
					},
				},
			},
			{
				Name:  "batch",
				Usage: "locate landmarks for every femur pose in a capture file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: catalogFlag, Usage: "catalog `FILE`, defaults to the configured catalog"},
					&cli.StringFlag{Name: batchFlagFrames, Usage: "capture export `FILE` with femur poses", Required: true},
					&cli.StringSliceFlag{Name: batchFlagLabels, Usage: "landmarks to locate, all when unset"},
					&cli.BoolFlag{Name: batchFlagPairs, Usage: "locate lateral/medial pairs instead of single landmarks"},
					&cli.StringFlag{Name: batchFlagOut, Usage: "output `FILE`, stdout when unset"},
				},
				Action: BatchAction,
			},
			{
				Name:  "replay",
				Usage: "replay a capture file through a tracking session",
				Description: "the reference is captured on the first frame with a stylus; each later frame " +
					"prints the reconstructed stylus position against the recorded one",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: replayFlagFile, Usage: "capture export `FILE` to replay", Required: true},
					&cli.StringFlag{Name: catalogFlag, Usage: "catalog `FILE`, defaults to the configured catalog"},
					&cli.BoolFlag{Name: replayFlagWatchCatalog, Usage: "reload the catalog when it changes"},
					&cli.StringSliceFlag{Name: replayFlagLandmarks, Usage: "landmarks to locate on every frame"},
					&cli.StringFlag{Name: replayFlagExportDir, Usage: "export every replayed frame to `DIR`"},
					&cli.DurationFlag{Name: replayFlagInterval, Usage: "time between frames, defaults to the configured interval"},
				},
				Action: ReplayAction,
			},
			{
				Name:            "config",
				Usage:           "inspect the configuration file",
				HideHelpCommand: true,
				Subcommands: []*cli.Command{
					{
						Name:   "schema",
						Usage:  "print the JSON schema of the config file",
						Action: ConfigSchemaAction,
					},
					{
						Name:   "show",
						Usage:  "print the config in effect, defaults included",
						Action: ConfigShowAction,
					},
				},
			},
		},
	}
}
