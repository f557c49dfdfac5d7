package cli

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v2"

	"github.com/kneelab/femurtrack/session"
)

// LandmarkListAction prints every landmark of the catalog as a table.
func LandmarkListAction(c *cli.Context) error {
	ac, err := newActionContext(c)
	if err != nil {
		return err
	}
	defer ac.close()
	catalog, err := ac.loadCatalog(c)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.AppendHeader(table.Row{"Label", "Femur Position (mm)", "Femur Rotation", "Target (mm)", "Offset (mm)"})
	for _, e := range catalog.Entries() {
		t.AppendRow(table.Row{
			e.Label,
			formatVector(e.Reference.Point),
			formatQuat(e.Reference.Orientation),
			formatVector(e.Target),
			formatVector(e.Offset()),
		})
	}
	t.AppendFooter(table.Row{"", "", "", "Total", catalog.Len()})
	printf(ac.out, "%s", t.Render())
	return nil
}

// LandmarkLocateAction prints where a catalog landmark is for the given femur pose.
func LandmarkLocateAction(c *cli.Context) error {
	ac, err := newActionContext(c)
	if err != nil {
		return err
	}
	defer ac.close()
	catalog, err := ac.loadCatalog(c)
	if err != nil {
		return err
	}
	femur, err := poseFlags(c, landmarkFlagFemurPos, landmarkFlagFemurQuat)
	if err != nil {
		return err
	}
	entry, err := catalog.Get(normalizeLabel(c.String(landmarkFlagLabel)))
	if err != nil {
		return err
	}

	mapped := session.LocateLandmark(entry, femur)
	printf(ac.out, "%s: %s", entry.Label, formatVector(mapped.Calculated))

	t := table.NewWriter()
	t.SetTitle("Transform")
	for row := 0; row < 4; row++ {
		r := make(table.Row, 0, 4)
		for col := 0; col < 4; col++ {
			r = append(r, fmt.Sprintf("%.4f", mapped.Transform.At(row, col)))
		}
		t.AppendRow(r)
	}
	printf(ac.out, "%s", t.Render())
	return nil
}
