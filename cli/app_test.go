package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/kneelab/femurtrack/landmark"
)

const testCatalogCSV = `Point_Number,Femur_Pos_X_mm,Femur_Pos_Y_mm,Femur_Pos_Z_mm,Femur_Rot_W,Femur_Rot_X,Femur_Rot_Y,Femur_Rot_Z,Stylus_Pos_X_mm,Stylus_Pos_Y_mm,Stylus_Pos_Z_mm
L1,0,0,0,1,0,0,0,10,20,0
M1,0,0,0,1,0,0,0,10,-20,0
L2,0,0,0,1,0,0,0,20,20,0
`

const testCaptureCSV = `Point_Number,Timestamp,Femur_X_mm,Femur_Y_mm,Femur_Z_mm,Femur_W,Femur_X,Femur_Y,Femur_Z,Stylus_X_mm,Stylus_Y_mm,Stylus_Z_mm,Stylus_W,Stylus_X,Stylus_Y,Stylus_Z
1,2025-01-02 03:04:05,0.000,0.000,0.000,1.000000,0.000000,0.000000,0.000000,10.000,0.000,0.000,1.000000,0.000000,0.000000,0.000000
2,2025-01-02 03:04:06,0.000,0.000,100.000,1.000000,0.000000,0.000000,0.000000,10.000,0.000,100.000,1.000000,0.000000,0.000000,0.000000
3,2025-01-02 03:04:07,0.000,0.000,0.000,0.707107,0.000000,0.000000,0.707107,0.000,10.000,0.000,0.707107,0.000000,0.000000,0.707107
`

func writeTestFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	test.That(t, os.WriteFile(path, []byte(contents), 0o600), test.ShouldBeNil)
	return path
}

func runApp(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := NewApp(&out, &errOut).Run(append([]string{"femurtrack"}, args...))
	return out.String(), errOut.String(), err
}

func TestReprojectAction(t *testing.T) {
	out, _, err := runApp(t, "reproject",
		"--ref-pos", "0,0,0", "--ref-quat", "0,0,0,1", "--ref-target", "10,0,0",
		"--new-pos", "5,0,0", "--new-quat", "0,0,0.7071067811865476,0.7071067811865476",
		"--actual", "5,10,0")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "offset:     X:10.000 Y:0.000 Z:0.000")
	test.That(t, out, test.ShouldContainSubstring, "Y:10.000 Z:0.000")
	test.That(t, out, test.ShouldContainSubstring, "|d|=0.00")

	wxyz, _, err := runApp(t, "reproject", "--wxyz",
		"--ref-pos", "0,0,0", "--ref-quat", "1,0,0,0", "--ref-target", "10,0,0",
		"--new-pos", "5,0,0", "--new-quat", "0.7071067811865476,0,0,0.7071067811865476")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, wxyz, test.ShouldContainSubstring, "Y:10.000 Z:0.000")
	test.That(t, wxyz, test.ShouldNotContainSubstring, "deviation")

	// an all zero rotation is treated as no rotation
	zero, _, err := runApp(t, "reproject",
		"--ref-pos", "1,2,3", "--ref-quat", "0,0,0,0", "--ref-target", "11,2,3",
		"--new-pos", "1,2,4", "--new-quat", "0,0,0,0")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, zero, test.ShouldContainSubstring, "calculated: X:11.000 Y:2.000 Z:4.000")

	_, _, err = runApp(t, "reproject",
		"--ref-pos", "0,0", "--ref-quat", "0,0,0,1", "--ref-target", "10,0,0",
		"--new-pos", "5,0,0", "--new-quat", "0,0,0,1")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "--ref-pos")
	test.That(t, err.Error(), test.ShouldContainSubstring, "expected 3")

	_, _, err = runApp(t, "reproject",
		"--ref-pos", "0,0,0", "--ref-quat", "0,0,x,1", "--ref-target", "10,0,0",
		"--new-pos", "5,0,0", "--new-quat", "0,0,0,1")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "--ref-quat")
}

func TestLandmarkActions(t *testing.T) {
	catalog := writeTestFile(t, "points.csv", testCatalogCSV)

	out, _, err := runApp(t, "landmark", "list", "--catalog", catalog)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "L1")
	test.That(t, out, test.ShouldContainSubstring, "M1")
	test.That(t, out, test.ShouldContainSubstring, "X:10.000 Y:-20.000 Z:0.000")
	test.That(t, strings.Index(out, "L2"), test.ShouldBeLessThan, strings.Index(out, "M1"))

	out, _, err = runApp(t, "landmark", "locate", "--catalog", catalog,
		"--label", "l1", "--femur-pos", "100,0,0", "--femur-quat", "0,0,0,1")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "L1: X:110.000 Y:20.000 Z:0.000")
	test.That(t, out, test.ShouldContainSubstring, "110.0000")

	_, _, err = runApp(t, "landmark", "locate", "--catalog", catalog,
		"--label", "L7", "--femur-pos", "0,0,0", "--femur-quat", "0,0,0,1")
	test.That(t, errors.Is(err, landmark.ErrLandmarkNotFound), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "L1, L2, M1")

	_, _, err = runApp(t, "landmark", "list", "--catalog", filepath.Join(t.TempDir(), "missing.csv"))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestBatchAction(t *testing.T) {
	catalog := writeTestFile(t, "points.csv", testCatalogCSV)
	frames := writeTestFile(t, "capture.csv", testCaptureCSV)
	outPath := filepath.Join(t.TempDir(), "results.csv")

	_, _, err := runApp(t, "batch", "--catalog", catalog, "--frames", frames, "--labels", "l2", "--out", outPath)
	test.That(t, err, test.ShouldBeNil)
	//nolint:gosec
	data, err := os.ReadFile(outPath)
	test.That(t, err, test.ShouldBeNil)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	test.That(t, lines, test.ShouldHaveLength, 4)
	test.That(t, lines[0], test.ShouldEqual, "Frame,Label,X_mm,Y_mm,Z_mm")
	test.That(t, lines[2], test.ShouldEqual, "2,L2,20.000,20.000,100.000")

	out, _, err := runApp(t, "batch", "--catalog", catalog, "--frames", frames, "--pairs")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldStartWith, "Frame,Pair,")
	test.That(t, out, test.ShouldContainSubstring, "1,1,10.000,20.000,0.000,10.000,-20.000,0.000")

	_, _, err = runApp(t, "batch", "--catalog", catalog, "--frames", frames, "--labels", "Q1")
	test.That(t, errors.Is(err, landmark.ErrLandmarkNotFound), test.ShouldBeTrue)
}

func TestReplayAction(t *testing.T) {
	catalog := writeTestFile(t, "points.csv", testCatalogCSV)
	capture := writeTestFile(t, "capture.csv", testCaptureCSV)
	exportDir := t.TempDir()

	out, _, err := runApp(t, "replay", "--file", capture, "--catalog", catalog, "--watch-catalog",
		"--landmarks", "l1", "--export-dir", exportDir)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "reference: femur")
	test.That(t, out, test.ShouldContainSubstring, "calculated X:10.000 Y:0.000 Z:100.000 | actual X:10.000 Y:0.000 Z:100.000")
	test.That(t, out, test.ShouldContainSubstring, "Y:10.000 Z:0.000 | actual")
	test.That(t, out, test.ShouldContainSubstring, "  L1 X:10.000 Y:20.000 Z:100.000")
	test.That(t, out, test.ShouldContainSubstring, "exported 3 points")
	test.That(t, out, test.ShouldContainSubstring, "deviation (mm): n=2 mean=0.00")

	exports, err := filepath.Glob(filepath.Join(exportDir, "rigid_body_data_*.csv"))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, exports, test.ShouldHaveLength, 1)

	// the export replays
	out, _, err = runApp(t, "replay", "--file", exports[0], "--catalog", catalog)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "calculated X:10.000 Y:0.000 Z:100.000")

	_, _, err = runApp(t, "replay", "--file", filepath.Join(t.TempDir(), "missing.csv"))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestConfigFlag(t *testing.T) {
	capture := writeTestFile(t, "capture.csv", testCaptureCSV)

	bad := writeTestFile(t, "bad.json", `{"femur_id": 2}`)
	_, _, err := runApp(t, "--config", bad, "replay", "--file", capture)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "must differ")

	// replayed samples carry the configured ids
	swapped := writeTestFile(t, "swapped.json", `{"femur_id": 2, "stylus_id": 1}`)
	out, _, err := runApp(t, "--config", swapped, "replay", "--file", capture)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "reference:")
}

func TestConfigActions(t *testing.T) {
	out, _, err := runApp(t, "config", "schema")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, `"femur_id"`)
	test.That(t, out, test.ShouldContainSubstring, `"connection_timeout"`)

	cfgPath := writeTestFile(t, "cfg.json", `{stylus_id: 5, export_dir: "exports"}`)
	out, _, err = runApp(t, "--config", cfgPath, "config", "show")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, `"femur_id": 1`)
	test.That(t, out, test.ShouldContainSubstring, `"stylus_id": 5`)
	test.That(t, out, test.ShouldContainSubstring, `"export_dir": "exports"`)
}
