package main

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirupsen/logrus"

	"pixel-processing/internal/core"
	"pixel-processing/internal/imageio"
	"pixel-processing/internal/raster"
)

func TestParseParams(t *testing.T) {
	got, err := parseParams([]string{"kernel_size=5", " sampler = nearest", "empty="})
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"kernel_size": "5", "sampler": "nearest", "empty": ""}, got)

	for _, bad := range []string{"noequals", "=3"} {
		_, err := parseParams([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestListCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"list", "--verbose"})
	require.NoError(t, cmd.Execute())

	text := out.String()
	for _, want := range []string{"Thresholding:", "sauvola", "window_size", "hough_lines", "two_quadrants"} {
		assert.Contains(t, text, want)
	}
}

func TestFormatMetrics(t *testing.T) {
	s := formatMetrics(map[string]float64{"ssim": 1, "psnr": math.Inf(1)})
	assert.Equal(t, " psnr=+Inf ssim=1.0000", s)
}

func TestWriteResult(t *testing.T) {
	var out bytes.Buffer
	writeResult(&out, &core.Result{
		Steps:   []core.StepResult{{Algorithm: "invert", Metrics: map[string]float64{"psnr": 5}}},
		Metrics: map[string]float64{"mse": 2},
	})
	assert.Contains(t, out.String(), "step 1 invert")
	assert.Contains(t, out.String(), "psnr=5.0000")
	assert.Contains(t, out.String(), "result mse=2.0000")
}

func TestPipelineCommandRejectsBadConfig(t *testing.T) {
	dir := t.TempDir()
	config := filepath.Join(dir, "steps.yaml")
	require.NoError(t, os.WriteFile(config, []byte("steps:\n  - algorithm: no_such_algorithm\n"), 0o644))

	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"pipeline", "--in", filepath.Join(dir, "missing.png"), "--out", filepath.Join(dir, "o.png"), "--config", config})
	assert.Error(t, cmd.Execute())
}

func TestRunBinaryOperationOnImageFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "page.png")

	b := raster.NewGray(12, 10)
	for y := 2; y < 8; y++ {
		for x := 3; x < 9; x++ {
			b.Set(x, y, 0, 255)
		}
	}
	require.NoError(t, imageio.NewImageLoader(logrus.New()).SaveImage(b, in))

	for _, flags := range [][]string{nil, {"--gray"}} {
		out := filepath.Join(dir, "eroded.png")
		var stdout bytes.Buffer
		cmd := newRootCommand()
		cmd.SetOut(&stdout)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(append([]string{"run", "--in", in, "--out", out, "-a", "erosion"}, flags...))
		require.NoError(t, cmd.Execute(), "flags %v", flags)
		assert.Contains(t, stdout.String(), "step 1 erosion")
		assert.FileExists(t, out)
	}
}
