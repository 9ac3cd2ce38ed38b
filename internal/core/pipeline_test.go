package core

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixel-processing/internal/pointwise"
	"pixel-processing/internal/raster"
	"pixel-processing/internal/threshold"
)

func noisyImage(t *testing.T) *ImageData {
	t.Helper()
	r := rand.New(rand.NewSource(42))
	b := raster.NewGray(16, 12)
	for i := range b.Pix {
		b.Pix[i] = uint8(r.Intn(256))
	}
	img := NewImageData()
	require.NoError(t, img.SetOriginal(b, "noise.png"))
	return img
}

func newTestPipeline(t *testing.T) (*Pipeline, *ImageData, *logtest.Hook) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	img := noisyImage(t)
	return NewPipeline(img, logger), img, hook
}

func TestAddStepValidates(t *testing.T) {
	p, _, _ := newTestPipeline(t)

	assert.Error(t, p.AddStep("no_such_algorithm", nil))
	assert.ErrorIs(t, p.AddStep("median", map[string]interface{}{"kernel_size": 4.0}), raster.ErrInvalidArgument)
	assert.Empty(t, p.GetSteps())

	require.NoError(t, p.AddStep("median", map[string]interface{}{"kernel_size": "5"}))
	steps := p.GetSteps()
	require.Len(t, steps, 1)
	assert.True(t, steps[0].Enabled)
	assert.Equal(t, 5.0, steps[0].Parameters["kernel_size"])
}

func TestStepEditing(t *testing.T) {
	p, _, _ := newTestPipeline(t)
	require.NoError(t, p.AddStep("invert", nil))
	require.NoError(t, p.AddStep("mean", nil))

	require.NoError(t, p.SetStepEnabled(0, false))
	assert.False(t, p.GetSteps()[0].Enabled)
	assert.Error(t, p.SetStepEnabled(5, true))

	require.NoError(t, p.RemoveStep(0))
	assert.Equal(t, "mean", p.GetSteps()[0].Algorithm)
	assert.Error(t, p.RemoveStep(-1))

	err := p.SetSteps([]ProcessingStep{{Algorithm: "invert", Enabled: true}, {Algorithm: "bogus"}})
	assert.Error(t, err)
	assert.Len(t, p.GetSteps(), 1, "failed SetSteps leaves steps untouched")

	p.ClearSteps()
	assert.Empty(t, p.GetSteps())
}

func TestProcessChainsSteps(t *testing.T) {
	p, img, hook := newTestPipeline(t)
	require.NoError(t, p.AddStep("invert", nil))
	require.NoError(t, p.AddStep("gaussian", nil))
	require.NoError(t, p.SetStepEnabled(1, false))
	require.NoError(t, p.AddStep("threshold", map[string]interface{}{"threshold": 100.0}))

	res, err := p.Process(context.Background())
	require.NoError(t, err)

	inverted := pointwise.Apply(img.GetOriginal(), pointwise.Invert())
	want, err := threshold.Manual(inverted, 100)
	require.NoError(t, err)
	assert.True(t, want.Equal(res.Output))
	assert.True(t, want.Equal(img.GetProcessed()))

	require.Len(t, res.Steps, 2)
	assert.Equal(t, "invert", res.Steps[0].Algorithm)
	assert.Equal(t, "threshold", res.Steps[1].Algorithm)
	assert.Contains(t, res.Steps[1].Metrics, "f_measure")
	assert.Contains(t, res.Metrics, "ssim")

	last := hook.LastEntry()
	require.NotNil(t, last)
	assert.Equal(t, "Pipeline finished", last.Message)
	assert.Equal(t, 2, last.Data["steps"])
}

func TestProcessReportsFailingStep(t *testing.T) {
	p, img, hook := newTestPipeline(t)
	require.NoError(t, p.AddStep("erosion", nil))

	before := img.GetProcessed()
	_, err := p.Process(context.Background())
	assert.ErrorIs(t, err, raster.ErrInvalidState)
	assert.Contains(t, err.Error(), "step 1")
	assert.True(t, before.Equal(img.GetProcessed()))

	var failed bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.ErrorLevel {
			failed = true
		}
	}
	assert.True(t, failed)
}

func TestProcessHonoursContext(t *testing.T) {
	p, _, _ := newTestPipeline(t)
	require.NoError(t, p.AddStep("invert", nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Process(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcessWithoutImage(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	p := NewPipeline(NewImageData(), logger)
	_, err := p.Process(context.Background())
	assert.Error(t, err)
}

func TestParseSteps(t *testing.T) {
	steps, err := ParseSteps([]byte(`
steps:
  - algorithm: gaussian
    parameters:
      variance: 2
  - algorithm: connected_components
    parameters:
      connectivity: 4
  - algorithm: invert
    enabled: false
`))
	require.NoError(t, err)
	require.Len(t, steps, 3)
	assert.True(t, steps[0].Enabled)
	assert.Equal(t, 2, steps[0].Parameters["variance"])
	assert.False(t, steps[2].Enabled)

	p, _, _ := newTestPipeline(t)
	require.NoError(t, p.SetSteps(steps))
	assert.Equal(t, "4", p.GetSteps()[1].Parameters["connectivity"])

	_, err = ParseSteps([]byte("steps:\n  - parameters: {}\n"))
	assert.Error(t, err)
	_, err = ParseSteps([]byte("stages: []\n"))
	assert.Error(t, err)
}

func TestSaveAndLoadSteps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	in := []ProcessingStep{
		{Algorithm: "median", Parameters: map[string]interface{}{"kernel_size": 3.0}, Enabled: true},
		{Algorithm: "invert", Enabled: false},
	}
	require.NoError(t, SaveSteps(path, in))

	out, err := LoadSteps(path)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "median", out[0].Algorithm)
	assert.True(t, out[0].Enabled)
	assert.False(t, out[1].Enabled)

	_, err = LoadSteps(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
