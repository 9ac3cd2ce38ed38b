package algorithms

import (
	"math/rand"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pixel-processing/internal/morphology"
	"pixel-processing/internal/raster"
	"pixel-processing/internal/threshold"
)

func noise(w, h, c int, seed int64) *raster.Buffer {
	r := rand.New(rand.NewSource(seed))
	b, _ := raster.New(w, h, c)
	for i := range b.Pix {
		b.Pix[i] = uint8(r.Intn(256))
	}
	return b
}

func binaryNoise(w, h int, seed int64) *raster.Buffer {
	b := noise(w, h, 1, seed)
	for i, v := range b.Pix {
		if v >= 128 {
			b.Pix[i] = 255
		} else {
			b.Pix[i] = 0
		}
	}
	return b
}

// inputFor picks an image each algorithm accepts.
func inputFor(name string) *raster.Buffer {
	switch name {
	case "erosion", "dilation", "opening", "closing", "connected_components", "hough_lines":
		return binaryNoise(24, 20, 1)
	case "vector_median":
		return noise(24, 20, 3, 2)
	}
	return noise(24, 20, 1, 3)
}

func TestRegistryMetadata(t *testing.T) {
	all := GetAllAlgorithms()
	require.NotEmpty(t, all)

	for name, alg := range all {
		t.Run(name, func(t *testing.T) {
			assert.NotEmpty(t, alg.GetName())
			assert.NotEmpty(t, alg.GetDescription())

			defaults := alg.GetDefaultParams()
			info := alg.GetParameterInfo()
			assert.Len(t, defaults, len(info))
			for _, pi := range info {
				assert.Contains(t, defaults, pi.Name)
				assert.Equal(t, pi.Default, defaults[pi.Name], "default of %s", pi.Name)
				if pi.Type == "enum" {
					assert.Contains(t, pi.Options, pi.Default)
				}
			}
			assert.NoError(t, alg.Validate(defaults))
			assert.True(t, IsValidAlgorithm(name))
		})
	}
}

func TestEveryCategoryNameIsRegistered(t *testing.T) {
	seen := map[string]bool{}
	for category, names := range GetAlgorithmsByCategory() {
		for _, name := range names {
			assert.True(t, IsValidAlgorithm(name), "%s/%s", category, name)
			assert.False(t, seen[name], "%s listed twice", name)
			seen[name] = true
		}
	}
	assert.Len(t, seen, len(GetAllAlgorithms()))

	byCategory := GetAlgorithmsByCategory()
	for _, c := range []string{CategoryPointwise, CategoryFilters, CategoryEdges, CategoryThresholding,
		CategoryMorphology, CategoryGeometry, CategorySegmentation} {
		assert.NotEmpty(t, byCategory[c], c)
	}
}

func TestEveryAlgorithmRunsWithDefaults(t *testing.T) {
	for name, alg := range GetAllAlgorithms() {
		t.Run(name, func(t *testing.T) {
			in := inputFor(name)
			before := in.Copy()
			out, err := Apply(name, in, alg.GetDefaultParams())
			require.NoError(t, err)
			require.NotNil(t, out)
			assert.True(t, before.Equal(in), "input must not change")
		})
	}
}

func TestApplyErrors(t *testing.T) {
	gray := noise(8, 8, 1, 4)

	_, err := Apply("no_such_algorithm", gray, nil)
	assert.Error(t, err)

	_, err = Apply("median", nil, nil)
	assert.ErrorIs(t, err, raster.ErrInvalidArgument)

	cases := []struct {
		name   string
		alg    string
		params map[string]interface{}
		want   error
	}{
		{"unknown parameter", "mean", map[string]interface{}{"radius": 3.0}, raster.ErrInvalidArgument},
		{"even mask", "median", map[string]interface{}{"kernel_size": 4.0}, raster.ErrInvalidArgument},
		{"fractional int", "mean", map[string]interface{}{"mask_size": 3.5}, raster.ErrInvalidArgument},
		{"out of range", "adaptive_threshold", map[string]interface{}{"weight": 0.5}, raster.ErrInvalidArgument},
		{"bad option", "hough_lines", map[string]interface{}{"range": "four_quadrants"}, raster.ErrInvalidArgument},
		{"piecewise outputs", "piecewise_linear", map[string]interface{}{"s1": 200.0, "s2": 100.0}, raster.ErrInvalidArgument},
		{"canny order", "canny", map[string]interface{}{"low": 200.0, "high": 100.0}, raster.ErrInvalidArgument},
		{"not binary", "erosion", nil, raster.ErrInvalidState},
		{"degenerate quad", "projective", map[string]interface{}{"x1": 0.0, "y1": 0.0}, raster.ErrDegenerateGeometry},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Apply(tc.alg, gray, tc.params)
			assert.ErrorIs(t, err, tc.want)
			assert.Contains(t, err.Error(), tc.alg)
		})
	}
}

func TestThresholdMatchesPackage(t *testing.T) {
	gray := noise(16, 16, 1, 5)
	out, err := Apply("threshold", gray, map[string]interface{}{"threshold": 100.0})
	require.NoError(t, err)
	want, err := threshold.Manual(gray, 100)
	require.NoError(t, err)
	assert.True(t, want.Equal(out))

	color := noise(16, 16, 3, 6)
	out, err = Apply("threshold", color, nil)
	require.NoError(t, err)
	assert.True(t, out.IsGray())
}

func TestMultiOtsuLevels(t *testing.T) {
	out, err := Apply("otsu_multi", noise(20, 20, 1, 7), map[string]interface{}{"levels": 3.0})
	require.NoError(t, err)
	for _, v := range out.Pix {
		assert.Contains(t, []uint8{0, 128, 255}, v)
	}
}

func TestOtsuVariantsMatchPackage(t *testing.T) {
	gray := noise(30, 24, 1, 9)

	out, err := Apply("otsu_local", gray, map[string]interface{}{"window_size": 9.0, "overlap": 0.0, "interpolation": "false"})
	require.NoError(t, err)
	want, err := threshold.LocalOtsu(gray, 9, 0, false)
	require.NoError(t, err)
	assert.True(t, want.Equal(out))

	out, err = Apply("otsu_2d", gray, map[string]interface{}{"window_radius": 2.0})
	require.NoError(t, err)
	want, err = threshold.Otsu2D(gray, 2, 0.02)
	require.NoError(t, err)
	assert.True(t, want.Equal(out))

	_, err = Apply("otsu_local", gray, map[string]interface{}{"overlap": 0.95})
	assert.ErrorIs(t, err, raster.ErrInvalidArgument)
}

func TestErosionIterations(t *testing.T) {
	b := binaryNoise(20, 16, 8)
	twice, err := Apply("erosion", b, map[string]interface{}{"kernel_size": 3.0, "iterations": 2.0})
	require.NoError(t, err)
	once, err := morphology.Erode(b, 5)
	require.NoError(t, err)
	assert.True(t, once.Equal(twice))
}

func TestBinaryOperationsAcceptReplicatedColor(t *testing.T) {
	bin := binaryNoise(24, 20, 11)
	color, err := raster.Merge(bin, bin, bin)
	require.NoError(t, err)

	for _, name := range []string{"erosion", "dilation", "opening", "closing", "connected_components", "hough_lines"} {
		t.Run(name, func(t *testing.T) {
			want, err := Apply(name, bin, nil)
			require.NoError(t, err)
			got, err := Apply(name, color, nil)
			require.NoError(t, err)
			assert.True(t, want.Equal(got))
		})
	}

	mixed := noise(24, 20, 3, 12)
	_, err = Apply("erosion", mixed, nil)
	assert.ErrorIs(t, err, raster.ErrInvalidArgument)
}

func TestConnectedComponentsAcceptsStringConnectivity(t *testing.T) {
	b := raster.NewGray(3, 3)
	b.Set(0, 0, 0, 255)
	b.Set(1, 1, 0, 255)

	out, err := Apply("connected_components", b, map[string]interface{}{"connectivity": "4"})
	require.NoError(t, err)
	assert.True(t, out.IsColor())
	assert.NotEqual(t, out.At(0, 0, 0), out.At(1, 1, 0))
}

func TestProjectiveDefaultsKeepImage(t *testing.T) {
	b := noise(10, 8, 1, 9)
	out, err := Apply("projective", b, map[string]interface{}{"sampler": "nearest"})
	require.NoError(t, err)
	assert.True(t, b.Equal(out))
}

func TestParamsAccessors(t *testing.T) {
	p := Params{"f": 2.5, "i": 7, "s": "8", "b": "true", "n": 0.0, "text": "sobel"}
	assert.Equal(t, 2.5, p.Float("f", 0))
	assert.Equal(t, 7, p.Int("i", 0))
	assert.Equal(t, 8, p.Int("s", 0))
	assert.True(t, p.Bool("b", false))
	assert.False(t, p.Bool("n", true))
	assert.True(t, p.Bool("missing", true))
	assert.Equal(t, "sobel", p.String("text", ""))
	assert.Equal(t, 3, p.Int("missing", 3))
}

func TestSetLoggerRecordsCalls(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	SetLogger(logger)
	defer SetLogger(nil)

	_, err := Apply("invert", noise(4, 3, 1, 10), nil)
	require.NoError(t, err)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.DebugLevel, entry.Level)
	assert.Equal(t, "invert", entry.Data["algorithm"])
	assert.Equal(t, 4, entry.Data["width"])
	assert.Equal(t, 3, entry.Data["height"])
}

func TestNormalizeParameters(t *testing.T) {
	got, err := NormalizeParameters("connected_components", map[string]interface{}{"connectivity": 4})
	require.NoError(t, err)
	assert.Equal(t, "4", got["connectivity"])

	got, err = NormalizeParameters("median", map[string]interface{}{"kernel_size": "5", "fast": "false", "extra": 1})
	require.NoError(t, err)
	assert.Equal(t, 5.0, got["kernel_size"])
	assert.Equal(t, "false", got["fast"])
	assert.Equal(t, 1, got["extra"])

	_, err = NormalizeParameters("no_such_algorithm", nil)
	assert.Error(t, err)
}
