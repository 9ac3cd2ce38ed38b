// Concrete implementations of quality metrics
package metrics

import (
	"fmt"
	"math"

	"gocv.io/x/gocv"

	"pixel-processing/internal/raster"
	"pixel-processing/internal/threshold"
)

// meanSquaredError compares the luma of two equally sized images.
func meanSquaredError(original, processed *raster.Buffer) (float64, error) {
	f1, f2, err := lumaPair(original, processed)
	if err != nil {
		return 0, err
	}
	defer f1.Close()
	defer f2.Close()

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(f1, f2, &diff)

	diffSq := product(diff, diff)
	defer diffSq.Close()
	return diffSq.Mean().Val1, nil
}

// PSNR implements Peak Signal-to-Noise Ratio metric
type PSNR struct{}

// NewPSNR creates a new PSNR metric
func NewPSNR() *PSNR {
	return &PSNR{}
}

// Calculate returns +Inf for identical images.
func (p *PSNR) Calculate(original, processed *raster.Buffer) (float64, error) {
	mse, err := meanSquaredError(original, processed)
	if err != nil {
		return 0, err
	}
	if mse == 0 {
		return math.Inf(1), nil
	}
	return 20 * math.Log10(255/math.Sqrt(mse)), nil
}

func (p *PSNR) GetName() string {
	return "PSNR"
}

func (p *PSNR) GetDescription() string {
	return "Peak Signal-to-Noise Ratio - measures image quality"
}

func (p *PSNR) GetRange() (float64, float64) {
	return 0, 100 // Practical range, can go higher
}

func (p *PSNR) IsHigherBetter() bool {
	return true
}

// SSIM implements the Structural Similarity Index: the mean of the SSIM
// map over 11x11 Gaussian windows of sigma 1.5
type SSIM struct{}

// NewSSIM creates a new SSIM metric
func NewSSIM() *SSIM {
	return &SSIM{}
}

func (s *SSIM) Calculate(original, processed *raster.Buffer) (float64, error) {
	f1, f2, err := lumaPair(original, processed)
	if err != nil {
		return 0, err
	}
	defer f1.Close()
	defer f2.Close()

	const (
		c1 = 6.5025  // (0.01 * 255)^2
		c2 = 58.5225 // (0.03 * 255)^2
	)

	mu1, mu2 := gaussianMean(f1), gaussianMean(f2)
	defer mu1.Close()
	defer mu2.Close()
	mu1Sq, mu2Sq, mu1Mu2 := product(mu1, mu1), product(mu2, mu2), product(mu1, mu2)
	defer mu1Sq.Close()
	defer mu2Sq.Close()
	defer mu1Mu2.Close()

	f1Sq, f2Sq, f1f2 := product(f1, f1), product(f2, f2), product(f1, f2)
	defer f1Sq.Close()
	defer f2Sq.Close()
	defer f1f2.Close()
	sigma1Sq, sigma2Sq, sigma12 := gaussianMean(f1Sq), gaussianMean(f2Sq), gaussianMean(f1f2)
	defer sigma1Sq.Close()
	defer sigma2Sq.Close()
	defer sigma12.Close()
	gocv.Subtract(sigma1Sq, mu1Sq, &sigma1Sq)
	gocv.Subtract(sigma2Sq, mu2Sq, &sigma2Sq)
	gocv.Subtract(sigma12, mu1Mu2, &sigma12)

	numerator1, numerator2 := affine(mu1Mu2, 2, c1), affine(sigma12, 2, c2)
	defer numerator1.Close()
	defer numerator2.Close()
	numerator := product(numerator1, numerator2)
	defer numerator.Close()

	means, variances := gocv.NewMat(), gocv.NewMat()
	defer means.Close()
	defer variances.Close()
	gocv.Add(mu1Sq, mu2Sq, &means)
	gocv.Add(sigma1Sq, sigma2Sq, &variances)
	denominator1, denominator2 := affine(means, 1, c1), affine(variances, 1, c2)
	defer denominator1.Close()
	defer denominator2.Close()
	denominator := product(denominator1, denominator2)
	defer denominator.Close()

	ssimMap := gocv.NewMat()
	defer ssimMap.Close()
	gocv.Divide(numerator, denominator, &ssimMap)
	return ssimMap.Mean().Val1, nil
}

func (s *SSIM) GetName() string {
	return "SSIM"
}

func (s *SSIM) GetDescription() string {
	return "Structural Similarity Index - measures perceptual quality"
}

func (s *SSIM) GetRange() (float64, float64) {
	return 0, 1
}

func (s *SSIM) IsHigherBetter() bool {
	return true
}

// FMeasure implements F-measure for binarization quality. Pixels above 127
// are foreground; non-binary inputs are binarised with Otsu first.
type FMeasure struct{}

// NewFMeasure creates a new F-measure metric
func NewFMeasure() *FMeasure {
	return &FMeasure{}
}

func (f *FMeasure) Calculate(original, processed *raster.Buffer) (float64, error) {
	if err := checkPair(original, processed); err != nil {
		return 0, err
	}

	origBinary, err := f.ensureBinary(original)
	if err != nil {
		return 0, err
	}
	procBinary, err := f.ensureBinary(processed)
	if err != nil {
		return 0, err
	}

	tp, fp, fn := f.calculateConfusionMatrix(origBinary, procBinary)

	precision := 0.0
	if tp+fp > 0 {
		precision = tp / (tp + fp)
	}
	recall := 0.0
	if tp+fn > 0 {
		recall = tp / (tp + fn)
	}
	if precision+recall == 0 {
		return 0, nil
	}
	return 2 * (precision * recall) / (precision + recall), nil
}

func (f *FMeasure) ensureBinary(input *raster.Buffer) (*raster.Buffer, error) {
	gray := input
	if !gray.IsGray() {
		gray = gray.Grayscale()
	}
	if gray.IsBinary() {
		return gray, nil
	}
	t, err := threshold.Otsu(gray)
	if err != nil {
		return nil, err
	}
	return threshold.Manual(gray, t)
}

func (f *FMeasure) calculateConfusionMatrix(original, processed *raster.Buffer) (tp, fp, fn float64) {
	for i, o := range original.Pix {
		origForeground := o > 127
		procForeground := processed.Pix[i] > 127

		switch {
		case origForeground && procForeground:
			tp++
		case !origForeground && procForeground:
			fp++
		case origForeground && !procForeground:
			fn++
		}
	}
	return tp, fp, fn
}

func (f *FMeasure) GetName() string {
	return "F-Measure"
}

func (f *FMeasure) GetDescription() string {
	return "F-measure for binarization quality assessment"
}

func (f *FMeasure) GetRange() (float64, float64) {
	return 0, 1
}

func (f *FMeasure) IsHigherBetter() bool {
	return true
}

// MSE implements Mean Squared Error metric
type MSE struct{}

// NewMSE creates a new MSE metric
func NewMSE() *MSE {
	return &MSE{}
}

func (m *MSE) Calculate(original, processed *raster.Buffer) (float64, error) {
	return meanSquaredError(original, processed)
}

func (m *MSE) GetName() string {
	return "MSE"
}

func (m *MSE) GetDescription() string {
	return "Mean Squared Error of the luma"
}

func (m *MSE) GetRange() (float64, float64) {
	return 0, 65025
}

func (m *MSE) IsHigherBetter() bool {
	return false
}

// ratio divides measure(processed) by measure(original), 1 when the
// original has nothing to measure.
func ratio(original, processed *raster.Buffer, measure func(gocv.Mat) float64) (float64, error) {
	if original == nil || processed == nil {
		return 0, fmt.Errorf("%w: empty images", raster.ErrInvalidArgument)
	}
	f1, err := lumaMat(original)
	if err != nil {
		return 0, err
	}
	defer f1.Close()
	orig := measure(f1)
	if orig == 0 {
		return 1.0, nil
	}

	f2, err := lumaMat(processed)
	if err != nil {
		return 0, err
	}
	defer f2.Close()
	return measure(f2) / orig, nil
}

// ContrastRatio compares the standard deviation of the two images
type ContrastRatio struct{}

// NewContrastRatio creates a new contrast ratio metric
func NewContrastRatio() *ContrastRatio {
	return &ContrastRatio{}
}

func (c *ContrastRatio) Calculate(original, processed *raster.Buffer) (float64, error) {
	return ratio(original, processed, stdDev)
}

func (c *ContrastRatio) GetName() string {
	return "Contrast Ratio"
}

func (c *ContrastRatio) GetDescription() string {
	return "Ratio of contrast preservation"
}

func (c *ContrastRatio) GetRange() (float64, float64) {
	return 0, 2
}

func (c *ContrastRatio) IsHigherBetter() bool {
	return true
}

// Sharpness compares the variance of the Laplacian of the two images
type Sharpness struct{}

// NewSharpness creates a new sharpness metric
func NewSharpness() *Sharpness {
	return &Sharpness{}
}

func (s *Sharpness) Calculate(original, processed *raster.Buffer) (float64, error) {
	return ratio(original, processed, laplacianVariance)
}

func (s *Sharpness) GetName() string {
	return "Sharpness"
}

func (s *Sharpness) GetDescription() string {
	return "Edge preservation measure"
}

func (s *Sharpness) GetRange() (float64, float64) {
	return 0, 2
}

func (s *Sharpness) IsHigherBetter() bool {
	return true
}
