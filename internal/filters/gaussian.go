package filters

import (
	"fmt"
	"math"

	"pixel-processing/internal/raster"
)

// GaussianKernel1D returns the normalised 1-D Gaussian of the given
// variance, truncated at radius ceil(3*sigma) (at least 1).
func GaussianKernel1D(variance float64) ([]float64, error) {
	if variance <= 0 || math.IsNaN(variance) || math.IsInf(variance, 0) {
		return nil, fmt.Errorf("%w: variance %v must be positive", raster.ErrInvalidArgument, variance)
	}
	sigma := math.Sqrt(variance)
	radius := int(math.Ceil(3 * sigma))
	if radius < 1 {
		radius = 1
	}
	k := make([]float64, 2*radius+1)
	sum := 0.0
	for i := range k {
		d := float64(i - radius)
		k[i] = math.Exp(-d * d / (2 * variance))
		sum += k[i]
	}
	for i := range k {
		k[i] /= sum
	}
	return k, nil
}

// Gaussian blurs b with a separable Gaussian of the given variance.
// Both passes run in floating point; rounding happens once at the end.
func Gaussian(b *raster.Buffer, variance float64) (*raster.Buffer, error) {
	k, err := GaussianKernel1D(variance)
	if err != nil {
		return nil, err
	}
	size := len(k)
	p, err := raster.PadForMask(b, size)
	if err != nil {
		return nil, err
	}
	ch := b.Channels

	// horizontal pass over every padded row, vertical pass into the output
	tmp := make([]float64, p.Height*b.Width*ch)
	for y := 0; y < p.Height; y++ {
		row := p.Row(y)
		for x := 0; x < b.Width; x++ {
			for c := 0; c < ch; c++ {
				acc := 0.0
				for i, w := range k {
					acc += w * float64(row[(x+i)*ch+c])
				}
				tmp[(y*b.Width+x)*ch+c] = acc
			}
		}
	}

	out := b.Blank()
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			for c := 0; c < ch; c++ {
				acc := 0.0
				for i, w := range k {
					acc += w * tmp[((y+i)*b.Width+x)*ch+c]
				}
				out.Pix[out.Offset(x, y)+c] = raster.Clamp(acc)
			}
		}
	}
	return out, nil
}

// BilateralMaskSize returns the odd window size used for a spatial sigma:
// ceil(4*sigmaD), bumped to the next odd integer when even.
func BilateralMaskSize(sigmaD float64) int {
	size := int(math.Ceil(4 * sigmaD))
	if size%2 == 0 {
		size++
	}
	return size
}

// BilateralGaussian smooths a grayscale image with weights that combine a
// spatial Gaussian (sigmaD) and a range Gaussian (sigmaR) of the intensity
// difference to the centre pixel, so strong edges are preserved.
func BilateralGaussian(b *raster.Buffer, sigmaD, sigmaR float64) (*raster.Buffer, error) {
	if err := raster.RequireGray(b, "bilateral filter"); err != nil {
		return nil, err
	}
	if sigmaD <= 0 || sigmaR <= 0 || math.IsNaN(sigmaD) || math.IsNaN(sigmaR) {
		return nil, fmt.Errorf("%w: sigmas must be positive, got sigmaD=%v sigmaR=%v", raster.ErrInvalidArgument, sigmaD, sigmaR)
	}
	size := BilateralMaskSize(sigmaD)
	radius := size / 2
	p, err := raster.PadForMask(b, size)
	if err != nil {
		return nil, err
	}

	spatial := make([]float64, size*size)
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			spatial[(dy+radius)*size+dx+radius] = math.Exp(-float64(dx*dx+dy*dy) / (2 * sigmaD * sigmaD))
		}
	}
	var rangeW [256]float64
	for d := range rangeW {
		rangeW[d] = math.Exp(-float64(d*d) / (2 * sigmaR * sigmaR))
	}

	out := b.Blank()
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			center := int(b.Pix[y*b.Stride+x])
			num, den := 0.0, 0.0
			for wy := 0; wy < size; wy++ {
				row := p.Row(y + wy)
				for wx := 0; wx < size; wx++ {
					v := int(row[x+wx])
					d := v - center
					if d < 0 {
						d = -d
					}
					w := spatial[wy*size+wx] * rangeW[d]
					num += w * float64(v)
					den += w
				}
			}
			// den >= 1 because the centre weight is exp(0)*exp(0)
			out.Pix[y*out.Stride+x] = raster.Clamp(num / den)
		}
	}
	return out, nil
}
