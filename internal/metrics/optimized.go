// Metric kernels on gocv matrices
package metrics

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"pixel-processing/internal/imageio"
	"pixel-processing/internal/raster"
)

// lumaMat converts b to luma and widens it to a single-channel CV64F Mat.
// The caller closes the Mat.
func lumaMat(b *raster.Buffer) (gocv.Mat, error) {
	if !b.IsGray() {
		b = b.Grayscale()
	}
	u8, err := imageio.ToMat(b)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer u8.Close()

	f := gocv.NewMat()
	u8.ConvertTo(&f, gocv.MatTypeCV64F)
	return f, nil
}

// lumaPair checks the pair and converts both images with lumaMat.
func lumaPair(original, processed *raster.Buffer) (gocv.Mat, gocv.Mat, error) {
	if err := checkPair(original, processed); err != nil {
		return gocv.NewMat(), gocv.NewMat(), err
	}
	f1, err := lumaMat(original)
	if err != nil {
		return gocv.NewMat(), gocv.NewMat(), err
	}
	f2, err := lumaMat(processed)
	if err != nil {
		f1.Close()
		return gocv.NewMat(), gocv.NewMat(), err
	}
	return f1, f2, nil
}

// affine returns a*m + b.
func affine(m gocv.Mat, a, b float64) gocv.Mat {
	out := gocv.NewMat()
	m.ConvertToWithParams(&out, gocv.MatTypeCV64F, float32(a), float32(b))
	return out
}

// gaussianMean is the local mean under the 11x11 window of sigma 1.5,
// replicating edge pixels.
func gaussianMean(m gocv.Mat) gocv.Mat {
	out := gocv.NewMat()
	gocv.GaussianBlur(m, &out, image.Pt(11, 11), 1.5, 1.5, gocv.BorderReplicate)
	return out
}

func product(a, b gocv.Mat) gocv.Mat {
	out := gocv.NewMat()
	gocv.Multiply(a, b, &out)
	return out
}

// stdDev is the population standard deviation of a single-channel Mat.
func stdDev(m gocv.Mat) float64 {
	mean, std := gocv.NewMat(), gocv.NewMat()
	defer mean.Close()
	defer std.Close()
	gocv.MeanStdDev(m, &mean, &std)
	return std.GetDoubleAt(0, 0)
}

// laplacianVariance is the variance of the 4-neighbour Laplacian.
func laplacianVariance(m gocv.Mat) float64 {
	lap := gocv.NewMat()
	defer lap.Close()
	gocv.Laplacian(m, &lap, gocv.MatTypeCV64F, 1, 1, 0, gocv.BorderReplicate)
	sd := stdDev(lap)
	return sd * sd
}

// checkPair checks that both images exist and share their dimensions.
// Channel counts may differ; metrics compare luma.
func checkPair(original, processed *raster.Buffer) error {
	if original == nil || processed == nil {
		return fmt.Errorf("%w: empty images", raster.ErrInvalidArgument)
	}
	if original.Width != processed.Width || original.Height != processed.Height {
		return fmt.Errorf("%w: image dimensions mismatch: %dx%d vs %dx%d", raster.ErrInvalidArgument,
			original.Width, original.Height, processed.Width, processed.Height)
	}
	return nil
}
