package filters

import (
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"

	"pixel-processing/internal/imageio"
	"pixel-processing/internal/raster"
)

// Guided runs the self-guided filter of He et al. on a grayscale image:
// every (2*radius+1) box fits q = a*I + b, with a = var/(var+eps) on
// intensities scaled to [0,1], and the box-averaged coefficients give the
// output. Flat regions are averaged while edges with variance well above
// eps pass through.
func Guided(b *raster.Buffer, radius int, eps float64) (*raster.Buffer, error) {
	if err := raster.RequireGray(b, "guided filter"); err != nil {
		return nil, err
	}
	if radius < 1 {
		return nil, fmt.Errorf("%w: guided filter radius %d must be at least 1", raster.ErrInvalidArgument, radius)
	}
	if !(eps > 0) || math.IsInf(eps, 0) {
		return nil, fmt.Errorf("%w: guided filter epsilon %v must be positive", raster.ErrInvalidArgument, eps)
	}

	src, err := imageio.ToMat(b)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	ksize := image.Pt(2*radius+1, 2*radius+1)
	i := gocv.NewMat()
	defer i.Close()
	src.ConvertToWithParams(&i, gocv.MatTypeCV32F, 1.0/255, 0)

	meanI := gocv.NewMat()
	defer meanI.Close()
	gocv.Blur(i, &meanI, ksize)

	sq := gocv.NewMat()
	defer sq.Close()
	gocv.Multiply(i, i, &sq)
	meanSq := gocv.NewMat()
	defer meanSq.Close()
	gocv.Blur(sq, &meanSq, ksize)

	meanISq := gocv.NewMat()
	defer meanISq.Close()
	gocv.Multiply(meanI, meanI, &meanISq)
	variance := gocv.NewMat()
	defer variance.Close()
	gocv.Subtract(meanSq, meanISq, &variance)

	denom := gocv.NewMat()
	defer denom.Close()
	variance.CopyTo(&denom)
	denom.AddFloat(float32(eps))
	a := gocv.NewMat()
	defer a.Close()
	gocv.Divide(variance, denom, &a)

	// b = meanI - a*meanI
	aMeanI := gocv.NewMat()
	defer aMeanI.Close()
	gocv.Multiply(a, meanI, &aMeanI)
	offset := gocv.NewMat()
	defer offset.Close()
	gocv.Subtract(meanI, aMeanI, &offset)

	meanA := gocv.NewMat()
	defer meanA.Close()
	gocv.Blur(a, &meanA, ksize)
	meanB := gocv.NewMat()
	defer meanB.Close()
	gocv.Blur(offset, &meanB, ksize)

	scaled := gocv.NewMat()
	defer scaled.Close()
	gocv.Multiply(meanA, i, &scaled)
	q := gocv.NewMat()
	defer q.Close()
	gocv.Add(scaled, meanB, &q)

	out := gocv.NewMat()
	defer out.Close()
	q.ConvertToWithParams(&out, gocv.MatTypeCV8U, 255, 0)
	return imageio.FromMat(out)
}
