package imageio

import (
	"fmt"

	"gocv.io/x/gocv"

	"pixel-processing/internal/raster"
)

// ToMat copies b into a new 8-bit Mat with the same channel order. The
// caller closes the Mat.
func ToMat(b *raster.Buffer) (gocv.Mat, error) {
	matType := gocv.MatTypeCV8UC1
	if b.IsColor() {
		matType = gocv.MatTypeCV8UC3
	}
	data := make([]byte, 0, b.Width*b.Height*b.Channels)
	for y := 0; y < b.Height; y++ {
		data = append(data, b.Row(y)...)
	}
	mat, err := gocv.NewMatFromBytes(b.Height, b.Width, matType, data)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("convert to mat: %w", err)
	}
	return mat, nil
}

// FromMat copies an 8-bit one, three or four channel Mat into a buffer.
// Alpha is dropped.
func FromMat(mat gocv.Mat) (*raster.Buffer, error) {
	if mat.Empty() {
		return nil, fmt.Errorf("%w: empty mat", raster.ErrInvalidArgument)
	}

	src := mat
	switch mat.Type() {
	case gocv.MatTypeCV8UC1, gocv.MatTypeCV8UC3:
	case gocv.MatTypeCV8UC4:
		src = gocv.NewMat()
		defer src.Close()
		gocv.CvtColor(mat, &src, gocv.ColorBGRAToBGR)
	default:
		return nil, fmt.Errorf("%w: unsupported mat type %v", raster.ErrInvalidArgument, mat.Type())
	}
	if !src.IsContinuous() {
		src = src.Clone()
		defer src.Close()
	}

	data, err := src.DataPtrUint8()
	if err != nil {
		return nil, fmt.Errorf("read mat: %w", err)
	}
	return raster.FromPix(src.Cols(), src.Rows(), src.Channels(), data)
}
