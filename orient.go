package pdfrotate

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/bmharper/cimg/v2"
	"github.com/bmharper/docangle"
	"github.com/bmharper/pdfrotate/directive"
	"github.com/bmharper/textorient"
	"github.com/gen2brain/go-fitz"
	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
)

var errNoPageImage = errors.New("no single image on page")

// Returns true if this PDF is a scanned document
func (d *Document) IsScanned() (bool, error) {
	// pdfcpu is not able to extract the text from the document, which is why we use
	// go-fitz for this. Checking that there is 1 image per page is not sufficient,
	// because a document may carry exactly one high resolution logo per page,
	// which would look just like a scanned page.
	fz, err := d.fitz()
	if err != nil {
		return false, err
	}
	for i := range fz.NumPage() {
		txt, err := fz.Text(i)
		if err != nil {
			return false, err
		}
		if txt != "" {
			return false, nil
		}
	}
	return true, nil
}

func (d *Document) fitz() (*fitz.Document, error) {
	if d.fz == nil {
		fz, err := fitz.NewFromMemory(d.data)
		if err != nil {
			return nil, err
		}
		d.fz = fz
	}
	return d.fz, nil
}

// SuggestRotations returns, for a scanned document, the quarter turn that
// makes each page upright.
//
// docangle finds whether a page lies sideways but cannot tell which way, so
// the page is first turned onto its text lines and then the orientation
// network decides between 0, 90, 180 and 270 degrees. Pages that do not hold
// exactly one image, or whose image is too small to classify, are left alone.
func (d *Document) SuggestRotations(orient *textorient.Orient, maxSkew float64) (directive.Rotations, error) {
	rot := make(directive.Rotations, d.NumPages)
	for page := 0; page < d.NumPages; page++ {
		raw, img, err := d.getImageOnPage(page)
		if errors.Is(err, errNoPageImage) {
			d.verbose("skipping page", "page", page+1, "reason", err.Error())
			continue
		}
		if err != nil {
			return nil, err
		}

		angle := d.getImageAngle(img, maxSkew)
		fixed := img
		if angle != 0 {
			fixed = d.rotateImage(img, -angle)
		}
		if len(textorient.SplitImage(fixed, 1, textorient.TileSize)) == 0 {
			d.verbose("skipping page", "page", page+1, "reason", "image too small", "width", fixed.Width, "height", fixed.Height)
			continue
		}
		orientation, err := orient.GetImageOrientation(fixed)
		if err != nil {
			return nil, fmt.Errorf("page %v: %w", page+1, err)
		}

		rot[page] = correction(angle, orientation)
		d.verbose("measured page", "page", page+1, "bytes", len(raw), "angle", fmt.Sprintf("%.1f", angle),
			"orientation", orientation, "suggested", rot[page].String())
	}
	return rot, nil
}

// correction combines the quarter turn that lays a page onto its text lines
// (from the measured angle, positive meaning clockwise) with the turn the
// orientation network asks for afterwards. The result lies in (-180, 180].
func correction(angle float64, orientation int) directive.Angle {
	turn := -int(math.Round(angle/90)) * 90
	switch orientation {
	case textorient.Angle90:
		turn -= 90
	case textorient.Angle180:
		turn += 180
	case textorient.Angle270:
		turn += 90
	}
	turn = ((turn % 360) + 360) % 360
	if turn > 180 {
		turn -= 360
	}
	return directive.Angle(turn)
}

func (d *Document) rotateImage(img *cimg.Image, angle float64) *cimg.Image {
	// Small skews are clipped to the original frame, quarter turns swap the sides.
	width, height := img.Width, img.Height
	if math.Abs(math.Abs(angle)-90) < 45 {
		width, height = height, width
	}
	fixed := cimg.NewImage(width, height, img.Format)
	cimg.Rotate(img, fixed, angle*math.Pi/180, nil)
	return fixed
}

func (d *Document) getImageAngle(img *cimg.Image, maxSkew float64) float64 {
	params := docangle.NewWhiteLinesParams()
	params.Include90Degrees = true
	params.MinDeltaDegrees = -maxSkew
	params.MaxDeltaDegrees = maxSkew
	_, angle := docangle.GetAngleWhiteLines(makeDocAngleImage(img), params)
	return angle
}

// Returns raw image bytes, decompressed image, and error
func (d *Document) getImageOnPage(pageIdx int) ([]byte, *cimg.Image, error) {
	pageName := fmt.Sprintf("%d", pageIdx+1)
	// ExtractImagesRaw overwrites conf.Cmd, so it gets its own copy.
	conf := *d.conf
	images, err := pdfapi.ExtractImagesRaw(d.reader(), []string{pageName}, &conf)
	if err != nil {
		return nil, nil, err
	}
	if len(images) != 1 || len(images[0]) != 1 {
		return nil, nil, fmt.Errorf("%w %v", errNoPageImage, pageIdx+1)
	}
	for _, img := range images[0] {
		raw, err := io.ReadAll(img)
		if err != nil {
			return nil, nil, err
		}
		dec, err := cimg.Decompress(raw)
		if err != nil {
			return nil, nil, err
		}
		return raw, dec, nil
	}
	return nil, nil, fmt.Errorf("%w %v", errNoPageImage, pageIdx+1)
}

func makeDocAngleImage(img *cimg.Image) *docangle.Image {
	if img.Format != cimg.PixelFormatGRAY || img.Stride != img.Width {
		img = img.ToGray()
	}
	return &docangle.Image{
		Pixels: img.Pixels,
		Width:  img.Width,
		Height: img.Height,
	}
}
