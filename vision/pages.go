package vision

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	_ "golang.org/x/image/tiff"
)

// PageImages turns an uploaded file into one image per page. Scanned PDFs are
// decomposed with pdfcpu (each page carries its scan as an embedded image);
// plain raster uploads are single-page documents. Undecodable input is a
// pipeline-level failure for the caller to surface.
func PageImages(fileName string, data []byte) ([]image.Image, error) {
	if strings.HasSuffix(strings.ToLower(fileName), ".pdf") {
		return pdfPageImages(data)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", fileName, err)
	}
	return []image.Image{img}, nil
}

func pdfPageImages(data []byte) ([]image.Image, error) {
	pages, err := api.ExtractImagesRaw(bytes.NewReader(data), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("extract pdf page images: %w", err)
	}

	type pageImage struct {
		pageNr int
		img    image.Image
	}
	var decoded []pageImage

	for _, objects := range pages {
		// A scanned page normally carries exactly one embedded image; when a
		// page has several, keep the largest.
		var best image.Image
		pageNr := 0
		for _, obj := range objects {
			raw, err := io.ReadAll(obj)
			if err != nil {
				continue
			}
			img, _, err := image.Decode(bytes.NewReader(raw))
			if err != nil {
				continue
			}
			if best == nil || area(img) > area(best) {
				best = img
				pageNr = obj.PageNr
			}
		}
		if best != nil {
			decoded = append(decoded, pageImage{pageNr: pageNr, img: best})
		}
	}

	if len(decoded) == 0 {
		return nil, errors.New("pdf contains no decodable page images")
	}

	sort.Slice(decoded, func(i, j int) bool { return decoded[i].pageNr < decoded[j].pageNr })

	images := make([]image.Image, 0, len(decoded))
	for _, p := range decoded {
		images = append(images, p.img)
	}
	return images, nil
}

func area(img image.Image) int {
	return img.Bounds().Dx() * img.Bounds().Dy()
}
