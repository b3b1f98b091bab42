package vision

import (
	"context"
	"image"
	"math"
	"sort"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/ai-synapse/ocr-core/db"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	minTableArea = 10000 // bounding-box pixels for a table candidate
	minCellArea  = 100
	rowTolerance = 20 // px tolerance for grouping cells into a row
	lineLength   = 40 // morphological kernel length for ruled lines
)

const (
	methodContourDetection = "contour_detection"
	methodFailed           = "failed"
)

// CellRecognizer extracts the text of a single cell image. Errors and empty
// output are tolerated; the cell just stays blank.
type CellRecognizer func(ctx context.Context, cell *image.Gray) (string, error)

// TableDetector finds ruled tables on a page and reconstructs their cell grid.
type TableDetector struct {
	recognize CellRecognizer
}

func NewTableDetector(recognize CellRecognizer) *TableDetector {
	return &TableDetector{recognize: recognize}
}

// DetectTables returns one TableData per table candidate found on the page.
// The page is expected to be the preprocessed binary image (dark ink on
// white). Per-table extraction failures degrade to an empty TableData with an
// extraction method of "failed"; DetectTables itself never fails.
func (d *TableDetector) DetectTables(ctx context.Context, page *image.Gray, pageNumber int) []db.TableData {
	ink := AdaptiveThreshold(page, 15, 2, true)

	horizontal := OpenHorizontal(ink, lineLength)
	vertical := OpenVertical(ink, lineLength)
	grid := Union(horizontal, vertical)

	var tables []db.TableData
	for _, candidate := range ConnectedComponents(grid, 1) {
		w, h := candidate.Rect.Dx(), candidate.Rect.Dy()
		if w*h < minTableArea || h == 0 {
			continue
		}
		aspect := float64(w) / float64(h)
		if aspect <= 0.2 || aspect >= 5.0 {
			continue
		}

		tables = append(tables, d.extractTable(ctx, page, candidate.Rect, pageNumber))
	}

	logger.Info("Table detection finished",
		zap.Int("pageNumber", pageNumber), zap.Int("tables", len(tables)))
	return tables
}

func (d *TableDetector) extractTable(ctx context.Context, page *image.Gray, region image.Rectangle, pageNumber int) (out db.TableData) {
	bounds := db.BoundingBox{
		X:      float64(region.Min.X),
		Y:      float64(region.Min.Y),
		Width:  float64(region.Dx()),
		Height: float64(region.Dy()),
	}

	out = db.TableData{
		TableID:          uuid.New().String(),
		PageNumber:       pageNumber,
		Bounds:           bounds,
		Cells:            [][]string{},
		ExtractionMethod: methodContourDetection,
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Table extraction failed",
				zap.Int("pageNumber", pageNumber), zap.Any("cause", r))
			out = db.TableData{
				TableID:          uuid.New().String(),
				PageNumber:       pageNumber,
				Bounds:           bounds,
				Cells:            [][]string{},
				ExtractionMethod: methodFailed,
			}
		}
	}()

	crop := Crop(page, region)
	cells := detectCells(crop)
	rows := groupRows(cells)

	matrix := make([][]string, 0, len(rows))
	totalChars := 0
	for _, row := range rows {
		texts := make([]string, 0, len(row))
		for _, cell := range row {
			text := d.recognizeCell(ctx, crop, cell)
			totalChars += len(text)
			texts = append(texts, text)
		}
		matrix = append(matrix, texts)
	}

	out.Rows = len(matrix)
	if len(matrix) > 0 {
		out.Columns = len(matrix[0])
	}
	out.Cells = matrix
	out.Confidence = tableConfidence(len(cells), matrix, totalChars)
	return out
}

func (d *TableDetector) recognizeCell(ctx context.Context, crop *image.Gray, cell Component) string {
	if d.recognize == nil {
		return ""
	}
	text, err := d.recognize(ctx, Crop(crop, cell.Rect))
	if err != nil {
		return ""
	}
	return text
}

// detectCells finds cell interiors: the connected non-line regions enclosed by
// the table grid. The region spilling over the outer border is discarded.
func detectCells(crop *image.Gray) []Component {
	ink := AdaptiveThreshold(crop, 15, 2, true)
	grid := Union(OpenHorizontal(ink, lineLength), OpenVertical(ink, lineLength))
	interior := Invert(grid)

	var cells []Component
	for _, c := range ConnectedComponents(interior, minCellArea) {
		if c.TouchesBorder(crop.Bounds()) {
			continue
		}
		cells = append(cells, c)
	}
	return cells
}

// groupRows orders cells top-to-bottom, left-to-right. A cell joins the
// current row while its center-y stays within rowTolerance of the row anchor.
func groupRows(cells []Component) [][]Component {
	if len(cells) == 0 {
		return nil
	}

	sorted := append([]Component(nil), cells...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].CenterY != sorted[j].CenterY {
			return sorted[i].CenterY < sorted[j].CenterY
		}
		return sorted[i].CenterX < sorted[j].CenterX
	})

	var rows [][]Component
	anchorY := sorted[0].CenterY
	current := []Component{}

	for _, cell := range sorted {
		if abs(cell.CenterY-anchorY) < rowTolerance {
			current = append(current, cell)
			continue
		}
		rows = append(rows, sortRow(current))
		current = []Component{cell}
		anchorY = cell.CenterY
	}
	rows = append(rows, sortRow(current))
	return rows
}

func sortRow(row []Component) []Component {
	sort.Slice(row, func(i, j int) bool { return row[i].CenterX < row[j].CenterX })
	return row
}

// tableConfidence scores the reconstruction: how many cells were found, how
// uniform the row lengths are and how much text came out.
func tableConfidence(cellCount int, matrix [][]string, totalChars int) float64 {
	if cellCount == 0 || len(matrix) == 0 {
		return 0
	}

	cellScore := math.Min(float64(cellCount)/50.0, 1.0)

	mean := 0.0
	for _, row := range matrix {
		mean += float64(len(row))
	}
	mean /= float64(len(matrix))

	variance := 0.0
	for _, row := range matrix {
		d := float64(len(row)) - mean
		variance += d * d
	}
	variance /= float64(len(matrix))
	consistency := 1.0 - math.Sqrt(variance)/(mean+1)

	textScore := math.Min(float64(totalChars)/500.0, 1.0)

	confidence := 0.3*cellScore + 0.4*consistency + 0.3*textScore
	confidence = math.Round(confidence*1000) / 1000
	return math.Max(0, math.Min(1, confidence))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
