package vision

import (
	"image"
	"image/color"
)

var grayOn = color.Gray{Y: 255}

// Component is a connected region of set pixels in a binary mask.
type Component struct {
	Rect    image.Rectangle
	Area    int // number of set pixels
	CenterX int
	CenterY int
}

// TouchesBorder reports whether the component reaches the mask boundary.
func (c Component) TouchesBorder(bounds image.Rectangle) bool {
	return c.Rect.Min.X == bounds.Min.X || c.Rect.Min.Y == bounds.Min.Y ||
		c.Rect.Max.X == bounds.Max.X || c.Rect.Max.Y == bounds.Max.Y
}

// ConnectedComponents labels 8-connected regions of set pixels and returns one
// Component per region with at least minArea pixels.
func ConnectedComponents(mask *image.Gray, minArea int) []Component {
	bounds := mask.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return nil
	}

	visited := make([]bool, w*h)
	idx := func(x, y int) int { return (y-bounds.Min.Y)*w + (x - bounds.Min.X) }

	var components []Component
	queue := make([]image.Point, 0, 256)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if visited[idx(x, y)] || mask.GrayAt(x, y).Y == 0 {
				continue
			}

			// Flood-fill this region.
			queue = queue[:0]
			queue = append(queue, image.Pt(x, y))
			visited[idx(x, y)] = true

			area := 0
			var sumX, sumY int
			rect := image.Rectangle{Min: image.Pt(x, y), Max: image.Pt(x+1, y+1)}

			for len(queue) > 0 {
				p := queue[len(queue)-1]
				queue = queue[:len(queue)-1]

				area++
				sumX += p.X
				sumY += p.Y
				rect = rect.Union(image.Rectangle{Min: p, Max: p.Add(image.Pt(1, 1))})

				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						if dx == 0 && dy == 0 {
							continue
						}
						nx, ny := p.X+dx, p.Y+dy
						if nx < bounds.Min.X || nx >= bounds.Max.X || ny < bounds.Min.Y || ny >= bounds.Max.Y {
							continue
						}
						if !visited[idx(nx, ny)] && mask.GrayAt(nx, ny).Y > 0 {
							visited[idx(nx, ny)] = true
							queue = append(queue, image.Pt(nx, ny))
						}
					}
				}
			}

			if area >= minArea {
				components = append(components, Component{
					Rect:    rect,
					Area:    area,
					CenterX: sumX / area,
					CenterY: sumY / area,
				})
			}
		}
	}

	return components
}
