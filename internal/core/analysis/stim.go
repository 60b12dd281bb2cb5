package analysis

import "image"

// FilterLabels zeroes out every object whose label is not flagged for
// processing, leaving a mask that contains only the cells selected for
// stimulation.
func FilterLabels(mask *image.Gray16, keep map[int]bool) *image.Gray16 {
	b := mask.Bounds()
	out := image.NewGray16(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			v := mask.Gray16At(x, y)
			if v.Y != 0 && keep[int(v.Y)] {
				out.SetGray16(x, y, v)
			}
		}
	}
	return out
}

// ErodeMask shrinks every labeled region by a disk of the given radius, a
// guard against stimulating the edge of a touching neighbor. It is a
// grayscale minimum filter: a pixel keeps its value only if no smaller
// value (background included) lies within the disk. Radius zero returns a
// copy.
func ErodeMask(mask *image.Gray16, radius int) *image.Gray16 {
	b := mask.Bounds()
	out := image.NewGray16(b)
	if radius <= 0 {
		copy(out.Pix, mask.Pix)
		return out
	}

	offsets := diskOffsets(radius)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			minV := mask.Gray16At(x, y).Y
			for _, d := range offsets {
				nx, ny := x+d[0], y+d[1]
				if nx < b.Min.X || nx >= b.Max.X || ny < b.Min.Y || ny >= b.Max.Y {
					continue
				}
				if v := mask.Gray16At(nx, ny).Y; v < minV {
					minV = v
				}
			}
			if minV != 0 {
				out.SetGray16(x, y, mask.Gray16At(x, y))
			}
		}
	}
	return out
}

// diskOffsets enumerates the neighborhood of a disk structuring element.
func diskOffsets(radius int) [][2]int {
	var out [][2]int
	r2 := radius * radius
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= r2 {
				out = append(out, [2]int{dx, dy})
			}
		}
	}
	return out
}

// CountLabels returns the number of distinct non-background labels in mask.
func CountLabels(mask *image.Gray16) int {
	seen := map[uint16]bool{}
	b := mask.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if v := mask.Gray16At(x, y).Y; v != 0 {
				seen[v] = true
			}
		}
	}
	return len(seen)
}
