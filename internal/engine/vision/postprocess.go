package vision

import (
	"sort"

	"github.com/kotobatl/kotoba/internal/engine"
)

// minRegionSide discards detector noise: boxes under this size on either
// side, measured in original image coordinates, are dropped.
const minRegionSide = 10

// finishRegions filters noise, orders regions top-to-bottom (ties broken
// left-to-right), and assigns monotonically increasing line indices.
func finishRegions(regions []engine.Region) []engine.Region {
	kept := regions[:0]
	for _, r := range regions {
		if r.Box.W < minRegionSide || r.Box.H < minRegionSide {
			continue
		}
		kept = append(kept, r)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].Box.Y != kept[j].Box.Y {
			return kept[i].Box.Y < kept[j].Box.Y
		}
		return kept[i].Box.X < kept[j].Box.X
	})
	for i := range kept {
		kept[i].LineIndex = i
	}
	return kept
}
