package conquest

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// diagonalChance is the probability that a diagonal grid neighbor also
// becomes adjacent, on top of the guaranteed orthogonal links.
const diagonalChance = 0.3

var regionBaseNames = []string{
	"Avalon", "Brimhold", "Caldera", "Dunmore", "Eastmarch", "Fenwick",
	"Galloway", "Highgarden", "Ironvale", "Jarlsberg", "Kestrel", "Lowfell",
	"Mirefield", "Northwood", "Oakhurst", "Pinecrest", "Quarry", "Ravenholm",
	"Stonebridge", "Thornbury", "Umberfall", "Valewood", "Westcliff", "Yarrow",
}

var regionNamePrefixes = []string{
	"North", "South", "East", "West", "Upper", "Lower", "New", "Old", "Central",
}

// GenerateMap lays regionCount regions on a near-square grid: every
// cell links to its orthogonal neighbors, each diagonal neighbor joins
// with diagonalChance, and disconnected pockets get stitched back to
// the main component. All regions start unowned at InitialRegionValue.
func GenerateMap(regionCount int, rng *rand.Rand) []*Region {
	if regionCount < 2 {
		regionCount = 2
	}
	cols := int(math.Ceil(math.Sqrt(float64(regionCount))))
	rows := (regionCount + cols - 1) / cols

	names := generateNames(regionCount, rng)
	regions := make([]*Region, regionCount)
	for i := 0; i < regionCount; i++ {
		regions[i] = &Region{
			ID:    RegionID(i),
			Name:  names[i],
			Owner: NoPlayer,
			Kind:  RegionNormal,
			Value: InitialRegionValue,
		}
	}

	cell := func(row, col int) int {
		if row < 0 || row >= rows || col < 0 || col >= cols {
			return -1
		}
		idx := row*cols + col
		if idx >= regionCount {
			return -1
		}
		return idx
	}
	link := func(a, b int) {
		if !regions[a].IsAdjacentTo(RegionID(b)) {
			regions[a].Adjacent = append(regions[a].Adjacent, RegionID(b))
		}
		if !regions[b].IsAdjacentTo(RegionID(a)) {
			regions[b].Adjacent = append(regions[b].Adjacent, RegionID(a))
		}
	}

	for i := 0; i < regionCount; i++ {
		row, col := i/cols, i%cols
		if n := cell(row, col+1); n >= 0 {
			link(i, n)
		}
		if n := cell(row+1, col); n >= 0 {
			link(i, n)
		}
		for _, d := range [][2]int{{1, 1}, {1, -1}} {
			if n := cell(row+d[0], col+d[1]); n >= 0 && rng.Float64() < diagonalChance {
				link(i, n)
			}
		}
	}

	connectComponents(regions, cols, link)

	for _, r := range regions {
		sort.Slice(r.Adjacent, func(i, j int) bool { return r.Adjacent[i] < r.Adjacent[j] })
	}
	return regions
}

// connectComponents joins any region unreachable from region 0 to its
// nearest grid neighbor in the main component.
func connectComponents(regions []*Region, cols int, link func(a, b int)) {
	for {
		reached := make([]bool, len(regions))
		queue := []int{0}
		reached[0] = true
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, adj := range regions[cur].Adjacent {
				if !reached[adj] {
					reached[adj] = true
					queue = append(queue, int(adj))
				}
			}
		}

		orphan := -1
		for i, ok := range reached {
			if !ok {
				orphan = i
				break
			}
		}
		if orphan < 0 {
			return
		}

		// Closest reached region by grid distance.
		orow, ocol := orphan/cols, orphan%cols
		best, bestDist := -1, math.MaxInt
		for i, ok := range reached {
			if !ok {
				continue
			}
			row, col := i/cols, i%cols
			dist := absInt(row-orow) + absInt(col-ocol)
			if dist < bestDist {
				best, bestDist = i, dist
			}
		}
		link(orphan, best)
	}
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// generateNames draws unique region names: the shuffled base list
// first, then prefixed compounds, then numbered fallbacks.
func generateNames(n int, rng *rand.Rand) []string {
	base := append([]string(nil), regionBaseNames...)
	rng.Shuffle(len(base), func(i, j int) { base[i], base[j] = base[j], base[i] })

	used := make(map[string]bool)
	names := make([]string, 0, n)
	take := func(name string) bool {
		if used[name] {
			return false
		}
		used[name] = true
		names = append(names, name)
		return true
	}

	for _, name := range base {
		if len(names) == n {
			return names
		}
		take(name)
	}
	for len(names) < n {
		name := fmt.Sprintf("%s %s",
			regionNamePrefixes[rng.Intn(len(regionNamePrefixes))],
			base[rng.Intn(len(base))])
		if !take(name) {
			take(fmt.Sprintf("%s %d", name, len(names)))
		}
	}
	return names
}

// MapFile is the on-disk YAML layout of a hand-authored map.
type MapFile struct {
	Name    string `yaml:"name"`
	Regions []struct {
		ID       int    `yaml:"id"`
		Name     string `yaml:"name"`
		Adjacent []int  `yaml:"adjacent"`
	} `yaml:"regions"`
}

// LoadMapFile reads a YAML map definition and returns its regions,
// unowned and at the initial value. Adjacency is made symmetric.
func LoadMapFile(path string) ([]*Region, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading map file: %w", err)
	}
	var mf MapFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("parsing map file: %w", err)
	}
	if len(mf.Regions) < 2 {
		return nil, fmt.Errorf("map %q has %d regions, need at least 2", mf.Name, len(mf.Regions))
	}

	byID := make(map[RegionID]*Region, len(mf.Regions))
	regions := make([]*Region, 0, len(mf.Regions))
	for _, rr := range mf.Regions {
		id := RegionID(rr.ID)
		if _, dup := byID[id]; dup {
			return nil, fmt.Errorf("map %q has duplicate region id %d", mf.Name, rr.ID)
		}
		r := &Region{
			ID:    id,
			Name:  rr.Name,
			Owner: NoPlayer,
			Kind:  RegionNormal,
			Value: InitialRegionValue,
		}
		byID[id] = r
		regions = append(regions, r)
	}
	for _, rr := range mf.Regions {
		r := byID[RegionID(rr.ID)]
		for _, adj := range rr.Adjacent {
			other, ok := byID[RegionID(adj)]
			if !ok {
				return nil, fmt.Errorf("map %q region %d references unknown neighbor %d", mf.Name, rr.ID, adj)
			}
			if !r.IsAdjacentTo(other.ID) {
				r.Adjacent = append(r.Adjacent, other.ID)
			}
			if !other.IsAdjacentTo(r.ID) {
				other.Adjacent = append(other.Adjacent, r.ID)
			}
		}
	}
	return regions, nil
}
