package conquest

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"
)

func TestGenerateMapBasics(t *testing.T) {
	for _, count := range []int{16, 24, 32} {
		rng := rand.New(rand.NewSource(42))
		regions := GenerateMap(count, rng)
		if len(regions) != count {
			t.Fatalf("count %d: got %d regions", count, len(regions))
		}
		seen := make(map[string]bool)
		for _, r := range regions {
			if r.Owner != NoPlayer {
				t.Errorf("region %d starts owned", r.ID)
			}
			if r.Value != InitialRegionValue {
				t.Errorf("region %d value = %d", r.ID, r.Value)
			}
			if len(r.Adjacent) == 0 {
				t.Errorf("region %d has no neighbors", r.ID)
			}
			if seen[r.Name] {
				t.Errorf("duplicate region name %q", r.Name)
			}
			seen[r.Name] = true
		}
	}
}

func TestGenerateMapAdjacencySymmetric(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	regions := GenerateMap(24, rng)
	byID := make(map[RegionID]*Region)
	for _, r := range regions {
		byID[r.ID] = r
	}
	for _, r := range regions {
		for _, adj := range r.Adjacent {
			if !byID[adj].IsAdjacentTo(r.ID) {
				t.Errorf("adjacency %d->%d not symmetric", r.ID, adj)
			}
		}
	}
}

func TestGenerateMapConnected(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	regions := GenerateMap(24, rng)

	reached := make(map[RegionID]bool)
	queue := []RegionID{0}
	reached[0] = true
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, adj := range regions[cur].Adjacent {
			if !reached[adj] {
				reached[adj] = true
				queue = append(queue, adj)
			}
		}
	}
	if len(reached) != len(regions) {
		t.Errorf("reached %d of %d regions", len(reached), len(regions))
	}
}

func TestGenerateMapDeterministic(t *testing.T) {
	a := GenerateMap(24, rand.New(rand.NewSource(5)))
	b := GenerateMap(24, rand.New(rand.NewSource(5)))
	for i := range a {
		if a[i].Name != b[i].Name || len(a[i].Adjacent) != len(b[i].Adjacent) {
			t.Fatalf("region %d differs across identical seeds", i)
		}
	}
}

func TestLoadMapFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "map.yaml")
	data := `name: testmap
regions:
  - id: 0
    name: Alpha
    adjacent: [1]
  - id: 1
    name: Beta
    adjacent: [0, 2]
  - id: 2
    name: Gamma
    adjacent: []
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	regions, err := LoadMapFile(path)
	if err != nil {
		t.Fatalf("LoadMapFile: %v", err)
	}
	if len(regions) != 3 {
		t.Fatalf("got %d regions", len(regions))
	}
	// Region 2 listed no neighbors but region 1 listed it.
	if !regions[2].IsAdjacentTo(1) {
		t.Error("adjacency not made symmetric")
	}
}

func TestLoadMapFileErrors(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	os.WriteFile(bad, []byte("regions: [{id: 0, name: A, adjacent: [5]}, {id: 1, name: B}]"), 0o644)
	if _, err := LoadMapFile(bad); err == nil {
		t.Error("unknown neighbor reference should fail")
	}

	dup := filepath.Join(dir, "dup.yaml")
	os.WriteFile(dup, []byte("regions: [{id: 0, name: A}, {id: 0, name: B}]"), 0o644)
	if _, err := LoadMapFile(dup); err == nil {
		t.Error("duplicate ids should fail")
	}

	if _, err := LoadMapFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("missing file should fail")
	}
}
