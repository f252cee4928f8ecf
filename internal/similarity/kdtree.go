package similarity

import (
	"slices"

	"gonum.org/v1/gonum/spatial/kdtree"
)

// point is a feature vector tagged with its entry position.
type point struct {
	vec []float64
	id  int
}

func (p point) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(point)
	return p.vec[d] - q.vec[d]
}

func (p point) Dims() int { return len(p.vec) }

// Distance is the squared euclidean distance.
func (p point) Distance(c kdtree.Comparable) float64 {
	q := c.(point)
	var sum float64
	for i, v := range p.vec {
		d := v - q.vec[i]
		sum += d * d
	}
	return sum
}

type points []point

func (p points) Index(i int) kdtree.Comparable         { return p[i] }
func (p points) Len() int                              { return len(p) }
func (p points) Pivot(d kdtree.Dim) int                { return plane{points: p, Dim: d}.Pivot() }
func (p points) Slice(start, end int) kdtree.Interface { return p[start:end] }

type plane struct {
	kdtree.Dim
	points
}

func (p plane) Less(i, j int) bool { return p.points[i].vec[p.Dim] < p.points[j].vec[p.Dim] }
func (p plane) Pivot() int         { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p plane) Swap(i, j int)      { p.points[i], p.points[j] = p.points[j], p.points[i] }

func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.points = p.points[start:end]
	return p
}

// featureTree answers k-nearest queries over feature vectors.
type featureTree struct {
	tree *kdtree.Tree
}

func newFeatureTree(features [][]float64) *featureTree {
	pts := make(points, len(features))
	for i, f := range features {
		pts[i] = point{vec: f, id: i}
	}
	return &featureTree{tree: kdtree.New(pts, false)}
}

// nearest returns the ids of up to k points closest to q, closest first.
func (t *featureTree) nearest(q []float64, k int) []int {
	keep := kdtree.NewNKeeper(k)
	t.tree.NearestSet(keep, point{vec: q, id: -1})

	found := make([]kdtree.ComparableDist, 0, len(keep.Heap))
	for _, cd := range keep.Heap {
		// the keeper starts with an empty sentinel at infinite distance
		if cd.Comparable == nil {
			continue
		}
		found = append(found, cd)
	}
	slices.SortStableFunc(found, func(a, b kdtree.ComparableDist) int {
		switch {
		case a.Dist < b.Dist:
			return -1
		case a.Dist > b.Dist:
			return 1
		}
		return a.Comparable.(point).id - b.Comparable.(point).id
	})

	ids := make([]int, len(found))
	for i, cd := range found {
		ids[i] = cd.Comparable.(point).id
	}
	return ids
}
