// Package landmark holds the catalog of named anatomical landmarks: for each label, the femur
// tracker pose and the stylus tip position recorded when the landmark was digitized.
package landmark

import (
	"sort"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/kneelab/femurtrack/spatialmath"
)

// ErrLandmarkNotFound is returned when a label is not in the catalog.
var ErrLandmarkNotFound = errors.New("landmark not found")

// Entry is one digitized landmark. Positions are in millimeters.
type Entry struct {
	Label     string
	Reference spatialmath.Pose
	Target    r3.Vector
}

// Reproject returns where the landmark is when the tracker is at current.
func (e Entry) Reproject(current spatialmath.Pose) r3.Vector {
	return spatialmath.ReprojectPose(e.Reference, e.Target, current)
}

// Offset returns the landmark's offset from the tracker at digitizing time, in world axes.
func (e Entry) Offset() r3.Vector {
	return spatialmath.Offset(e.Reference.Point, e.Target)
}

// Pair is a lateral/medial pair of landmarks sharing an index, e.g. L3 and M3.
type Pair struct {
	Index   int
	Lateral Entry
	Medial  Entry
}

// Catalog is an immutable set of landmarks keyed by label.
type Catalog struct {
	entries map[string]Entry
}

// NewCatalog builds a catalog from entries. A later entry with the same label replaces an
// earlier one.
func NewCatalog(entries ...Entry) *Catalog {
	c := &Catalog{entries: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		c.entries[e.Label] = e
	}
	return c
}

// Len returns the number of landmarks.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Lookup returns the entry for label. Matching is exact; callers normalize case.
func (c *Catalog) Lookup(label string) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	e, ok := c.entries[label]
	return e, ok
}

// Get is Lookup that returns ErrLandmarkNotFound, naming the labels that are available.
func (c *Catalog) Get(label string) (Entry, error) {
	e, ok := c.Lookup(label)
	if !ok {
		if c.Len() == 0 {
			return Entry{}, errors.Wrapf(ErrLandmarkNotFound, "%q (catalog is empty)", label)
		}
		return Entry{}, errors.Wrapf(ErrLandmarkNotFound, "%q (available: %s)", label, strings.Join(c.Labels(), ", "))
	}
	return e, nil
}

// Labels returns all labels, letters first and then numerically, so L2 sorts before L10.
func (c *Catalog) Labels() []string {
	if c == nil {
		return nil
	}
	labels := make([]string, 0, len(c.entries))
	for label := range c.entries {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		pi, ni := splitLabel(labels[i])
		pj, nj := splitLabel(labels[j])
		if pi != pj {
			return pi < pj
		}
		if ni != nj {
			return ni < nj
		}
		return labels[i] < labels[j]
	})
	return labels
}

// Entries returns all entries in label order.
func (c *Catalog) Entries() []Entry {
	labels := c.Labels()
	out := make([]Entry, 0, len(labels))
	for _, label := range labels {
		out = append(out, c.entries[label])
	}
	return out
}

// Pairs returns every index i for which both L<i> and M<i> exist, in index order.
func (c *Catalog) Pairs() []Pair {
	var pairs []Pair
	for _, label := range c.Labels() {
		prefix, idx := splitLabel(label)
		if prefix != "L" || idx < 0 {
			continue
		}
		lateral := c.entries[label]
		medial, ok := c.entries["M"+strconv.Itoa(idx)]
		if !ok {
			continue
		}
		pairs = append(pairs, Pair{Index: idx, Lateral: lateral, Medial: medial})
	}
	return pairs
}

// splitLabel splits "L10" into "L" and 10. Labels without a numeric suffix get -1.
func splitLabel(label string) (string, int) {
	i := len(label)
	for i > 0 && label[i-1] >= '0' && label[i-1] <= '9' {
		i--
	}
	if i == len(label) {
		return label, -1
	}
	n, err := strconv.Atoi(label[i:])
	if err != nil {
		return label, -1
	}
	return label[:i], n
}
