package chart

// Drill is the per-side drill-down state of a paired chart: which bar each
// side has opened and the secondary dataset loaded for it.
type Drill[K comparable, T any] struct {
	key    [2]K
	data   [2][]T
	active [2]bool
}

// Open switches side to the detail view of key. The previous dataset is
// dropped until Load delivers the new one.
func (d *Drill[K, T]) Open(side Side, key K) {
	d.key[side] = key
	d.active[side] = true
	d.data[side] = nil
}

// Load stores the secondary dataset fetched for key. Data for a key that is
// no longer open on side is discarded and Load reports false.
func (d *Drill[K, T]) Load(side Side, key K, data []T) bool {
	if !d.active[side] || d.key[side] != key {
		return false
	}
	d.data[side] = data
	return true
}

// Selected returns the key open on side.
func (d *Drill[K, T]) Selected(side Side) (K, bool) {
	return d.key[side], d.active[side]
}

// Data returns the secondary dataset of side.
func (d *Drill[K, T]) Data(side Side) []T {
	return d.data[side]
}

// Back returns side to the overview and drops its dataset.
func (d *Drill[K, T]) Back(side Side) {
	var zero K
	d.key[side] = zero
	d.active[side] = false
	d.data[side] = nil
}

// Reset closes both sides, as on a bank change.
func (d *Drill[K, T]) Reset() {
	for _, s := range Sides {
		d.Back(s)
	}
}
