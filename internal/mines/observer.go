package mines

// CellObserver receives the new state of a cell every time it changes.
type CellObserver func(row, column int, interaction Interaction, kind Kind)

// Handle identifies a registered [CellObserver]. The zero Handle is never
// issued.
type Handle uint64

type observerSlot struct {
	cell int
	fn   CellObserver
}

// observers is an arena of callbacks indexed by cell. The engine only looks
// callbacks up by handle; it never owns what they render to.
type observers struct {
	byCell []Handle
	slots  map[Handle]observerSlot
	next   Handle
}

func newObservers(cells int) *observers {
	return &observers{
		byCell: make([]Handle, cells),
		slots:  make(map[Handle]observerSlot),
	}
}

// register replaces any observer the cell already had.
func (o *observers) register(cell int, fn CellObserver) Handle {
	if old := o.byCell[cell]; old != 0 {
		delete(o.slots, old)
	}
	o.next++
	h := o.next
	o.byCell[cell] = h
	o.slots[h] = observerSlot{cell: cell, fn: fn}
	return h
}

func (o *observers) unregister(h Handle) bool {
	slot, ok := o.slots[h]
	if !ok {
		return false
	}
	delete(o.slots, h)
	o.byCell[slot.cell] = 0
	return true
}

func (o *observers) lookup(cell int) (CellObserver, bool) {
	h := o.byCell[cell]
	if h == 0 {
		return nil, false
	}
	return o.slots[h].fn, true
}

func (o *observers) len() int {
	return len(o.slots)
}
