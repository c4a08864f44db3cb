package parcel

// Table is an ordered snapshot of parcels. Stages never mutate the table they
// receive: they Clone it, update the clone, and return it.
type Table struct {
	rows []Parcel
}

// NewTable builds a table from rows. The slice is copied.
func NewTable(rows []Parcel) Table {
	cp := make([]Parcel, len(rows))
	copy(cp, rows)
	return Table{rows: cp}
}

// Len returns the number of parcels.
func (t Table) Len() int {
	return len(t.rows)
}

// At returns a copy of the parcel at index i.
func (t Table) At(i int) Parcel {
	return t.rows[i]
}

// Rows returns a copy of the table's rows.
func (t Table) Rows() []Parcel {
	cp := make([]Parcel, len(t.rows))
	copy(cp, t.rows)
	return cp
}

// Clone returns an independent snapshot. Row structs are copied; pointer
// fields are shared, which is safe because pointees are never mutated.
func (t Table) Clone() Table {
	return NewTable(t.rows)
}

// Update applies fn to every row of t in place. Call it only on a table the
// caller owns, normally the result of Clone.
func (t Table) Update(fn func(i int, p *Parcel)) {
	for i := range t.rows {
		fn(i, &t.rows[i])
	}
}

// Filter returns a new table with the rows for which keep returns true,
// preserving order.
func (t Table) Filter(keep func(p *Parcel) bool) Table {
	out := make([]Parcel, 0, len(t.rows))
	for i := range t.rows {
		if keep(&t.rows[i]) {
			out = append(out, t.rows[i])
		}
	}
	return Table{rows: out}
}

// Index returns the position of each parcel keyed by MapBlkLot.
func (t Table) Index() map[string]int {
	idx := make(map[string]int, len(t.rows))
	for i := range t.rows {
		idx[t.rows[i].MapBlkLot] = i
	}
	return idx
}
