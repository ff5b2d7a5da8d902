/*
NAME
  dpb.go

DESCRIPTION
  dpb.go provides the fixed-size per-layer decoded picture buffer and the
  Manager that owns one DPB per scalable/multi-view layer, sharing a single
  output FIFO across all layers.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package h265dec

// DPB is a fixed-size array of frame slots for one layer. A nil entry and
// a non-nil-but-free Frame are both "free" for allocation purposes. Once a
// slot has been touched it keeps its last Frame, so unref can run on it
// again safely, until allocFrame stores a newly allocated Frame there.
type DPB struct {
	slots [DPBCapacity]*Frame
}

// NewDPB returns an empty DPB.
func NewDPB() *DPB {
	return &DPB{}
}

// firstFree returns the index of the first unoccupied slot, or -1 if the
// DPB is full. A slot is unoccupied if it has never been allocated, or if
// it was allocated but its flags are currently empty.
func (d *DPB) firstFree() int {
	for i, f := range d.slots {
		if f == nil || f.Free() {
			return i
		}
	}
	return -1
}

// FindByPOC returns the occupied slot in d whose POC equals poc, matched
// either by full POC (useMSB true) or by the low log2MaxPocLsb bits
// (useMSB false). skip, if non-nil, is excluded from the search only when
// useMSB is false: an LSB-only lookup can't tell skip's POC apart from an
// unrelated slot that happens to share its low bits, but a full-POC lookup
// is exact and must be allowed to resolve onto skip itself, so the caller
// (addCandidateRef) can detect the self-reference and reject it.
func (d *DPB) FindByPOC(poc POC, useMSB bool, log2MaxPocLsb uint, skip *Frame) *Frame {
	for _, f := range d.slots {
		if f == nil || f.Free() {
			continue
		}
		if f == skip && !useMSB {
			continue
		}
		if useMSB {
			if f.poc == poc {
				return f
			}
			continue
		}
		if f.poc.matchesLSB(poc, log2MaxPocLsb) {
			return f
		}
	}
	return nil
}

// HasPOC reports whether any occupied slot in d carries poc.
func (d *DPB) HasPOC(poc POC) bool {
	for _, f := range d.slots {
		if f != nil && !f.Free() && f.poc == poc {
			return true
		}
	}
	return false
}

// Slots returns the DPB's backing array for iteration. Callers must not
// retain it past the next mutating call.
func (d *DPB) Slots() []*Frame { return d.slots[:] }

// ClearRefs clears SHORT_REF and LONG_REF from every slot, leaving
// OUTPUT-pending pictures intact. Per section 4.1.
func (d *DPB) ClearRefs() {
	for _, f := range d.slots {
		if f != nil {
			unref(f, FlagShortRef|FlagLongRef)
		}
	}
}

// Flush clears every flag from every slot. Used on seek/stream reset.
func (d *DPB) Flush() {
	for _, f := range d.slots {
		if f != nil {
			unref(f, FlagOutput|FlagShortRef|FlagLongRef|FlagUnavailable)
		}
	}
}

// purgeUnavailable clears UNAVAILABLE from every slot currently carrying
// it, per frame_rps step 2: stale placeholders never survive into the next
// picture's resolution pass.
func (d *DPB) purgeUnavailable() {
	for _, f := range d.slots {
		if f != nil && f.HasFlag(FlagUnavailable) {
			unref(f, FlagUnavailable|FlagShortRef|FlagLongRef)
		}
	}
}

// Manager owns one DPB per layer plus the output FIFO shared by all of
// them. Scalable/multi-view decoding is modelled as independent per-layer
// DPBs sharing this one control surface.
type Manager struct {
	layers []*DPB
	fifo   OutputFIFO
}

// NewManager returns a Manager with nLayers independent DPBs sharing fifo.
func NewManager(nLayers int, fifo OutputFIFO) *Manager {
	m := &Manager{layers: make([]*DPB, nLayers), fifo: fifo}
	for i := range m.layers {
		m.layers[i] = NewDPB()
	}
	return m
}

// Layer returns the DPB for the given layer id.
func (m *Manager) Layer(id int) *DPB { return m.layers[id] }

// NumLayers returns the number of independent layers the Manager owns.
func (m *Manager) NumLayers() int { return len(m.layers) }

// FlushDPB flushes every layer's DPB. Used on seek/stream reset.
func (m *Manager) FlushDPB() {
	for _, dpb := range m.layers {
		dpb.Flush()
	}
}

// ClearRefs clears SHORT_REF/LONG_REF across every layer's DPB.
func (m *Manager) ClearRefs() {
	for _, dpb := range m.layers {
		dpb.ClearRefs()
	}
}
