/*
NAME
  frame.go

DESCRIPTION
  frame.go provides the Frame slot type and its lifecycle: allocation and
  unreference, as described by section 4.1 of the DPB/RPS design. Bulk
  reference clearing and full flush are in dpb.go.

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

import "github.com/pkg/errors"

// Flag is a bitset of a frame slot's reference/output state. SHORT_REF and
// LONG_REF are mutually exclusive; a slot is free iff Flags() == 0.
type Flag uint8

const (
	FlagOutput Flag = 1 << iota
	FlagShortRef
	FlagLongRef
	FlagUnavailable
)

// RefPicListEntry is one entry of a RefPicList: the referenced POC, the
// slot holding it, and whether it was sourced as a long-term reference.
type RefPicListEntry struct {
	POC        POC
	Frame      *Frame
	IsLongTerm bool
}

// RefPicList is an ordered sequence of at most HEVCMaxRefs entries.
type RefPicList struct {
	Entries []RefPicListEntry
}

// Len returns the number of entries currently in the list.
func (l *RefPicList) Len() int { return len(l.Entries) }

// Full reports whether the list has reached HEVCMaxRefs entries.
func (l *RefPicList) Full() bool { return len(l.Entries) >= HEVCMaxRefs }

// append adds e to the list, failing if already at capacity.
func (l *RefPicList) append(e RefPicListEntry) error {
	if l.Full() {
		return errors.Wrapf(ErrInvalidData, "ref pic list full (poc %d)", e.POC)
	}
	l.Entries = append(l.Entries, e)
	return nil
}

// refPicListPair holds one slice's L0/L1 lists, as stored in a picture's
// rplPool.
type refPicListPair struct {
	L0, L1 RefPicList
}

// Frame is one DPB slot: a decoded picture plus its per-CTB reference-list
// table, flags, and POC. A Frame is free iff flags == 0 and buffer has been
// released.
type Frame struct {
	buffer Buffer
	poc    POC
	flags  Flag

	ctbWidth, ctbHeight int
	perCTBRPLTable      []int
	ctbPool             CTBTablePool

	rplPool []refPicListPair

	mvfTable Slab

	pps PPS

	progress ProgressHandle

	needsFG    bool
	frameGrain Buffer

	hwaccelPrivate interface{}

	cropWindow CropWindow

	collocatedRef *Frame
}

// POC returns the frame's Picture Order Count. Only meaningful while the
// slot is occupied.
func (f *Frame) POC() POC { return f.poc }

// Flags returns the frame's current flag set.
func (f *Frame) Flags() Flag { return f.flags }

// HasFlag reports whether all bits of mask are set.
func (f *Frame) HasFlag(mask Flag) bool { return f.flags&mask == mask }

// HasAnyFlag reports whether any bit of mask is set.
func (f *Frame) HasAnyFlag(mask Flag) bool { return f.flags&mask != 0 }

// Free reports whether the slot holds no flags (and therefore no buffer).
func (f *Frame) Free() bool { return f.flags == 0 }

// Buffer returns the frame's decoded-picture buffer handle.
func (f *Frame) Buffer() Buffer { return f.buffer }

// NeedsFilmGrain reports whether a film-grain overlay should be delivered
// in place of the raw buffer.
func (f *Frame) NeedsFilmGrain() bool { return f.needsFG }

// FrameGrain returns the film-grain overlay buffer, if any.
func (f *Frame) FrameGrain() Buffer { return f.frameGrain }

// CollocatedRef returns the slot recorded as the collocated reference for
// temporal motion-vector prediction, or nil.
func (f *Frame) CollocatedRef() *Frame { return f.collocatedRef }

// allocParams bundles the external collaborators needed to admit a new
// slot, mirroring the collaborators named in section 6 of the design.
type allocParams struct {
	alloc        Allocator
	mvfPool      MVFPool
	ctbPool      CTBTablePool
	pps          PPS
	sps          SPS
	nbSlicesHint int // upper bound on slice count, sizes rplPool
	hwaccel      bool
	frameThreaded bool
}

// NewAllocParams bundles the external collaborators an admitting caller
// must supply. nbSlicesHint upper-bounds the slice count per picture and
// sizes each Frame's rplPool accordingly.
func NewAllocParams(alloc Allocator, mvfPool MVFPool, ctbPool CTBTablePool, pps PPS, sps SPS, nbSlicesHint int) allocParams {
	return allocParams{
		alloc:        alloc,
		mvfPool:      mvfPool,
		ctbPool:      ctbPool,
		pps:          pps,
		sps:          sps,
		nbSlicesHint: nbSlicesHint,
	}
}

// allocFrame scans the DPB for the first free slot and, on finding one,
// acquires every per-slot resource in order: buffer, rplPool, mvfTable,
// per-CTB table, PPS share. Any failure releases everything acquired for
// that slot and returns an error; the DPB's free-slot search itself
// returns ErrDPBFull when no slot is free.
func allocFrame(dpb *DPB, p allocParams) (*Frame, error) {
	idx := dpb.firstFree()
	if idx < 0 {
		return nil, ErrDPBFull
	}

	f := &Frame{}

	buf, progress, err := p.alloc.GetBuffer(0)
	if err != nil {
		return nil, errors.Wrap(ErrOOM, err.Error())
	}
	f.buffer = buf
	f.progress = progress

	if p.nbSlicesHint < 1 {
		p.nbSlicesHint = 1
	}
	f.rplPool = make([]refPicListPair, p.nbSlicesHint)

	mvf, err := p.mvfPool.Get()
	if err != nil {
		releasePartial(f, releaseBuffer|releaseProgress)
		return nil, errors.Wrap(ErrOOM, err.Error())
	}
	f.mvfTable = mvf

	f.ctbWidth, f.ctbHeight = p.sps.CTBWidth(), p.sps.CTBHeight()
	nCTB := f.ctbWidth * f.ctbHeight
	table, err := p.ctbPool.Get(nCTB)
	if err != nil {
		releasePartial(f, releaseBuffer|releaseProgress|releaseMVF)
		return nil, errors.Wrap(ErrOOM, err.Error())
	}
	for i := range table {
		table[i] = 0
	}
	f.perCTBRPLTable = table
	f.ctbPool = p.ctbPool

	if p.pps != nil {
		f.pps = p.pps.Ref().(PPS)
	}

	dpb.slots[idx] = f
	return f, nil
}

// release bitmask used by allocFrame's rollback path and by unref.
const (
	releaseBuffer = 1 << iota
	releaseProgress
	releaseMVF
	releaseCTBTable
	releasePPS
	releaseFrameGrain
	releaseHWAccel
)

// releasePartial tears down whatever subset of a not-yet-published Frame's
// resources was acquired, used when allocFrame fails partway through.
func releasePartial(f *Frame, acquired int) {
	if acquired&releaseCTBTable != 0 && f.ctbPool != nil {
		f.ctbPool.Put(f.perCTBRPLTable)
	}
	if acquired&releaseMVF != 0 && f.mvfTable != nil {
		f.mvfTable.Release()
	}
	if acquired&releaseProgress != 0 && f.progress != nil {
		f.progress.Unref()
	}
	// The raw buffer has no standalone release call in this package's
	// interface surface; it is owned by whatever ref holder exists, and
	// with no flags ever set on this slot it was never published, so
	// nothing else references it.
	_ = f.buffer
}

// unref clears mask from f's flags. If the resulting flags are empty, all
// per-slot resources are released in order: progress handle, film-grain
// buffer, PPS share, mvf table, per-CTB table, hwaccel private state. This
// is the sole release path and is idempotent: calling it with mask == 0
// never changes flags and never re-releases already-released resources.
func unref(f *Frame, mask Flag) {
	if f == nil || f.Free() {
		return
	}
	f.flags &^= mask
	if f.flags != 0 {
		return
	}

	if f.progress != nil {
		f.progress.Unref()
		f.progress = nil
	}
	f.frameGrain = nil
	f.needsFG = false
	if f.pps != nil {
		f.pps.Unref()
		f.pps = nil
	}
	if f.mvfTable != nil {
		f.mvfTable.Release()
		f.mvfTable = nil
	}
	if f.perCTBRPLTable != nil && f.ctbPool != nil {
		f.ctbPool.Put(f.perCTBRPLTable)
	}
	f.perCTBRPLTable = nil
	f.rplPool = nil
	f.hwaccelPrivate = nil
	f.buffer = nil
	f.collocatedRef = nil
	f.poc = 0
}

// UnrefFrame clears mask from f's flags, releasing all per-slot resources
// if the result is empty. Exported entry point to the lifecycle's sole
// release path (section 4.1, section 6).
func UnrefFrame(f *Frame, mask Flag) {
	unref(f, mask)
}
