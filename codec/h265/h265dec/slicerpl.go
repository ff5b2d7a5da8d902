/*
NAME
  slicerpl.go

DESCRIPTION
  slicerpl.go provides the slice-list builder: per-CTB RPL table
  initialization, L0/L1 construction from the candidate buckets plus
  slice-header modifications, and per-CTB list lookup for collocated
  motion-vector prediction.

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

// InitSliceRPL overwrites the per-CTB RPL pointer for every CTB from
// ctbAddrTS to the end of the picture with sliceIdx, so later slices
// overwrite the tail of a prior slice's range as the standard mandates.
// Fails with ErrInvalidData if sliceIdx is beyond the picture's rplPool.
func InitSliceRPL(cur *Frame, sliceIdx, ctbAddrTS int) error {
	if sliceIdx >= len(cur.rplPool) {
		return errors.Wrapf(ErrInvalidData, "slice_idx %d >= nb_rpl_elems %d", sliceIdx, len(cur.rplPool))
	}
	for i := ctbAddrTS; i < len(cur.perCTBRPLTable); i++ {
		cur.perCTBRPLTable[i] = sliceIdx
	}
	return nil
}

// concatOrder returns the bucket order used to build list index l's
// concatenation list: [ST_CURR_BEF, ST_CURR_AFT, LT_CURR] for L0,
// [ST_CURR_AFT, ST_CURR_BEF, LT_CURR] for L1.
func concatOrder(buckets *CandidateBuckets, l int) [3]*RefPicList {
	if l == 0 {
		return [3]*RefPicList{&buckets.STCurrBef, &buckets.STCurrAft, &buckets.LTCurr}
	}
	return [3]*RefPicList{&buckets.STCurrAft, &buckets.STCurrBef, &buckets.LTCurr}
}

// buildConcatenation repeatedly appends the three buckets in concatOrder's
// order (optionally followed by a self-reference entry when the PPS
// enables current-picture reference) until the list length reaches need,
// capped at HEVCMaxRefs. Matches section 4.4 step 3a.
func buildConcatenation(buckets *CandidateBuckets, l int, need int, selfRefEnabled bool, cur *Frame) []RefPicListEntry {
	if need > HEVCMaxRefs {
		need = HEVCMaxRefs
	}
	order := concatOrder(buckets, l)

	var out []RefPicListEntry
	for len(out) < need {
		before := len(out)
		for _, b := range order {
			for _, e := range b.Entries {
				e.IsLongTerm = b == order[2] // LT_CURR is always index 2
				out = append(out, e)
				if len(out) >= HEVCMaxRefs {
					return out
				}
			}
		}
		if selfRefEnabled {
			out = append(out, RefPicListEntry{POC: cur.poc, Frame: cur, IsLongTerm: true})
			if len(out) >= HEVCMaxRefs {
				return out
			}
		}
		if len(out) == before {
			// Nothing was appended this pass (all three buckets empty and
			// no self-reference); further looping cannot make progress.
			break
		}
	}
	return out
}

// SliceRPL builds L0 (and L1 for B-slices) for the current slice from
// buckets and header, recording them in cur's per-slice RPL pool entry at
// header.SliceIdx, and records the collocated reference if requested.
// Per section 4.4 steps 2-4.
func SliceRPL(cur *Frame, buckets *CandidateBuckets, header *SliceHeader, pps PPS) error {
	selfRefEnabled := pps.CurrPicRefEnabled()

	if header.SliceType != SliceTypeI {
		total := buckets.STCurrBef.Len() + buckets.STCurrAft.Len() + buckets.LTCurr.Len()
		if total == 0 && !selfRefEnabled {
			return errors.Wrap(ErrInvalidData, "empty reference candidate set")
		}
	}

	if header.SliceIdx >= len(cur.rplPool) {
		return errors.Wrapf(ErrInvalidData, "slice_idx %d >= nb_rpl_elems %d", header.SliceIdx, len(cur.rplPool))
	}
	pair := &cur.rplPool[header.SliceIdx]

	nLists := 1
	if header.SliceType == SliceTypeB {
		nLists = 2
	}
	if header.SliceType == SliceTypeI {
		nLists = 0
	}

	var lists [2]*RefPicList
	lists[0] = &pair.L0
	lists[1] = &pair.L1

	for l := 0; l < nLists; l++ {
		nbRefs := header.NbRefs[l]
		concat := buildConcatenation(buckets, l, nbRefs, selfRefEnabled, cur)

		var final []RefPicListEntry
		if header.RplModificationFlag[l] {
			idxs := header.ListEntryLX[l]
			final = make([]RefPicListEntry, nbRefs)
			for i := 0; i < nbRefs; i++ {
				if i >= len(idxs) {
					return errors.Wrapf(ErrInvalidData, "list_entry_lx too short for list %d", l)
				}
				idx := idxs[i]
				if idx < 0 || idx >= len(concat) {
					return errors.Wrapf(ErrInvalidData, "modification index %d out of range (concat len %d)", idx, len(concat))
				}
				final[i] = concat[idx]
			}
		} else {
			n := nbRefs
			if n > len(concat) {
				n = len(concat)
			}
			final = append(final, concat[:n]...)

			// Self-reference override (rule 8-9): runs for whichever list
			// is currently being built (L0 or L1), indexed by nb_refs[L0]
			// in both cases, matching hevc_slice_rpl exactly — there is no
			// list_idx == 0 restriction in the source.
			if selfRefEnabled && len(concat) > header.NbRefs[0] && header.NbRefs[0] > 0 && header.NbRefs[0]-1 < len(final) {
				final[header.NbRefs[0]-1] = RefPicListEntry{POC: cur.poc, Frame: cur, IsLongTerm: true}
			}
		}

		lists[l].Entries = final
	}

	if header.CollocatedList == 0 || header.CollocatedList == 1 {
		l := header.CollocatedList
		if l < nLists && header.CollocatedRefIdx < len(lists[l].Entries) {
			cur.collocatedRef = lists[l].Entries[header.CollocatedRefIdx].Frame
		}
	}

	return nil
}

// GetRefList returns the RefPicList pair active at pixel coordinates
// (x0, y0) in cur: the raster CTB address is derived by shifting by
// log2CTBSize, mapped to tile-scan order by pps, and used to index cur's
// per-CTB table into its rplPool.
func GetRefList(cur *Frame, pps PPS, x0, y0 int, log2CTBSize uint) (*refPicListPair, error) {
	ctbX := x0 >> log2CTBSize
	ctbY := y0 >> log2CTBSize
	rs := ctbY*cur.ctbWidth + ctbX
	if rs < 0 || rs >= len(cur.perCTBRPLTable) {
		return nil, errors.Wrapf(ErrInvalidData, "ctb raster address %d out of range", rs)
	}
	ts := pps.CTBAddrRSToTS(rs)
	if ts < 0 || ts >= len(cur.perCTBRPLTable) {
		return nil, errors.Wrapf(ErrInvalidData, "ctb tile-scan address %d out of range", ts)
	}
	idx := cur.perCTBRPLTable[ts]
	if idx < 0 || idx >= len(cur.rplPool) {
		return nil, errors.Wrapf(ErrInvalidData, "per-ctb rpl index %d out of range", idx)
	}
	return &cur.rplPool[idx], nil
}
