/*
NAME
  rps.go

DESCRIPTION
  rps.go provides the reference resolver: given a parsed short-term and
  long-term RPS, it reconciles the DPB with the current picture's declared
  references, filling the five candidate buckets and synthesizing
  placeholder frames for references that are absent.

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

import (
	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"
)

// CandidateBuckets holds the five RPS candidate buckets populated by
// FrameRPS for the current picture.
type CandidateBuckets struct {
	STCurrBef RefPicList
	STCurrAft RefPicList
	STFoll    RefPicList
	LTCurr    RefPicList
	LTFoll    RefPicList
}

// FrameRPS reconciles dpb with the current picture's declared RPS,
// following the seven normative steps of section 4.2. cur must already be
// admitted (via SetNewRef) in dpb. On success every frame referenced by
// any candidate bucket has exactly one of SHORT_REF/LONG_REF set and cur's
// own flags are preserved. On failure the partially populated buckets are
// still returned, but any slot whose flags dropped to empty along the way
// has already been released.
func FrameRPS(dpb *DPB, cur *Frame, header *SliceHeader, sps SPS, allocP allocParams) (*CandidateBuckets, error) {
	buckets := &CandidateBuckets{}

	// Step 7 is expressed as a defer that runs unref(f, 0) over every slot
	// whatever partial state exists when this function returns. Slots
	// whose flags drop to empty in steps 2 and 3 are already released by
	// those unref calls; unref(f, 0) leaves a non-free slot unchanged and
	// returns early on a free one, so this sweep is safe to run
	// unconditionally.
	defer func() {
		for _, f := range dpb.slots {
			unref(f, 0)
		}
	}()

	// Step 1: no short-term RPS means an IDR-like picture with no
	// references to resolve.
	if header.ShortTermRPS == nil {
		return buckets, nil
	}

	// Step 2: purge stale placeholders from the previous picture.
	dpb.purgeUnavailable()

	// Step 3: clear ST/LT on every slot except the current picture.
	for _, f := range dpb.slots {
		if f != nil && f != cur {
			unref(f, FlagShortRef|FlagLongRef)
		}
	}

	// Step 4 is implicit: buckets start empty.

	log2MaxPocLsb := sps.Log2MaxPOCLsb()
	randomAccess := header.NALUnitType.IsRandomAccess()

	// Step 5: short-term deltas.
	st := header.ShortTermRPS
	for i, delta := range st.DeltaPOC {
		used := i < len(st.Used) && st.Used[i]
		target := cur.poc + POC(delta)

		var bucket *RefPicList
		switch {
		case !used:
			bucket = &buckets.STFoll
		case i < st.NumNegativePics:
			bucket = &buckets.STCurrBef
		default:
			bucket = &buckets.STCurrAft
		}

		if err := addCandidateRef(dpb, bucket, cur, target, FlagShortRef, true, log2MaxPocLsb, randomAccess, allocP); err != nil {
			return buckets, err
		}
	}

	// Step 6: long-term entries.
	if header.LongTermRPS != nil {
		for _, lt := range header.LongTermRPS.Entries {
			bucket := &buckets.LTFoll
			if lt.Used {
				bucket = &buckets.LTCurr
			}
			if err := addCandidateRef(dpb, bucket, cur, lt.POC, FlagLongRef, lt.PocMSBPresent, log2MaxPocLsb, randomAccess, allocP); err != nil {
				return buckets, err
			}
		}
	}

	return buckets, nil
}

// addCandidateRef implements section 4.2's add_candidate_ref: resolve poc
// to a DPB slot (synthesizing a placeholder if absent), append it to
// bucket, and set the slot's reference class to exactly flag.
func addCandidateRef(dpb *DPB, bucket *RefPicList, cur *Frame, poc POC, flag Flag, useMSB bool, log2MaxPocLsb uint, randomAccess bool, allocP allocParams) error {
	slot := dpb.FindByPOC(poc, useMSB, log2MaxPocLsb, cur)

	// Self-reference via LSB collision guard: even when a candidate slot
	// is found, if the resolved POC equals the current picture's own full
	// POC under LSB-only matching, treat it as not found rather than risk
	// resolving onto the current picture through an unrelated slot that
	// happens to share its current-picture LSB.
	if slot != nil && !useMSB && poc == cur.poc {
		slot = nil
	}

	if slot == nil {
		if !randomAccess {
			logf(logging.Error, "reference not found, synthesizing placeholder", "poc", int32(poc))
		}
		var err error
		slot, err = generateMissingRef(dpb, poc, allocP)
		if err != nil {
			return err
		}
	}

	if slot == cur {
		return errors.Wrapf(ErrInvalidData, "self-reference resolving poc %d", int32(poc))
	}

	if err := bucket.append(RefPicListEntry{POC: poc, Frame: slot, IsLongTerm: false}); err != nil {
		return errors.Wrapf(err, "bucket overflow at poc %d", int32(poc))
	}

	setRefClass(slot, flag)
	return nil
}

// setRefClass clears SHORT_REF/LONG_REF on f and sets exactly flag,
// preserving OUTPUT/UNAVAILABLE.
func setRefClass(f *Frame, flag Flag) {
	f.flags &^= FlagShortRef | FlagLongRef
	f.flags |= flag
}

// generateMissingRef allocates a fresh slot, fills it with concealment
// gray (unless dispatching to a hardware accelerator), marks it
// UNAVAILABLE at the target POC, and, under frame-threaded decoding,
// immediately reports full progress so waiting consumers never block on a
// synthetic picture.
func generateMissingRef(dpb *DPB, poc POC, allocP allocParams) (*Frame, error) {
	f, err := allocFrame(dpb, allocP)
	if err != nil {
		return nil, errors.Wrapf(err, "could not synthesize placeholder for poc %d", int32(poc))
	}

	if !allocP.hwaccel {
		fillMidGray(f.buffer, allocP.sps.BitDepth())
	}

	f.flags = FlagUnavailable
	f.poc = poc

	if allocP.frameThreaded && f.progress != nil {
		f.progress.Report(ProgressDone)
	}

	return f, nil
}

// fillMidGray writes the mid-gray concealment value (1 << (bitDepth-1))
// into every plane of buf. For 8-bit planes every byte of the first row is
// set to the gray value; for higher bit depths the first row is filled
// with little-endian two-byte samples. The first row is then copied down
// to every other row.
func fillMidGray(buf Buffer, bitDepth int) {
	if buf == nil {
		return
	}
	gray := 1 << uint(bitDepth-1)

	for _, pl := range buf.Planes() {
		if pl.Stride <= 0 || pl.Height <= 0 {
			continue
		}
		row := pl.Data[:pl.Stride]
		if bitDepth <= 8 {
			for i := range row {
				row[i] = byte(gray)
			}
		} else {
			lo, hi := byte(gray&0xff), byte((gray>>8)&0xff)
			for i := 0; i+1 < len(row); i += 2 {
				row[i] = lo
				row[i+1] = hi
			}
		}
		for y := 1; y < pl.Height; y++ {
			copy(pl.Data[y*pl.Stride:(y+1)*pl.Stride], row)
		}
	}
}
