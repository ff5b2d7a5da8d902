/*
NAME
  refcount.go

DESCRIPTION
  refcount.go provides frame_nb_refs: a pure function over a parsed slice
  header reporting how many entries L0/L1 construction will consume from
  the candidate buckets, used to validate the header before SliceRPL runs.

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

// FrameNbRefs returns the number of references the current slice will
// consume: the short-term RPS's used-bit population count, plus the
// number of used long-term entries, plus one if the PPS enables
// self-reference. This is unconditional on slice type: an I-slice with
// pps_curr_pic_ref_enabled_flag set still reports 1, since intra block
// copy is an I-slice feature that resolves against the current picture.
func FrameNbRefs(header *SliceHeader, selfRefEnabled bool) int {
	n := 0
	if header.ShortTermRPS != nil {
		for _, used := range header.ShortTermRPS.Used {
			if used {
				n++
			}
		}
	}
	if header.LongTermRPS != nil {
		for _, e := range header.LongTermRPS.Entries {
			if e.Used {
				n++
			}
		}
	}
	if selfRefEnabled {
		n++
	}
	return n
}
