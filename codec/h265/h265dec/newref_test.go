/*
NAME
  newref_test.go

DESCRIPTION
  newref_test.go tests new-picture admission, including the duplicate-POC
  rejection scenario (section 8, S2).

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
	"errors"
	"testing"
)

func TestSetNewRefBasic(t *testing.T) {
	sps := newFakeSPS()
	pps := newFakePPS(sps.ctbW*sps.ctbH, false)
	dpb := NewDPB()
	p := newAllocParams(sps, pps)

	f, err := SetNewRef(dpb, 5, true, sps, p)
	if err != nil {
		t.Fatalf("SetNewRef failed: %v", err)
	}
	if f.POC() != 5 {
		t.Errorf("got poc %d, want 5", f.POC())
	}
	if !f.HasFlag(FlagShortRef) || !f.HasFlag(FlagOutput) {
		t.Errorf("got flags %b, want SHORT_REF|OUTPUT", f.Flags())
	}
}

func TestSetNewRefNoOutputFlag(t *testing.T) {
	sps := newFakeSPS()
	pps := newFakePPS(sps.ctbW*sps.ctbH, false)
	dpb := NewDPB()
	p := newAllocParams(sps, pps)

	f, err := SetNewRef(dpb, 1, false, sps, p)
	if err != nil {
		t.Fatalf("SetNewRef failed: %v", err)
	}
	if f.HasFlag(FlagOutput) {
		t.Error("OUTPUT should not be set when pic_output_flag is false")
	}
}

// TestSetNewRefDuplicatePOC is scenario S2: admitting the same POC twice
// must reject the second with ErrInvalidData and leave the DPB unchanged.
func TestSetNewRefDuplicatePOC(t *testing.T) {
	sps := newFakeSPS()
	pps := newFakePPS(sps.ctbW*sps.ctbH, false)
	dpb := NewDPB()
	p := newAllocParams(sps, pps)

	if _, err := SetNewRef(dpb, 5, true, sps, p); err != nil {
		t.Fatalf("first admission failed: %v", err)
	}

	occupiedBefore := countOccupied(dpb)

	_, err := SetNewRef(dpb, 5, true, sps, p)
	if !errors.Is(err, ErrInvalidData) {
		t.Fatalf("got %v, want ErrInvalidData", err)
	}

	if got := countOccupied(dpb); got != occupiedBefore {
		t.Errorf("dpb occupancy changed after rejected admission: got %d, want %d", got, occupiedBefore)
	}
}

func countOccupied(dpb *DPB) int {
	n := 0
	for _, f := range dpb.Slots() {
		if f != nil && !f.Free() {
			n++
		}
	}
	return n
}
