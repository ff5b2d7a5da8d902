/*
NAME
  output_test.go

DESCRIPTION
  output_test.go tests the output scheduler against scenarios S1 (8-frame
  GOP reordering) and S6 (end-of-stream full drain), plus the capacity and
  ordering invariants from section 8 (properties 7, 8).

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
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestOutputFramesGOPReordering is scenario S1: an IDR-started 8-frame GOP
// admitted out of presentation order must be delivered strictly in
// ascending POC order once fully drained.
func TestOutputFramesGOPReordering(t *testing.T) {
	sps := newFakeSPS()
	pps := newFakePPS(sps.ctbW*sps.ctbH, false)
	dpb := NewDPB()
	p := newAllocParams(sps, pps)
	fifo := &fakeFIFO{}

	admitOrder := []POC{0, 8, 4, 2, 1, 3, 6, 5, 7}
	const maxOutput, maxDPB = 4, 6

	for _, poc := range admitOrder {
		// This trace carries no RPS, so nothing else drops the earlier
		// pictures' reference flags; clear them before each admission so
		// only OUTPUT-pending pictures count towards nb_dpb.
		dpb.ClearRefs()
		if _, err := SetNewRef(dpb, poc, true, sps, p); err != nil {
			t.Fatalf("admit poc %d failed: %v", poc, err)
		}
		if _, err := OutputFrames(dpb, fifo, maxOutput, maxDPB, false); err != nil {
			t.Fatalf("OutputFrames after admitting poc %d failed: %v", poc, err)
		}
	}

	// End of stream: force full drainage.
	nbOutput, err := OutputFrames(dpb, fifo, 0, 0, false)
	if err != nil {
		t.Fatalf("final drain failed: %v", err)
	}
	if nbOutput != 0 {
		t.Errorf("got %d frames still pending after full drain, want 0", nbOutput)
	}

	want := []POC{0, 1, 2, 3, 4, 5, 6, 7, 8}
	if !cmp.Equal(fifo.poc, want) {
		t.Errorf("got delivery order %v, want %v", fifo.poc, want)
	}
}

// TestOutputFramesCapacityBound is property 8: once OutputFrames returns,
// nb_output <= maxOutput and, if nb_output > 0, nb_dpb <= maxDPB.
func TestOutputFramesCapacityBound(t *testing.T) {
	sps := newFakeSPS()
	pps := newFakePPS(sps.ctbW*sps.ctbH, false)
	dpb := NewDPB()
	p := newAllocParams(sps, pps)
	fifo := &fakeFIFO{}

	for poc := POC(0); poc < 10; poc++ {
		if _, err := SetNewRef(dpb, poc, true, sps, p); err != nil {
			t.Fatalf("admit poc %d failed: %v", poc, err)
		}
	}

	const maxOutput, maxDPB = 3, 5
	nbOutput, err := OutputFrames(dpb, fifo, maxOutput, maxDPB, false)
	if err != nil {
		t.Fatalf("OutputFrames failed: %v", err)
	}
	if nbOutput > maxOutput {
		t.Errorf("got nb_output %d, want <= %d", nbOutput, maxOutput)
	}

	nbDPB := countOccupied(dpb)
	if nbOutput > 0 && nbDPB > maxDPB {
		t.Errorf("got nb_dpb %d with nb_output %d > 0, want <= %d", nbDPB, nbOutput, maxDPB)
	}
}

// TestOutputFramesDiscard verifies that discard mode empties OUTPUT
// without writing to the FIFO.
func TestOutputFramesDiscard(t *testing.T) {
	sps := newFakeSPS()
	pps := newFakePPS(sps.ctbW*sps.ctbH, false)
	dpb := NewDPB()
	p := newAllocParams(sps, pps)
	fifo := &fakeFIFO{}

	for poc := POC(0); poc < 3; poc++ {
		if _, err := SetNewRef(dpb, poc, true, sps, p); err != nil {
			t.Fatalf("admit poc %d failed: %v", poc, err)
		}
	}

	nbOutput, err := OutputFrames(dpb, fifo, 0, 0, true)
	if err != nil {
		t.Fatalf("OutputFrames failed: %v", err)
	}
	if nbOutput != 0 {
		t.Errorf("got %d pending after discard drain, want 0", nbOutput)
	}
	if len(fifo.poc) != 0 {
		t.Errorf("got %d frames written during discard, want 0", len(fifo.poc))
	}
}

// TestOutputFramesPropagatesFIFOError checks that a FIFO write failure is
// propagated while OUTPUT is still cleared on the offending slot (section
// 7: the picture is considered consumed either way).
func TestOutputFramesPropagatesFIFOError(t *testing.T) {
	sps := newFakeSPS()
	pps := newFakePPS(sps.ctbW*sps.ctbH, false)
	dpb := NewDPB()
	p := newAllocParams(sps, pps)
	fifo := &fakeFIFO{failOn: 5}

	f, err := SetNewRef(dpb, 5, true, sps, p)
	if err != nil {
		t.Fatalf("admit failed: %v", err)
	}

	_, err = OutputFrames(dpb, fifo, 0, 0, false)
	if err == nil {
		t.Fatal("expected FIFO write error to propagate")
	}
	if f.HasFlag(FlagOutput) {
		t.Error("OUTPUT should be cleared even when the FIFO write failed")
	}
}

// TestManagerOutputFramesAcrossLayers drains two independent layers
// through the Manager's shared FIFO.
func TestManagerOutputFramesAcrossLayers(t *testing.T) {
	sps := newFakeSPS()
	pps := newFakePPS(sps.ctbW*sps.ctbH, false)
	fifo := &fakeFIFO{}
	mgr := NewManager(2, fifo)
	p := newAllocParams(sps, pps)

	if _, err := SetNewRef(mgr.Layer(0), 2, true, sps, p); err != nil {
		t.Fatalf("admit layer0 failed: %v", err)
	}
	if _, err := SetNewRef(mgr.Layer(1), 1, true, sps, p); err != nil {
		t.Fatalf("admit layer1 failed: %v", err)
	}

	nbOutput, err := mgr.OutputFrames(0, 0, false)
	if err != nil {
		t.Fatalf("OutputFrames failed: %v", err)
	}
	if nbOutput != 0 {
		t.Errorf("got %d pending, want 0", nbOutput)
	}
	if len(fifo.poc) != 2 {
		t.Fatalf("got %d frames delivered, want 2", len(fifo.poc))
	}
}
