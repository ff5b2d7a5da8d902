/*
NAME
  output.go

DESCRIPTION
  output.go provides the output scheduler: enforcing max_output/max_dpb
  bounds by evicting the smallest-POC output-pending frame into the
  downstream FIFO, one layer at a time or across a Manager's layers.

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

// OutputFrames enforces maxOutput/maxDPB on dpb, writing evicted frames to
// fifo (unless discard is true) in strictly ascending POC order. It
// returns the number of frames still OUTPUT-pending when it stabilizes, or
// a non-nil error if fifo.WriteFrame failed (OUTPUT is still cleared on
// the offending slot even so — the picture is considered consumed per
// section 7). Per section 4.5.
func OutputFrames(dpb *DPB, fifo OutputFIFO, maxOutput, maxDPB int, discard bool) (int, error) {
	for {
		nbOutput, nbDPB := 0, 0
		var smallest *Frame
		for _, f := range dpb.slots {
			if f == nil || f.Free() {
				continue
			}
			nbDPB++
			if !f.HasFlag(FlagOutput) {
				continue
			}
			nbOutput++
			if smallest == nil || f.poc < smallest.poc {
				smallest = f
			}
		}

		if !(nbOutput > maxOutput || (nbOutput > 0 && nbDPB > maxDPB)) {
			return nbOutput, nil
		}

		if !discard {
			// The Frame itself is written; the scheduler does not choose
			// between the film-grain overlay (f.NeedsFilmGrain() /
			// f.FrameGrain()) and the raw buffer, so any such choice is
			// up to the OutputFIFO implementation.
			err := fifo.WriteFrame(smallest)
			unref(smallest, FlagOutput)
			if err != nil {
				return nbOutput - 1, err
			}
			continue
		}
		unref(smallest, FlagOutput)
	}
}

// OutputFrames drains every layer's DPB against the Manager's shared FIFO
// under the same bounds, returning the total number of frames still
// OUTPUT-pending across all layers.
func (m *Manager) OutputFrames(maxOutput, maxDPB int, discard bool) (int, error) {
	total := 0
	for _, dpb := range m.layers {
		n, err := OutputFrames(dpb, m.fifo, maxOutput, maxDPB, discard)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
