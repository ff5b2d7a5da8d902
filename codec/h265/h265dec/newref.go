/*
NAME
  newref.go

DESCRIPTION
  newref.go provides new-picture admission: allocating and publishing the
  DPB slot for the picture currently being decoded.

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

// SetNewRef admits a new picture into dpb at the given POC. It rejects a
// duplicate POC with ErrInvalidData, allocates a fresh slot (ErrOOM or
// ErrDPBFull on failure), resets collocatedRef, sets SHORT_REF (plus
// OUTPUT iff pic_output_flag is set), records the POC, and copies the
// SPS's conformance window onto the frame. Per section 4.3.
func SetNewRef(dpb *DPB, poc POC, picOutputFlag bool, sps SPS, allocP allocParams) (*Frame, error) {
	if dpb.HasPOC(poc) {
		return nil, errors.Wrapf(ErrInvalidData, "duplicate poc %d", int32(poc))
	}

	f, err := allocFrame(dpb, allocP)
	if err != nil {
		return nil, err
	}

	f.collocatedRef = nil
	f.poc = poc
	f.flags = FlagShortRef
	if picOutputFlag {
		f.flags |= FlagOutput
	}
	f.cropWindow = sps.ConformanceWindow()

	return f, nil
}
