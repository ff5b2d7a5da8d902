/*
NAME
  errors.go

DESCRIPTION
  errors.go provides the error taxonomy used by the DPB/RPS manager: OOM
  (allocator failure), InvalidData (RPS inconsistency) and NotFound
  (reference POC absent, healed by the resolver).

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

// Sentinel errors classifying failures raised by this package. Callers
// should use errors.Is against these after unwrapping with
// github.com/pkg/errors or the stdlib errors package.
var (
	// ErrOOM indicates an allocation failure from the buffer allocator, a
	// pool, or a refcounted object acquisition.
	ErrOOM = errors.New("h265dec: out of memory")

	// ErrDPBFull indicates no free slot was available in a layer's DPB.
	ErrDPBFull = errors.New("h265dec: dpb full")

	// ErrInvalidData indicates an RPS inconsistency: a duplicate POC, a
	// self-reference in a candidate bucket, an out-of-range
	// modification index, an empty RPS on a non-IDR picture, or a
	// slice_idx beyond nb_rpl_elems.
	ErrInvalidData = errors.New("h265dec: invalid data")

	// ErrNotFound indicates a declared reference POC is absent from the
	// DPB. No function in this package returns it: the resolver logs the
	// absence and synthesizes a placeholder instead.
	ErrNotFound = errors.New("h265dec: reference not found")
)
