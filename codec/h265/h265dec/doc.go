/*
NAME
  doc.go

DESCRIPTION
  doc.go provides the package documentation for h265dec.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package h265dec provides the decoded picture buffer (DPB) and reference
// picture set (RPS) manager for an HEVC decoder: frame slot allocation and
// reclamation, short-term/long-term reference resolution, L0/L1 reference
// list construction for inter prediction, and output scheduling under
// max_output/max_dpb bounds.
//
// This package does not parse HEVC bitstreams, reconstruct pixels, or
// dispatch to a hardware accelerator; it consumes those as narrow external
// collaborators (see the Allocator, MVFPool, CTBTablePool, RefCounted,
// ProgressHandle and OutputFIFO interfaces) and implements only the reference-management
// algorithms described by the HEVC standard's clause 8.3.
package h265dec
