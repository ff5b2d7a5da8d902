/*
NAME
  sim.go

DESCRIPTION
  sim.go provides minimal stand-ins for the decoder collaborators
  h265dec expects (buffer allocator, motion-vector and per-CTB table
  pools, PPS/SPS views, output sink), sized from a trace file rather
  than parsed bitstream headers.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package main

import "github.com/ausocean/av/codec/h265/h265dec"

// simBuffer is a one-plane Buffer sized off the trace's picture dimensions.
type simBuffer struct {
	plane h265dec.Plane
}

func (b *simBuffer) Planes() []h265dec.Plane { return []h265dec.Plane{b.plane} }

// simProgress discards progress reports; hevcdpbsim never frame-threads.
type simProgress struct{}

func (simProgress) Report(int) {}
func (simProgress) Unref()     {}

// simAllocator hands out fresh simBuffers of a fixed size.
type simAllocator struct {
	width, height int
}

func (a *simAllocator) GetBuffer(h265dec.BufferFlags) (h265dec.Buffer, h265dec.ProgressHandle, error) {
	w, h := a.width, a.height
	if w == 0 {
		w = 16
	}
	if h == 0 {
		h = 16
	}
	return &simBuffer{plane: h265dec.Plane{Data: make([]byte, w*h), Stride: w, Width: w, Height: h}}, simProgress{}, nil
}

// simSlab is a no-op Slab.
type simSlab struct{}

func (simSlab) Release() {}

// simMVFPool always succeeds.
type simMVFPool struct{}

func (simMVFPool) Get() (h265dec.Slab, error) { return simSlab{}, nil }

// simCTBPool hands out plain int slices, no reuse.
type simCTBPool struct{}

func (simCTBPool) Get(n int) ([]int, error) { return make([]int, n), nil }
func (simCTBPool) Put([]int)                {}

// simPPS is a minimal refcounted PPS backed by an identity raster-to-tile
// scan map.
type simPPS struct {
	ctbMap []int
	refs   int
}

func (p *simPPS) Ref() h265dec.RefCounted {
	p.refs++
	return p
}
func (p *simPPS) Unref() { p.refs-- }

func (p *simPPS) CTBAddrRSToTS(rs int) int {
	if rs < 0 || rs >= len(p.ctbMap) {
		return rs
	}
	return p.ctbMap[rs]
}
func (p *simPPS) CurrPicRefEnabled() bool { return false }

// simSPS is a fixed-geometry SPS view driven by the trace file's header.
type simSPS struct {
	ctbW, ctbH    int
	log2CTBSize   uint
	log2MaxPocLsb uint
}

func (s *simSPS) CTBWidth() int       { return s.ctbW }
func (s *simSPS) CTBHeight() int      { return s.ctbH }
func (s *simSPS) Log2CTBSize() uint   { return s.log2CTBSize }
func (s *simSPS) Log2MaxPOCLsb() uint { return s.log2MaxPocLsb }
func (s *simSPS) BitDepth() int       { return 8 }
func (s *simSPS) PixelShift() int     { return 0 }
func (s *simSPS) ConformanceWindow() h265dec.CropWindow {
	return h265dec.CropWindow{}
}

// simFIFO collects delivered frames' POCs in order.
type simFIFO struct {
	poc []h265dec.POC
}

func (f *simFIFO) WriteFrame(fr *h265dec.Frame) error {
	f.poc = append(f.poc, fr.POC())
	return nil
}
