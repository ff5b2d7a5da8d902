/*
NAME
  fixtures_test.go

DESCRIPTION
  fixtures_test.go provides fake implementations of the external
  collaborators (Allocator, MVFPool, CTBTablePool, PPS, SPS, OutputFIFO)
  used to drive h265dec's tests without a real decoder behind them.

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

// fakeBuffer is a minimal Buffer with one plane, sized large enough for
// fillMidGray tests.
type fakeBuffer struct {
	plane Plane
}

func newFakeBuffer(w, h int) *fakeBuffer {
	return &fakeBuffer{plane: Plane{Data: make([]byte, w*h), Stride: w, Width: w, Height: h}}
}

func (b *fakeBuffer) Planes() []Plane { return []Plane{b.plane} }

// fakeProgress is a no-op ProgressHandle that records the last reported
// value.
type fakeProgress struct {
	reported int
	unreffed bool
}

func (p *fakeProgress) Report(n int) { p.reported = n }
func (p *fakeProgress) Unref()       { p.unreffed = true }

// fakeAllocator hands out fresh fakeBuffers and fakeProgresses, optionally
// failing after a configured number of successful calls.
type fakeAllocator struct {
	width, height int
	failAfter     int // 0 means never fail
	calls         int
}

func (a *fakeAllocator) GetBuffer(flags BufferFlags) (Buffer, ProgressHandle, error) {
	a.calls++
	if a.failAfter > 0 && a.calls > a.failAfter {
		return nil, nil, errOOMForTest
	}
	w, h := a.width, a.height
	if w == 0 {
		w = 4
	}
	if h == 0 {
		h = 4
	}
	return newFakeBuffer(w, h), &fakeProgress{}, nil
}

var errOOMForTest = ErrOOM

// fakeSlab is a Slab that records whether it was released.
type fakeSlab struct{ released bool }

func (s *fakeSlab) Release() { s.released = true }

// fakeMVFPool always succeeds, handing out fresh fakeSlabs.
type fakeMVFPool struct{}

func (fakeMVFPool) Get() (Slab, error) { return &fakeSlab{}, nil }

// fakeCTBPool hands out plain []int slices.
type fakeCTBPool struct{}

func (fakeCTBPool) Get(n int) ([]int, error) { return make([]int, n), nil }
func (fakeCTBPool) Put([]int)                {}

// fakePPS is a minimal refcounted PPS.
type fakePPS struct {
	ctbMap     []int // identity map by default
	currPicRef bool
	refs       int
}

func newFakePPS(nCTB int, currPicRef bool) *fakePPS {
	m := make([]int, nCTB)
	for i := range m {
		m[i] = i
	}
	return &fakePPS{ctbMap: m, currPicRef: currPicRef, refs: 1}
}

func (p *fakePPS) Ref() RefCounted {
	p.refs++
	return p
}
func (p *fakePPS) Unref() { p.refs-- }

func (p *fakePPS) CTBAddrRSToTS(rs int) int {
	if rs < 0 || rs >= len(p.ctbMap) {
		return rs
	}
	return p.ctbMap[rs]
}
func (p *fakePPS) CurrPicRefEnabled() bool { return p.currPicRef }

// fakeSPS is a minimal SPS fixture.
type fakeSPS struct {
	ctbW, ctbH    int
	log2CTBSize   uint
	log2MaxPocLsb uint
	bitDepth      int
}

func (s *fakeSPS) CTBWidth() int            { return s.ctbW }
func (s *fakeSPS) CTBHeight() int           { return s.ctbH }
func (s *fakeSPS) Log2CTBSize() uint        { return s.log2CTBSize }
func (s *fakeSPS) Log2MaxPOCLsb() uint      { return s.log2MaxPocLsb }
func (s *fakeSPS) BitDepth() int            { return s.bitDepth }
func (s *fakeSPS) PixelShift() int {
	if s.bitDepth > 8 {
		return 1
	}
	return 0
}
func (s *fakeSPS) ConformanceWindow() CropWindow { return CropWindow{} }

func newFakeSPS() *fakeSPS {
	return &fakeSPS{ctbW: 2, ctbH: 2, log2CTBSize: 6, log2MaxPocLsb: 8, bitDepth: 8}
}

// fakeFIFO collects written frames' POCs in delivery order.
type fakeFIFO struct {
	poc    []POC
	failOn POC // if set, WriteFrame fails for this POC
}

func (f *fakeFIFO) WriteFrame(fr *Frame) error {
	if f.failOn != 0 && fr.POC() == f.failOn {
		return errFIFOForTest
	}
	f.poc = append(f.poc, fr.POC())
	return nil
}

var errFIFOForTest = ErrOOM

// newAllocParams builds a ready-to-use allocParams over the fakes above.
func newAllocParams(sps *fakeSPS, pps *fakePPS) allocParams {
	return allocParams{
		alloc:        &fakeAllocator{},
		mvfPool:      fakeMVFPool{},
		ctbPool:      fakeCTBPool{},
		pps:          pps,
		sps:          sps,
		nbSlicesHint: 4,
	}
}
