/*
NAME
  external.go

DESCRIPTION
  external.go defines the narrow interfaces this package consumes from the
  rest of an HEVC decoder: buffer allocation, pooled table allocation,
  refcounted sharing, frame-thread progress reporting, the downstream
  output FIFO, and read-only views of SPS/PPS/slice-header state.

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

// HEVCMaxRefs bounds the length of any RefPicList.
const HEVCMaxRefs = 16

// DPBCapacity is the compile-time cap on frame slots per layer.
const DPBCapacity = 32

// Plane is one color/luma plane of a decoded picture buffer, wide enough
// for generateMissingRef to write a gray-fill concealment frame into it
// without knowing anything else about the buffer's representation.
type Plane struct {
	Data          []byte
	Stride        int
	Width, Height int
}

// Buffer is a handle to a raw decoded picture, owned by whichever Frame
// slot currently holds it. Its samples are otherwise opaque to this
// package (reconstruction, deblocking, SAO, hwaccel readback are all
// external collaborators); Planes is exposed solely so the resolver can
// write concealment gray fill into a synthesized placeholder.
type Buffer interface {
	Planes() []Plane
}

// BufferFlags qualify a GetBuffer request (e.g. reference vs output-only).
type BufferFlags int

// Allocator obtains decoded-picture buffers and their progress handles for
// newly admitted frame slots.
type Allocator interface {
	GetBuffer(flags BufferFlags) (Buffer, ProgressHandle, error)
}

// Slab is a zero-initialized allocation returned by an MVFPool, released
// back to the pool when the owning Frame drops its last flag.
type Slab interface {
	Release()
}

// MVFPool supplies per-block motion-vector storage. Its contents are
// opaque to this package.
type MVFPool interface {
	Get() (Slab, error)
}

// CTBTablePool supplies the dense per-CTB reference-list-pointer arrays.
// Unlike MVFPool the shape (one int per CTB) is meaningful here, so Get
// takes the element count directly rather than returning an opaque Slab.
type CTBTablePool interface {
	Get(n int) ([]int, error)
	Put([]int)
}

// RefCounted is the shared-ownership primitive used for PPS handles and
// per-slice RefPicList pool arrays.
type RefCounted interface {
	Ref() RefCounted
	Unref()
}

// ProgressHandle signals sample availability to other frame-decoding
// threads waiting on this picture as a reference.
type ProgressHandle interface {
	Report(n int)
	Unref()
}

// ProgressDone is the progress value reported for synthesized placeholder
// frames so waiting consumers never block on them.
const ProgressDone = int(^uint(0) >> 1) // INT_MAX equivalent

// OutputFIFO hands a decoded picture to the downstream consumer in output
// order. Implementations may be a channel-backed queue, a muxer, or (in
// tests) an in-memory slice collector.
type OutputFIFO interface {
	WriteFrame(f *Frame) error
}

// CropWindow is the SPS conformance window, copied onto each admitted
// frame by SetNewRef.
type CropWindow struct {
	Left, Right, Top, Bottom int
}

// SPS is the read-only subset of sequence-parameter-set state this package
// consumes.
type SPS interface {
	CTBWidth() int
	CTBHeight() int
	Log2CTBSize() uint
	Log2MaxPOCLsb() uint
	BitDepth() int
	PixelShift() int
	ConformanceWindow() CropWindow
}

// PPS is the read-only, refcounted picture-parameter-set state this
// package consumes.
type PPS interface {
	RefCounted
	// CTBAddrRSToTS maps a raster-scan CTB address to its tile-scan
	// address, using the PPS's precomputed map.
	CTBAddrRSToTS(rs int) int
	// CurrPicRefEnabled reports pps_curr_pic_ref_enabled_flag.
	CurrPicRefEnabled() bool
}

// SliceType enumerates HEVC slice coding types relevant to list
// construction.
type SliceType int

const (
	SliceTypeB SliceType = iota
	SliceTypeP
	SliceTypeI
)

// NALUnitType distinguishes the random-access entry points that suppress
// the missing-reference diagnostic from ordinary pictures.
type NALUnitType int

const (
	NALTrailN NALUnitType = iota
	NALTrailR
	NALBLAWLP
	NALBLAWRADL
	NALBLANLP
	NALIDRWRADL
	NALIDRNLP
	NALCRA
)

// IsIDR reports whether the NAL unit type starts a new coded video
// sequence.
func (t NALUnitType) IsIDR() bool {
	return t == NALIDRWRADL || t == NALIDRNLP
}

// IsRandomAccess reports whether the NAL unit type is a CRA or any BLA
// subtype. Per DESIGN.md's Open Question decision, all BLA subtypes are
// treated the same as CRA for diagnostic suppression.
func (t NALUnitType) IsRandomAccess() bool {
	switch t {
	case NALCRA, NALBLAWLP, NALBLAWRADL, NALBLANLP:
		return true
	default:
		return false
	}
}

// ShortTermRPS is the parsed short-term reference picture set: a list of
// signed POC deltas relative to the current picture, a per-delta used
// bitmask, and the split point between negative and positive deltas.
type ShortTermRPS struct {
	DeltaPOC        []int32
	Used            []bool
	NumNegativePics int
}

// LongTermEntry is one parsed long-term RPS entry.
type LongTermEntry struct {
	POC           POC
	Used          bool
	PocMSBPresent bool
}

// LongTermRPS is the parsed long-term reference picture set.
type LongTermRPS struct {
	Entries []LongTermEntry
}

// SliceHeader is the read-only subset of slice-header state this package
// consumes to build reference lists.
type SliceHeader struct {
	SliceType           SliceType
	NALUnitType         NALUnitType
	SliceIdx            int
	SliceSegmentAddrRS  int
	PicOutputFlag       bool
	NbRefs              [2]int
	RplModificationFlag [2]bool
	ListEntryLX         [2][]int
	CollocatedList      int // -1 when collocated_ref not derived from this slice
	CollocatedRefIdx    int
	ShortTermRPS        *ShortTermRPS
	LongTermRPS         *LongTermRPS
}
