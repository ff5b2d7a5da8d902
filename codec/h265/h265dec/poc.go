/*
NAME
  poc.go

DESCRIPTION
  poc.go provides the Picture Order Count type and the LSB/MSB comparison
  rules used throughout reference resolution.

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

// POC is a Picture Order Count: a signed index identifying a picture in
// presentation order within a coded video sequence. POCs may be negative
// and non-contiguous and are compared as signed integers.
type POC int32

// lsb returns the low log2MaxPocLsb bits of p, used when a slice header
// requests LSB-only comparison (long-term references without
// poc_msb_present).
func (p POC) lsb(log2MaxPocLsb uint) POC {
	mask := POC(1)<<log2MaxPocLsb - 1
	return p & mask
}

// matchesLSB reports whether p and other have the same low log2MaxPocLsb
// bits.
func (p POC) matchesLSB(other POC, log2MaxPocLsb uint) bool {
	return p.lsb(log2MaxPocLsb) == other.lsb(log2MaxPocLsb)
}
