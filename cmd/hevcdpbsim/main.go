/*
NAME
  hevcdpbsim

DESCRIPTION
  hevcdpbsim replays a JSON trace of HEVC slice admissions through
  h265dec.Manager and prints the POC sequence the output scheduler
  delivers, without decoding any real bitstream. Useful for checking a
  GOP structure's reordering/reference behaviour offline.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package main implements hevcdpbsim, a trace-driven simulator for the
// h265dec DPB/RPS manager.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/av/codec/h265/h265dec"
	"github.com/ausocean/utils/logging"
)

// Current software version.
const version = "v0.1.0"

// Logging configuration.
const (
	logPath      = "hevcdpbsim.log"
	logMaxSize   = 100 // MB
	logMaxBackup = 5
	logMaxAge    = 28 // days
	logVerbosity = logging.Debug
	logSuppress  = true
)

const pkg = "hevcdpbsim: "

// admission is one line of a trace: a slice header's admission-relevant
// fields plus the picture's output flag.
type admission struct {
	POC           h265dec.POC `json:"poc"`
	PicOutputFlag bool        `json:"pic_output_flag"`
	NALUnitType   int         `json:"nal_unit_type"`
	SliceType     int         `json:"slice_type"`
	NegDeltaPOC   []int32     `json:"neg_delta_poc"`
	PosDeltaPOC   []int32     `json:"pos_delta_poc"`
}

// trace is the top-level shape of a hevcdpbsim input file.
type trace struct {
	CTBWidth    int         `json:"ctb_width"`
	CTBHeight   int         `json:"ctb_height"`
	Log2CTBSize uint        `json:"log2_ctb_size"`
	MaxOutput   int         `json:"max_output"`
	MaxDPB      int         `json:"max_dpb"`
	Admissions  []admission `json:"admissions"`
}

func main() {
	traceFile := flag.String("trace", "", "path to a JSON admission trace")
	showVersion := flag.Bool("version", false, "show version")
	flag.Parse()
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	fileLog := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	log := logging.New(logVerbosity, io.MultiWriter(fileLog, os.Stderr), logSuppress)
	h265dec.Log = log

	log.Info("starting hevcdpbsim", "version", version)

	if *traceFile == "" {
		log.Fatal(pkg + "a -trace file is required")
	}

	tr, err := loadTrace(*traceFile)
	if err != nil {
		log.Fatal(pkg+"could not load trace", "error", err.Error())
	}

	delivered, err := run(tr, log)
	if err != nil {
		log.Fatal(pkg+"simulation failed", "error", err.Error())
	}

	fmt.Println(delivered)
}

// loadTrace reads and decodes a JSON admission trace from path.
func loadTrace(path string) (*trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var tr trace
	if err := json.NewDecoder(f).Decode(&tr); err != nil {
		return nil, err
	}
	return &tr, nil
}

// run drives a single-layer h265dec.Manager through every admission in tr
// and returns the delivered POC sequence.
func run(tr *trace, log logging.Logger) ([]h265dec.POC, error) {
	sps := &simSPS{ctbW: tr.CTBWidth, ctbH: tr.CTBHeight, log2CTBSize: tr.Log2CTBSize, log2MaxPocLsb: 16}
	pps := &simPPS{ctbMap: identityMap(tr.CTBWidth * tr.CTBHeight), refs: 1}
	fifo := &simFIFO{}
	mgr := h265dec.NewManager(1, fifo)
	dpb := mgr.Layer(0)

	alloc := &simAllocator{width: 16, height: 16}
	p := h265dec.NewAllocParams(alloc, simMVFPool{}, simCTBPool{}, pps, sps, len(tr.Admissions))

	for _, a := range tr.Admissions {
		f, err := h265dec.SetNewRef(dpb, a.POC, a.PicOutputFlag, sps, p)
		if err != nil {
			log.Error(pkg+"admission rejected", "poc", a.POC, "error", err.Error())
			continue
		}

		header := &h265dec.SliceHeader{
			SliceType:   h265dec.SliceType(a.SliceType),
			NALUnitType: h265dec.NALUnitType(a.NALUnitType),
		}
		if len(a.NegDeltaPOC) > 0 || len(a.PosDeltaPOC) > 0 {
			header.ShortTermRPS = buildShortTermRPS(a.NegDeltaPOC, a.PosDeltaPOC)
		}

		if _, err := h265dec.FrameRPS(dpb, f, header, sps, p); err != nil {
			return nil, err
		}

		if _, err := mgr.OutputFrames(tr.MaxOutput, tr.MaxDPB, false); err != nil {
			return nil, err
		}
	}

	if _, err := mgr.OutputFrames(0, 0, false); err != nil {
		return nil, err
	}

	return fifo.poc, nil
}

// buildShortTermRPS concatenates negative and positive deltas into the
// single DeltaPOC/Used pair FrameRPS expects.
func buildShortTermRPS(neg, pos []int32) *h265dec.ShortTermRPS {
	deltas := make([]int32, 0, len(neg)+len(pos))
	deltas = append(deltas, neg...)
	deltas = append(deltas, pos...)
	used := make([]bool, len(deltas))
	for i := range used {
		used[i] = true
	}
	return &h265dec.ShortTermRPS{
		DeltaPOC:        deltas,
		Used:            used,
		NumNegativePics: len(neg),
	}
}

func identityMap(n int) []int {
	m := make([]int, n)
	for i := range m {
		m[i] = i
	}
	return m
}
