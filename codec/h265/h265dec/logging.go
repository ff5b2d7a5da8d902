/*
NAME
  logging.go

DESCRIPTION
  logging.go provides package-level logging for h265dec, following the
  logging.Logger convention used across the av module.

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

import "github.com/ausocean/utils/logging"

// pkg prefixes log messages originating from this package.
const pkg = "h265dec: "

// Log is the package-level logger. Callers that want diagnostics from the
// resolver (e.g. missing-reference concealment) should set this before
// driving the manager. A nil Log is valid and silences all logging.
var Log logging.Logger

// logf writes a log message through Log if set, no-op otherwise.
func logf(level int8, msg string, params ...interface{}) {
	if Log == nil {
		return
	}
	Log.Log(level, pkg+msg, params...)
}
