// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"fmt"
	"time"
)

// Line identifies one of the HD44780 control lines a Hardware back-end drives.
type Line int

const (
	// RegisterSelect chooses between the instruction register (low) and the
	// data register (high).
	RegisterSelect Line = iota
	// Enable is the strobe. The controller latches the data lines on its
	// falling edge.
	Enable
)

func (l Line) String() string {
	switch l {
	case RegisterSelect:
		return "RS"
	case Enable:
		return "E"
	default:
		return fmt.Sprintf("Line(%d)", int(l))
	}
}

// Hardware is the back-end the HD44780 driver uses to reach the controller
// pins in 4-bit mode.
//
// SetLine and LoadNibble only stage a new pin state. Nothing is visible to
// the controller until Commit is called. Delay blocks for at least d and is
// used to honour the controller's minimum pulse widths and execution times.
//
// A Hardware that also implements display.DisplayBacklight gets backlight
// control through HD44780.Backlight.
type Hardware interface {
	SetLine(which Line, asserted bool)
	LoadNibble(nibble byte)
	Commit() error
	Delay(d time.Duration)
}
