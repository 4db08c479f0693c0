// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import "fmt"

// Bit positions of the LCD lines on the PCF8574 outputs of a common
// LCD1602/LCD2004 backpack. P1 is wired to R/W and is kept low so the
// controller is only ever written to.
const (
	bitRegisterSelect = 0
	bitReadWrite      = 1
	bitEnable         = 2
	bitBacklight      = 3
	dataShift         = 4
)

// Register is the state of the eight expander outputs driving the display.
type Register struct {
	RegisterSelect bool
	Enable         bool
	Backlight      bool
	// Data holds D4-D7 in its low 4 bits. The upper bits are ignored.
	Data byte
}

// Byte returns the value to write to the expander.
func (r Register) Byte() byte {
	b := (r.Data & 0x0f) << dataShift
	if r.RegisterSelect {
		b |= 1 << bitRegisterSelect
	}
	if r.Enable {
		b |= 1 << bitEnable
	}
	if r.Backlight {
		b |= 1 << bitBacklight
	}
	return b
}

// RegisterFromByte decodes an expander output value. The R/W bit is dropped.
func RegisterFromByte(b byte) Register {
	return Register{
		RegisterSelect: b&(1<<bitRegisterSelect) != 0,
		Enable:         b&(1<<bitEnable) != 0,
		Backlight:      b&(1<<bitBacklight) != 0,
		Data:           b >> dataShift,
	}
}

// set changes one control line.
func (r *Register) set(which Line, asserted bool) {
	switch which {
	case RegisterSelect:
		r.RegisterSelect = asserted
	case Enable:
		r.Enable = asserted
	}
}

func (r Register) String() string {
	return fmt.Sprintf("RS=%t E=%t BL=%t D=%04b", r.RegisterSelect, r.Enable, r.Backlight, r.Data&0x0f)
}
