// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/i2c"
)

// DefaultPCF8574Address is the address most PCF8574 LCD backpacks ship with.
const DefaultPCF8574Address uint16 = 0x27

// Backpack drives an HD44780 through a PCF8574 I/O expander backpack.
//
// The expander is write-only as far as the display is concerned, so Backpack
// keeps a shadow of the eight outputs. The shadow holds the last value
// assembled for the device: a failed Commit does not roll it back.
//
// # Product Information
//
// https://www.handsontec.com/dataspecs/I2C_2004_LCD.pdf
type Backpack struct {
	d   *i2c.Dev
	reg Register
}

// NewPCF8574Backpack returns a Backpack for the expander at address on bus.
// The backlight starts on and every other line low. Nothing is written to the
// bus until the first Commit.
func NewPCF8574Backpack(bus i2c.Bus, address uint16) *Backpack {
	return &Backpack{
		d:   &i2c.Dev{Bus: bus, Addr: address},
		reg: Register{Backlight: true},
	}
}

// NewPCF8574Display returns an initialized display wired through a PCF8574
// backpack. To use this, get an I2C bus, and call this function with the
// bus, i2c address, number of rows, and columns.
func NewPCF8574Display(bus i2c.Bus, address uint16, rows, cols int) (*HD44780, error) {
	return NewHD44780(NewPCF8574Backpack(bus, address), rows, cols)
}

// SetLine implements Hardware.
func (b *Backpack) SetLine(which Line, asserted bool) {
	b.reg.set(which, asserted)
}

// LoadNibble implements Hardware. Only the low 4 bits of nibble are used.
func (b *Backpack) LoadNibble(nibble byte) {
	b.reg.Data = nibble & 0x0f
}

// Commit implements Hardware. It writes the shadow to the expander in a
// single transaction and returns the bus error unchanged.
func (b *Backpack) Commit() error {
	return b.d.Tx([]byte{b.reg.Byte()}, nil)
}

// Delay implements Hardware.
func (b *Backpack) Delay(d time.Duration) {
	spin(d)
}

// SetBacklight turns the backlight on or off and commits right away.
func (b *Backpack) SetBacklight(on bool) error {
	b.reg.Backlight = on
	return b.Commit()
}

// Backlight implements display.DisplayBacklight. Any intensity above zero
// turns the backlight on.
func (b *Backpack) Backlight(intensity display.Intensity) error {
	return b.SetBacklight(intensity > 0)
}

// Register returns the shadow of the expander outputs.
func (b *Backpack) Register() Register {
	return b.reg
}

// Halt turns the backlight off. Implements conn.Resource.
func (b *Backpack) Halt() error {
	return b.SetBacklight(false)
}

func (b *Backpack) String() string {
	return fmt.Sprintf("PCF8574_%x", b.d.Addr)
}

var _ Hardware = &Backpack{}
var _ display.DisplayBacklight = &Backpack{}
var _ conn.Resource = &Backpack{}
