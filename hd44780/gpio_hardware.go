// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
)

// GPIOHardware drives a display wired straight to GPIO lines: a gpio.Group
// for D4-D7 and discrete pins for RS, E and, optionally, the backlight.
type GPIOHardware struct {
	dataPins     gpio.Group
	rsPin        gpio.PinOut
	enablePin    gpio.PinOut
	backlightPin gpio.PinOut
	reg          Register
}

// NewGPIOHardware returns a Hardware using the first 4 pins of dataPins as
// D4-D7. backlightPin may be nil.
func NewGPIOHardware(dataPins gpio.Group, rsPin, enablePin, backlightPin gpio.PinOut) (*GPIOHardware, error) {
	if n := len(dataPins.Pins()); n < 4 {
		return nil, fmt.Errorf("hd44780: 4 data pins required, got %d", n)
	}
	return &GPIOHardware{
		dataPins:     dataPins,
		rsPin:        rsPin,
		enablePin:    enablePin,
		backlightPin: backlightPin,
		reg:          Register{Backlight: true},
	}, nil
}

// SetLine implements Hardware.
func (g *GPIOHardware) SetLine(which Line, asserted bool) {
	g.reg.set(which, asserted)
}

// LoadNibble implements Hardware.
func (g *GPIOHardware) LoadNibble(nibble byte) {
	g.reg.Data = nibble & 0x0f
}

// Commit implements Hardware. E is driven last so D4-D7 and RS are settled
// before the controller sees the edge.
func (g *GPIOHardware) Commit() error {
	if err := g.dataPins.Out(gpio.GPIOValue(g.reg.Data), 0x0f); err != nil {
		return err
	}
	if err := g.rsPin.Out(gpio.Level(g.reg.RegisterSelect)); err != nil {
		return err
	}
	return g.enablePin.Out(gpio.Level(g.reg.Enable))
}

// Delay implements Hardware.
func (g *GPIOHardware) Delay(d time.Duration) {
	spin(d)
}

// Backlight implements display.DisplayBacklight. Without a backlight pin it
// is a no-op.
func (g *GPIOHardware) Backlight(intensity display.Intensity) error {
	g.reg.Backlight = intensity > 0
	if g.backlightPin == nil {
		return nil
	}
	return g.backlightPin.Out(gpio.Level(g.reg.Backlight))
}

// Halt releases the data pins.
func (g *GPIOHardware) Halt() error {
	return g.dataPins.Halt()
}

func (g *GPIOHardware) String() string {
	return g.dataPins.String()
}

var _ Hardware = &GPIOHardware{}
var _ display.DisplayBacklight = &GPIOHardware{}
