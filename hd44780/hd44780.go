// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package hd44780 controls the Hitachi LCD display chipset HD-44780 in 4-bit
// mode.
//
// The driver talks to the controller through a Hardware back-end. Backpack
// drives the display through the PCF8574 I/O expander found on most I2C LCD
// backpacks, and GPIOHardware drives a display wired to host GPIO pins.
//
// # Datasheet
//
// https://www.sparkfun.com/datasheets/LCD/HD44780.pdf
package hd44780

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
)

// Instructions. Refer to table 6 of the datasheet.
const (
	cmdClear       byte = 0x01
	cmdHome        byte = 0x02
	cmdEntryMode   byte = 0x04
	cmdDisplay     byte = 0x08
	cmdShift       byte = 0x10
	cmdFunctionSet byte = 0x20
	cmdSetDDRAM    byte = 0x80

	entryIncrement byte = 0x02
	entryShift     byte = 0x01

	displayOn byte = 0x04
	cursorOn  byte = 0x02
	blinkOn   byte = 0x01

	shiftRight byte = 0x04

	functionTwoLines byte = 0x08
)

const (
	delayPowerOn  = 50 * time.Millisecond
	delayReset    = 4100 * time.Microsecond
	delayResetEnd = 100 * time.Microsecond
	delayPulse    = time.Microsecond
	delayCommand  = 50 * time.Microsecond
	delayClear    = 2 * time.Millisecond
)

// The controller has 80 bytes of DDRAM, split in two lines of 40.
const (
	maxCols  = 40
	maxCells = 80
)

// DDRAM address of the first column of each row. 16 column modules map rows
// 3 and 4 right after the visible part of rows 1 and 2.
var rowConstants = [][]byte{{0x00, 0x40, 0x10, 0x50}, {0x00, 0x40, 0x14, 0x54}}

// Return the row offset value for a 1-based row.
func getRowConstant(row, maxcols int) byte {
	var offset int
	if maxcols != 16 {
		offset = 1
	}
	return rowConstants[offset][row-1]
}

// HD44780 is a 4-bit mode HD44780 display driven through a Hardware back-end.
//
// Implements periph.io/conn/x/display/TextDisplay and display.DisplayBacklight
type HD44780 struct {
	hw         Hardware
	rows       int
	cols       int
	on         bool
	cursor     bool
	blink      bool
	autoScroll bool
}

// NewHD44780 takes a Hardware back-end and the display geometry. It returns
// the HD44780 device in an initialized state and ready for use.
func NewHD44780(hw Hardware, rows, cols int) (*HD44780, error) {
	if rows < 1 || rows > 4 || cols < 1 || cols > maxCols || rows*cols > maxCells {
		return nil, fmt.Errorf("hd44780: invalid geometry %dx%d", rows, cols)
	}
	lcd := &HD44780{
		hw:   hw,
		rows: rows,
		cols: cols,
		on:   true,
	}
	return lcd, lcd.init()
}

// AutoScroll turns display shifting on write on or off.
func (lcd *HD44780) AutoScroll(enabled bool) error {
	lcd.autoScroll = enabled
	return lcd.sendCommand(lcd.entryMode())
}

// Clears the screen and moves the cursor to the first position.
func (lcd *HD44780) Clear() error {
	if err := lcd.sendCommand(cmdClear); err != nil {
		return err
	}
	lcd.hw.Delay(delayClear)
	return nil
}

// Return the number of columns the display supports
func (lcd *HD44780) Cols() int {
	return lcd.cols
}

// Set the cursor mode. You can pass multiple arguments.
// Cursor(CursorOff, CursorUnderline)
func (lcd *HD44780) Cursor(modes ...display.CursorMode) error {
	for _, mode := range modes {
		switch mode {
		case display.CursorOff:
			lcd.blink = false
			lcd.cursor = false
		case display.CursorUnderline:
			lcd.cursor = true
		case display.CursorBlock, display.CursorBlink:
			lcd.blink = true
		default:
			return fmt.Errorf("hd44780: unexpected cursor: %d", mode)
		}
	}
	return lcd.sendCommand(lcd.displayControl())
}

// Move the cursor home (MinRow(),MinCol())
func (lcd *HD44780) Home() error {
	if err := lcd.sendCommand(cmdHome); err != nil {
		return err
	}
	lcd.hw.Delay(delayClear)
	return nil
}

// Return the min column position.
func (lcd *HD44780) MinCol() int {
	return 1
}

// Return the min row position.
func (lcd *HD44780) MinRow() int {
	return 1
}

// Move the cursor forward or backward.
func (lcd *HD44780) Move(dir display.CursorDirection) error {
	val := cmdShift
	switch dir {
	case display.Backward:
	case display.Forward:
		val |= shiftRight
	case display.Down, display.Up:
		return fmt.Errorf("hd44780: %w", display.ErrNotImplemented)
	default:
		return fmt.Errorf("hd44780: unexpected direction: %d", dir)
	}
	return lcd.sendCommand(val)
}

// Move the cursor to arbitrary position.
func (lcd *HD44780) MoveTo(row, col int) error {
	if row < lcd.MinRow() || row > lcd.rows || col < lcd.MinCol() || col > lcd.cols {
		return fmt.Errorf("hd44780: MoveTo(%d,%d) value out of range", row, col)
	}
	return lcd.sendCommand(cmdSetDDRAM | (getRowConstant(row, lcd.cols) + byte(col-1)))
}

// Return the number of rows the display supports.
func (lcd *HD44780) Rows() int {
	return lcd.rows
}

// Return info about the display.
func (lcd *HD44780) String() string {
	return fmt.Sprintf("HD44780::%v - Rows: %d, Cols: %d", lcd.hw, lcd.rows, lcd.cols)
}

// Turn the display on / off
func (lcd *HD44780) Display(on bool) error {
	lcd.on = on
	return lcd.sendCommand(lcd.displayControl())
}

// Write a set of bytes to the display.
func (lcd *HD44780) Write(p []byte) (n int, err error) {
	lcd.hw.SetLine(RegisterSelect, true)
	for _, byteVal := range p {
		if err = lcd.writeByte(byteVal); err != nil {
			return
		}
		n++
	}
	return
}

// Write a string output to the display.
func (lcd *HD44780) WriteString(text string) (int, error) {
	return lcd.Write([]byte(text))
}

// Halt clears the display, turns the backlight off, and turns the display off.
func (lcd *HD44780) Halt() error {
	errClear := lcd.Clear()
	errBacklight := lcd.Backlight(0)
	if errors.Is(errBacklight, display.ErrNotImplemented) {
		errBacklight = nil
	}
	return errors.Join(errClear, errBacklight, lcd.Display(false))
}

// Turn the display's backlight on or off. The Hardware back-end must
// implement display.DisplayBacklight.
func (lcd *HD44780) Backlight(intensity display.Intensity) error {
	bl, ok := lcd.hw.(display.DisplayBacklight)
	if !ok {
		return fmt.Errorf("hd44780: backlight %w", display.ErrNotImplemented)
	}
	return bl.Backlight(intensity)
}

// Init the display. This is the startup sequence for the Hitachi HD44780U
// chip as documented in figure 24 of the datasheet.
func (lcd *HD44780) init() error {
	lcd.hw.SetLine(RegisterSelect, false)
	lcd.hw.SetLine(Enable, false)
	if err := lcd.hw.Commit(); err != nil {
		return err
	}
	lcd.hw.Delay(delayPowerOn)

	// Three times 0x3 resynchronises the controller whatever mode it was
	// left in, then 0x2 selects the 4-bit interface.
	steps := []struct {
		nibble byte
		wait   time.Duration
	}{
		{0x03, delayReset},
		{0x03, delayResetEnd},
		{0x03, delayCommand},
		{0x02, delayCommand},
	}
	for _, step := range steps {
		if err := lcd.write4Bits(step.nibble); err != nil {
			return err
		}
		lcd.hw.Delay(step.wait)
	}

	function := cmdFunctionSet
	if lcd.rows > 1 {
		function |= functionTwoLines
	}
	if err := lcd.sendCommand(function); err != nil {
		return err
	}
	if err := lcd.Cursor(display.CursorOff); err != nil {
		return err
	}
	if err := lcd.Clear(); err != nil {
		return err
	}
	if err := lcd.sendCommand(lcd.entryMode()); err != nil {
		return err
	}
	if err := lcd.Home(); err != nil {
		return err
	}
	if _, ok := lcd.hw.(display.DisplayBacklight); ok {
		return lcd.Backlight(0xff)
	}
	return nil
}

func (lcd *HD44780) displayControl() byte {
	val := cmdDisplay
	if lcd.on {
		val |= displayOn
	}
	if lcd.cursor {
		val |= cursorOn
	}
	if lcd.blink {
		val |= blinkOn
	}
	return val
}

func (lcd *HD44780) entryMode() byte {
	val := cmdEntryMode | entryIncrement
	if lcd.autoScroll {
		val |= entryShift
	}
	return val
}

func (lcd *HD44780) sendCommand(command byte) error {
	lcd.hw.SetLine(RegisterSelect, false)
	return lcd.writeByte(command)
}

// writeByte sends value high nibble first with RS left as the caller set it.
func (lcd *HD44780) writeByte(value byte) error {
	if err := lcd.write4Bits(value >> 4); err != nil {
		return err
	}
	if err := lcd.write4Bits(value); err != nil {
		return err
	}
	lcd.hw.Delay(delayCommand)
	return nil
}

// write4Bits places nibble on D4-D7 and pulses E.
func (lcd *HD44780) write4Bits(nibble byte) error {
	lcd.hw.LoadNibble(nibble & 0x0f)
	lcd.hw.SetLine(Enable, true)
	if err := lcd.hw.Commit(); err != nil {
		return err
	}
	lcd.hw.Delay(delayPulse)
	lcd.hw.SetLine(Enable, false)
	return lcd.hw.Commit()
}

var _ display.TextDisplay = &HD44780{}
var _ display.DisplayBacklight = &HD44780{}
var _ conn.Resource = &HD44780{}
