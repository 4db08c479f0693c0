// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package lcdsim emulates a PCF8574 LCD backpack with an HD44780 character
// display behind it, and shows the display content on the terminal using
// ANSI escape codes.
//
// Dev implements i2c.Bus, so a driver writing to it goes through exactly the
// byte stream a real backpack would receive. Useful while you are waiting for
// your display to come by mail.
package lcdsim

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"strings"
	"sync"

	"github.com/GermanBionicSystems/barolcd/hd44780"
	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// Opts represents the options available for the emulator.
type Opts struct {
	Rows int
	Cols int
	// Addr is the only address the emulated backpack answers to.
	Addr uint16
	// W receives the rendering. Defaults to a colorable stdout.
	W       io.Writer
	Palette *ansi256.Palette

	_ struct{}
}

// DefaultOpts is a 16x2 display behind a backpack at the usual address.
var DefaultOpts = Opts{Rows: 2, Cols: 16, Addr: hd44780.DefaultPCF8574Address}

var (
	// ErrReadUnsupported is returned when a transaction tries to read.
	ErrReadUnsupported = errors.New("lcdsim: device is write-only")
	// ErrNoDevice is returned for transactions to another address.
	ErrNoDevice = errors.New("lcdsim: no device at address")
)

var (
	backlightOn  = color.NRGBA{0x40, 0xa0, 0xff, 0xff}
	backlightOff = color.NRGBA{0x20, 0x20, 0x20, 0xff}
)

const ddramSize = 0x80

// Dev is an emulated backpack and display.
type Dev struct {
	mu      sync.Mutex
	rows    int
	cols    int
	addr    uint16
	w       io.Writer
	palette ansi256.Palette

	last      hd44780.Register
	fourBit   bool
	pending   bool
	high      byte
	ddram     [ddramSize]byte
	cursor    byte
	increment bool
	displayOn bool
	rendered  bool

	buf bytes.Buffer
}

// New returns an emulated display.
func New(opts *Opts) *Dev {
	if opts == nil {
		opts = &DefaultOpts
	}
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	w := opts.W
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	d := &Dev{
		rows:      opts.Rows,
		cols:      opts.Cols,
		addr:      opts.Addr,
		w:         w,
		palette:   *p,
		increment: true,
	}
	d.clear()
	return d
}

func (d *Dev) String() string {
	return fmt.Sprintf("lcdsim_%x", d.addr)
}

// Tx implements i2c.Bus. Each written byte is one update of the expander
// outputs.
func (d *Dev) Tx(addr uint16, w, r []byte) error {
	if addr != d.addr {
		return fmt.Errorf("%w 0x%x", ErrNoDevice, addr)
	}
	if len(r) != 0 {
		return ErrReadUnsupported
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, b := range w {
		reg := hd44780.RegisterFromByte(b)
		changed := reg.Backlight != d.last.Backlight
		// The controller samples RS and D4-D7 on the falling edge of E.
		if d.last.Enable && !reg.Enable {
			if d.latch(d.last.RegisterSelect, d.last.Data&0x0f) {
				changed = true
			}
		}
		d.last = reg
		if changed {
			if err := d.render(); err != nil {
				return err
			}
		}
	}
	return nil
}

// SetSpeed implements i2c.Bus.
func (d *Dev) SetSpeed(f physic.Frequency) error {
	return nil
}

// Lines returns the visible content of each row, padded to the column count.
func (d *Dev) Lines() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lines()
}

// Backlight returns the state of the backlight output.
func (d *Dev) Backlight() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last.Backlight
}

// DisplayOn reports whether the controller has the display enabled.
func (d *Dev) DisplayOn() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.displayOn
}

// Halt implements conn.Resource.
//
// It resets the terminal attributes so the console is not corrupted.
func (d *Dev) Halt() error {
	_, err := d.w.Write([]byte("\033[0m\n"))
	return err
}

// latch handles one nibble the controller received. It reports whether the
// visible state changed.
func (d *Dev) latch(rs bool, nibble byte) bool {
	if !d.fourBit {
		// Still in 8-bit mode: D0-D3 are not wired, so each nibble is a
		// whole instruction with a zero low half.
		if nibble == 0x02 {
			d.fourBit = true
		}
		return false
	}
	if !d.pending {
		d.high = nibble
		d.pending = true
		return false
	}
	d.pending = false
	value := d.high<<4 | nibble
	if rs {
		d.ddram[d.cursor] = value
		d.advance()
		return true
	}
	return d.execute(value)
}

func (d *Dev) execute(cmd byte) bool {
	switch {
	case cmd&0x80 != 0:
		d.cursor = cmd & (ddramSize - 1)
		return false
	case cmd&0x40 != 0:
		// CGRAM address; custom characters are not emulated.
		return false
	case cmd&0x20 != 0:
		if cmd&0x10 != 0 {
			d.fourBit = false
			d.pending = false
		}
		return false
	case cmd&0x10 != 0:
		if cmd&0x08 == 0 {
			if cmd&0x04 != 0 {
				d.cursor = (d.cursor + 1) & (ddramSize - 1)
			} else {
				d.cursor = (d.cursor - 1) & (ddramSize - 1)
			}
		}
		return false
	case cmd&0x08 != 0:
		on := cmd&0x04 != 0
		changed := on != d.displayOn
		d.displayOn = on
		return changed
	case cmd&0x04 != 0:
		d.increment = cmd&0x02 != 0
		return false
	case cmd&0x02 != 0:
		d.cursor = 0
		return false
	case cmd == 0x01:
		d.clear()
		return true
	}
	return false
}

func (d *Dev) advance() {
	if d.increment {
		d.cursor = (d.cursor + 1) & (ddramSize - 1)
	} else {
		d.cursor = (d.cursor - 1) & (ddramSize - 1)
	}
}

func (d *Dev) clear() {
	for ix := range d.ddram {
		d.ddram[ix] = ' '
	}
	d.cursor = 0
	d.increment = true
}

func rowOffset(row, cols int) byte {
	offsets := []byte{0x00, 0x40, 0x14, 0x54}
	if cols == 16 {
		offsets = []byte{0x00, 0x40, 0x10, 0x50}
	}
	return offsets[row%len(offsets)]
}

func (d *Dev) lines() []string {
	out := make([]string, d.rows)
	for row := range d.rows {
		var sb strings.Builder
		start := int(rowOffset(row, d.cols))
		for col := range d.cols {
			c := d.ddram[(start+col)&(ddramSize-1)]
			if c < 0x20 || c > 0x7e {
				c = '?'
			}
			sb.WriteByte(c)
		}
		out[row] = sb.String()
	}
	return out
}

// render redraws the display in place.
func (d *Dev) render() error {
	d.buf.Reset()
	if d.rendered {
		fmt.Fprintf(&d.buf, "\033[%dA", d.rows)
	}
	c := backlightOff
	if d.last.Backlight {
		c = backlightOn
	}
	swatch := d.palette.Block(c)
	for _, line := range d.lines() {
		if !d.displayOn {
			line = strings.Repeat(" ", d.cols)
		}
		_, _ = d.buf.WriteString("\r\033[0m")
		_, _ = io.WriteString(&d.buf, swatch)
		_, _ = d.buf.WriteString("\033[0m |" + line + "|\n")
	}
	d.rendered = true
	_, err := d.buf.WriteTo(d.w)
	return err
}

var _ i2c.Bus = &Dev{}
var _ conn.Resource = &Dev{}
