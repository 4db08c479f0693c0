// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package hd44780test is meant to be used to test drivers that use an
// hd44780.Hardware back-end.
package hd44780test

import (
	"sync"
	"time"

	"github.com/GermanBionicSystems/barolcd/hd44780"
	"periph.io/x/conn/v3/display"
)

// Record implements hd44780.Hardware and records everything committed to it.
//
// Each Commit appends the staged register to Commits. Delays are summed in
// Delayed rather than waited for.
type Record struct {
	sync.Mutex
	// Err, if set, is returned by Commit instead of recording.
	Err     error
	Commits []hd44780.Register
	Delayed time.Duration

	staged hd44780.Register
}

// SetLine implements hd44780.Hardware.
func (r *Record) SetLine(which hd44780.Line, asserted bool) {
	r.Lock()
	defer r.Unlock()
	switch which {
	case hd44780.RegisterSelect:
		r.staged.RegisterSelect = asserted
	case hd44780.Enable:
		r.staged.Enable = asserted
	}
}

// LoadNibble implements hd44780.Hardware.
func (r *Record) LoadNibble(nibble byte) {
	r.Lock()
	defer r.Unlock()
	r.staged.Data = nibble & 0x0f
}

// Commit implements hd44780.Hardware.
func (r *Record) Commit() error {
	r.Lock()
	defer r.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.Commits = append(r.Commits, r.staged)
	return nil
}

// Delay implements hd44780.Hardware.
func (r *Record) Delay(d time.Duration) {
	r.Lock()
	defer r.Unlock()
	r.Delayed += d
}

// Backlight implements display.DisplayBacklight. The new state is committed
// like a real backpack would.
func (r *Record) Backlight(intensity display.Intensity) error {
	r.Lock()
	r.staged.Backlight = intensity > 0
	r.Unlock()
	return r.Commit()
}

// Latched returns the nibbles the controller would have latched, that is the
// register on every falling edge of E.
func (r *Record) Latched() []hd44780.Register {
	r.Lock()
	defer r.Unlock()
	var out []hd44780.Register
	for ix := 1; ix < len(r.Commits); ix++ {
		if r.Commits[ix-1].Enable && !r.Commits[ix].Enable {
			out = append(out, r.Commits[ix-1])
		}
	}
	return out
}

// Bytes pairs the latched nibbles that follow the first skip nibbles into
// bytes, high nibble first. skip is the number of single nibble writes of
// the 4-bit initialization sequence.
func (r *Record) Bytes(skip int) []Byte {
	latched := r.Latched()
	if skip > len(latched) {
		return nil
	}
	latched = latched[skip:]
	out := make([]Byte, 0, len(latched)/2)
	for ix := 0; ix+1 < len(latched); ix += 2 {
		out = append(out, Byte{
			Data:  latched[ix].RegisterSelect,
			Value: latched[ix].Data<<4 | latched[ix+1].Data&0x0f,
		})
	}
	return out
}

// Reset drops everything recorded so far but keeps the staged lines.
func (r *Record) Reset() {
	r.Lock()
	defer r.Unlock()
	r.Commits = nil
	r.Delayed = 0
}

func (r *Record) String() string {
	return "record"
}

// Byte is an instruction (Data false) or a data byte sent to the controller.
type Byte struct {
	Data  bool
	Value byte
}

var _ hd44780.Hardware = &Record{}
var _ display.DisplayBacklight = &Record{}
