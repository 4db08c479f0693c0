// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780_test

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/GermanBionicSystems/barolcd/hd44780"
	"github.com/GermanBionicSystems/barolcd/hd44780/hd44780test"
	"github.com/GermanBionicSystems/barolcd/lcdsim"
	"github.com/google/go-cmp/cmp"
	periphDisplay "periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/display/displaytest"
)

const (
	testRows = 2
	testCols = 16

	// Number of single nibble writes in the 4-bit initialization.
	initNibbles = 4
)

func cmd(v byte) hd44780test.Byte  { return hd44780test.Byte{Value: v} }
func data(v byte) hd44780test.Byte { return hd44780test.Byte{Data: true, Value: v} }

func getLCD(t *testing.T) (*hd44780.HD44780, *hd44780test.Record) {
	t.Helper()
	rec := &hd44780test.Record{}
	lcd, err := hd44780.NewHD44780(rec, testRows, testCols)
	if err != nil {
		t.Fatal(err)
	}
	return lcd, rec
}

// noBacklight hides the backlight of the embedded back-end.
type noBacklight struct {
	hd44780.Hardware
}

func TestInit(t *testing.T) {
	_, rec := getLCD(t)

	latched := rec.Latched()
	if len(latched) < initNibbles {
		t.Fatalf("expected at least %d nibbles, got %d", initNibbles, len(latched))
	}
	for ix, expected := range []byte{0x03, 0x03, 0x03, 0x02} {
		if latched[ix].Data != expected || latched[ix].RegisterSelect {
			t.Errorf("init nibble %d = %s, expected instruction %x", ix, latched[ix], expected)
		}
	}

	expected := []hd44780test.Byte{
		cmd(0x28), // 4 bit, 2 lines, 5x8
		cmd(0x0c), // display on, cursor off, blink off
		cmd(0x01), // clear
		cmd(0x06), // increment, no shift
		cmd(0x02), // home
	}
	if diff := cmp.Diff(expected, rec.Bytes(initNibbles)); diff != "" {
		t.Errorf("init sequence mismatch (-want +got):\n%s", diff)
	}

	last := rec.Commits[len(rec.Commits)-1]
	if !last.Backlight || last.Enable {
		t.Errorf("expected the backlight on and E low after init, got %s", last)
	}
	if rec.Delayed < 50_000_000 {
		t.Errorf("init must wait for the controller power on, waited %s", rec.Delayed)
	}
}

func TestSingleLineInit(t *testing.T) {
	rec := &hd44780test.Record{}
	if _, err := hd44780.NewHD44780(rec, 1, 8); err != nil {
		t.Fatal(err)
	}
	if got := rec.Bytes(initNibbles)[0]; got != cmd(0x20) {
		t.Errorf("function set = %#v, expected 0x20", got)
	}
}

func TestInvalidGeometry(t *testing.T) {
	for _, geometry := range [][2]int{{0, 16}, {5, 20}, {2, 0}, {2, 41}, {2, 80}, {4, 40}} {
		rec := &hd44780test.Record{}
		if _, err := hd44780.NewHD44780(rec, geometry[0], geometry[1]); err == nil {
			t.Errorf("NewHD44780(%d, %d) expected error", geometry[0], geometry[1])
		}
		if len(rec.Commits) != 0 {
			t.Errorf("NewHD44780(%d, %d) touched the hardware", geometry[0], geometry[1])
		}
	}
}

func TestEnablePulse(t *testing.T) {
	lcd, rec := getLCD(t)
	rec.Reset()
	if _, err := lcd.Write([]byte{'A'}); err != nil {
		t.Fatal(err)
	}
	if len(rec.Commits) != 4 {
		t.Fatalf("expected 2 commits per nibble, got %d", len(rec.Commits))
	}
	for ix, c := range rec.Commits {
		if c.Enable != (ix%2 == 0) {
			t.Errorf("commit %d: E=%t", ix, c.Enable)
		}
		if !c.RegisterSelect {
			t.Errorf("commit %d: RS must be high for data", ix)
		}
	}
	if rec.Commits[0].Data != 0x4 || rec.Commits[2].Data != 0x1 {
		t.Errorf("'A' sent as %s, %s", rec.Commits[0], rec.Commits[2])
	}
	if rec.Delayed == 0 {
		t.Error("expected a delay after the enable pulse")
	}
}

func TestWrite(t *testing.T) {
	lcd, rec := getLCD(t)
	rec.Reset()
	n, err := lcd.WriteString("Hi")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("WriteString() returned %d, expected 2", n)
	}
	if err = lcd.Home(); err != nil {
		t.Fatal(err)
	}
	expected := []hd44780test.Byte{data('H'), data('i'), cmd(0x02)}
	if diff := cmp.Diff(expected, rec.Bytes(0)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestMoveTo(t *testing.T) {
	tests := []struct {
		rows, cols int
		row, col   int
		expected   byte
	}{
		{2, 16, 1, 1, 0x80},
		{2, 16, 2, 1, 0xc0},
		{2, 16, 2, 16, 0xcf},
		{4, 16, 3, 1, 0x90},
		{4, 20, 3, 1, 0x94},
		{4, 20, 4, 20, 0xe7},
		{2, 40, 2, 40, 0xe7},
		{1, 40, 1, 40, 0xa7},
	}
	for _, test := range tests {
		rec := &hd44780test.Record{}
		lcd, err := hd44780.NewHD44780(rec, test.rows, test.cols)
		if err != nil {
			t.Fatal(err)
		}
		rec.Reset()
		if err = lcd.MoveTo(test.row, test.col); err != nil {
			t.Fatal(err)
		}
		if got := rec.Bytes(0); len(got) != 1 || got[0] != cmd(test.expected) {
			t.Errorf("%dx%d MoveTo(%d,%d) sent %#v, expected 0x%x", test.rows, test.cols, test.row, test.col, got, test.expected)
		}
	}

	lcd, _ := getLCD(t)
	for _, bad := range [][2]int{{0, 1}, {1, 0}, {testRows + 1, 1}, {1, testCols + 1}} {
		if err := lcd.MoveTo(bad[0], bad[1]); err == nil {
			t.Errorf("MoveTo(%d,%d) expected error", bad[0], bad[1])
		}
	}
}

func TestModes(t *testing.T) {
	lcd, rec := getLCD(t)
	rec.Reset()
	steps := []func() error{
		func() error { return lcd.Cursor(periphDisplay.CursorUnderline) },
		func() error { return lcd.Cursor(periphDisplay.CursorBlink) },
		func() error { return lcd.Cursor(periphDisplay.CursorOff) },
		func() error { return lcd.Display(false) },
		func() error { return lcd.Display(true) },
		func() error { return lcd.AutoScroll(true) },
		func() error { return lcd.AutoScroll(false) },
		func() error { return lcd.Move(periphDisplay.Forward) },
		func() error { return lcd.Move(periphDisplay.Backward) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			t.Fatal(err)
		}
	}
	expected := []hd44780test.Byte{
		cmd(0x0e), cmd(0x0f), cmd(0x0c), cmd(0x08), cmd(0x0c),
		cmd(0x07), cmd(0x06), cmd(0x14), cmd(0x10),
	}
	if diff := cmp.Diff(expected, rec.Bytes(0)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	if err := lcd.Cursor(periphDisplay.CursorBlink + 1); err == nil {
		t.Error("Cursor() with invalid mode expected error")
	}
	if err := lcd.Move(periphDisplay.Up); !errors.Is(err, periphDisplay.ErrNotImplemented) {
		t.Errorf("Move(Up) returned %v", err)
	}
	if err := lcd.Move(periphDisplay.Down + 1); err == nil {
		t.Error("Move() with invalid direction expected error")
	}
}

func TestCommitError(t *testing.T) {
	lcd, rec := getLCD(t)
	busErr := errors.New("bus error")
	rec.Err = busErr
	n, err := lcd.WriteString("abc")
	if !errors.Is(err, busErr) {
		t.Errorf("WriteString() returned %v, expected the bus error", err)
	}
	if n != 0 {
		t.Errorf("WriteString() reported %d bytes written", n)
	}
	if err = lcd.Clear(); !errors.Is(err, busErr) {
		t.Errorf("Clear() returned %v", err)
	}

	rec = &hd44780test.Record{Err: busErr}
	if _, err = hd44780.NewHD44780(rec, testRows, testCols); !errors.Is(err, busErr) {
		t.Errorf("NewHD44780() returned %v", err)
	}
}

func TestBacklight(t *testing.T) {
	lcd, rec := getLCD(t)
	if err := lcd.Backlight(0); err != nil {
		t.Fatal(err)
	}
	if rec.Commits[len(rec.Commits)-1].Backlight {
		t.Error("Backlight(0) did not commit the backlight off")
	}
	if err := lcd.Halt(); err != nil {
		t.Error(err)
	}

	lcd, err := hd44780.NewHD44780(noBacklight{&hd44780test.Record{}}, testRows, testCols)
	if err != nil {
		t.Fatal(err)
	}
	if err = lcd.Backlight(0xff); !errors.Is(err, periphDisplay.ErrNotImplemented) {
		t.Errorf("Backlight() returned %v, expected ErrNotImplemented", err)
	}
	if err = lcd.Halt(); err != nil {
		t.Errorf("Halt() without a backlight returned %v", err)
	}
}

func TestBasic(t *testing.T) {
	lcd, _ := getLCD(t)
	s := lcd.String()
	t.Log(s)
	if !strings.Contains(s, "record") {
		t.Errorf("String() = %q", s)
	}
	if lcd.Rows() != testRows {
		t.Errorf("Rows() expected %d, received %d", testRows, lcd.Rows())
	}
	if lcd.Cols() != testCols {
		t.Errorf("Cols() expected %d, received %d", testCols, lcd.Cols())
	}
}

func TestInterface(t *testing.T) {
	lcd, _ := getLCD(t)
	defer func() { _ = lcd.Halt() }()
	errs := displaytest.TestTextDisplay(lcd, false)
	for _, err := range errs {
		if !errors.Is(err, periphDisplay.ErrNotImplemented) {
			t.Error(err)
		}
	}
}

// TestPCF8574Display runs the driver and the backpack against the emulated
// display and checks what ends up on screen.
func TestPCF8574Display(t *testing.T) {
	sim := lcdsim.New(&lcdsim.Opts{Rows: testRows, Cols: testCols, Addr: hd44780.DefaultPCF8574Address, W: io.Discard})
	lcd, err := hd44780.NewPCF8574Display(sim, hd44780.DefaultPCF8574Address, testRows, testCols)
	if err != nil {
		t.Fatal(err)
	}
	if !sim.Backlight() || !sim.DisplayOn() {
		t.Error("expected the display and backlight on after init")
	}
	if _, err = lcd.WriteString("T: 23.45C"); err != nil {
		t.Fatal(err)
	}
	if err = lcd.MoveTo(2, 1); err != nil {
		t.Fatal(err)
	}
	if _, err = lcd.WriteString("P: 1013.25hPa"); err != nil {
		t.Fatal(err)
	}
	expected := []string{
		"T: 23.45C       ",
		"P: 1013.25hPa   ",
	}
	if diff := cmp.Diff(expected, sim.Lines()); diff != "" {
		t.Errorf("screen mismatch (-want +got):\n%s", diff)
	}

	if err = lcd.Clear(); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(strings.Join(sim.Lines(), "")); got != "" {
		t.Errorf("expected a blank screen after Clear(), got %q", got)
	}
	if err = lcd.Halt(); err != nil {
		t.Fatal(err)
	}
	if sim.Backlight() || sim.DisplayOn() {
		t.Error("Halt() must turn the display and backlight off")
	}
}
