// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package telemetry publishes station readings.
//
// LineWriter emits one JSON object per line on a serial port (or any
// io.Writer), MQTTPublisher sends them to an MQTT broker.
package telemetry

import (
	"fmt"
	"io"
	"time"

	"periph.io/x/conn/v3/physic"
)

// Reading is one averaged sample of the station sensor.
type Reading struct {
	Time        time.Time
	Temperature physic.Temperature
	Pressure    physic.Pressure
}

// Celsius returns the temperature in degrees Celsius.
func (r Reading) Celsius() float64 {
	return r.Temperature.Celsius()
}

// Hectopascal returns the pressure in hPa.
func (r Reading) Hectopascal() float64 {
	return float64(r.Pressure) / float64(100*physic.Pascal)
}

func (r Reading) String() string {
	return fmt.Sprintf("%.2f°C %.2fhPa", r.Celsius(), r.Hectopascal())
}

// Sink receives readings.
type Sink interface {
	Publish(r Reading) error
}

// LineWriter writes readings as `{"celsius": 23.45}` terminated by CRLF.
type LineWriter struct {
	w io.Writer
}

// NewLineWriter returns a LineWriter writing to w.
func NewLineWriter(w io.Writer) *LineWriter {
	return &LineWriter{w: w}
}

// Publish implements Sink. Each line is written with a single Write call.
func (l *LineWriter) Publish(r Reading) error {
	line := fmt.Appendf(nil, "{\"celsius\": %.2f}\r\n", r.Celsius())
	if _, err := l.w.Write(line); err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	return nil
}

var _ Sink = &LineWriter{}
