// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package telemetry

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"periph.io/x/conn/v3/physic"
)

// countingWriter counts Write calls.
type countingWriter struct {
	bytes.Buffer
	calls int
	err   error
}

func (c *countingWriter) Write(p []byte) (int, error) {
	c.calls++
	if c.err != nil {
		return 0, c.err
	}
	return c.Buffer.Write(p)
}

func celsius(c float64) physic.Temperature {
	return physic.ZeroCelsius + physic.Temperature(c*float64(physic.Kelvin))
}

func TestLineWriter(t *testing.T) {
	tests := []struct {
		temperature physic.Temperature
		expected    string
	}{
		{celsius(23.456), "{\"celsius\": 23.46}\r\n"},
		{celsius(0), "{\"celsius\": 0.00}\r\n"},
		{celsius(-5.5), "{\"celsius\": -5.50}\r\n"},
		{celsius(100), "{\"celsius\": 100.00}\r\n"},
	}
	for _, test := range tests {
		w := &countingWriter{}
		lw := NewLineWriter(w)
		if err := lw.Publish(Reading{Temperature: test.temperature}); err != nil {
			t.Fatal(err)
		}
		if got := w.String(); got != test.expected {
			t.Errorf("Publish(%s) wrote %q, expected %q", test.temperature, got, test.expected)
		}
		if w.calls != 1 {
			t.Errorf("expected a single Write, got %d", w.calls)
		}
		var decoded map[string]float64
		if err := json.Unmarshal(bytes.TrimSpace(w.Bytes()), &decoded); err != nil {
			t.Errorf("line is not valid JSON: %v", err)
		}
	}
}

func TestLineWriterError(t *testing.T) {
	writeErr := errors.New("port closed")
	lw := NewLineWriter(&countingWriter{err: writeErr})
	if err := lw.Publish(Reading{}); !errors.Is(err, writeErr) {
		t.Errorf("Publish() returned %v", err)
	}
}

func TestReading(t *testing.T) {
	r := Reading{Temperature: celsius(21.5), Pressure: 101325 * physic.Pascal}
	if got := r.Hectopascal(); got != 1013.25 {
		t.Errorf("Hectopascal() = %f", got)
	}
	if s := r.String(); s != "21.50°C 1013.25hPa" {
		t.Errorf("String() = %q", s)
	}
}

func TestEncodeMQTT(t *testing.T) {
	ts := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	data, err := encodeMQTT("home", Reading{Time: ts, Temperature: celsius(20), Pressure: 100 * physic.KiloPascal})
	if err != nil {
		t.Fatal(err)
	}
	var got mqttReading
	if err = json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.StationID != "home" || !got.Time.Equal(ts) || got.Pascal != 100000 {
		t.Errorf("decoded %+v", got)
	}
	if got.Celsius < 19.999 || got.Celsius > 20.001 {
		t.Errorf("celsius = %f", got.Celsius)
	}
}

func TestMQTTPublishNotConnected(t *testing.T) {
	opts := MQTTOpts{Broker: "127.0.0.1", Port: 1, ClientID: "test", StationID: "home"}
	p := NewMQTTPublisher(opts, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err := p.Publish(Reading{}); !errors.Is(err, ErrNotConnected) {
		t.Errorf("Publish() returned %v, expected ErrNotConnected", err)
	}
	if topic := opts.Topic(); topic != "barolcd/home/reading" {
		t.Errorf("Topic() = %q", topic)
	}
}
