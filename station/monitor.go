// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package station

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GermanBionicSystems/barolcd/telemetry"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/physic"
)

// Splash is shown until the first average is available.
const Splash = "Reading temp..."

// Monitor averages the sensor, runs the thermostat, shows the result and
// publishes it, forever.
type Monitor struct {
	Sampler *Sampler
	// Thermostat is optional.
	Thermostat *Thermostat
	// Display is optional.
	Display display.TextDisplay
	Sinks   []telemetry.Sink
	Logger  *slog.Logger
}

// Run loops until ctx is done or any step fails. There is no retry: the
// first error ends the loop and is returned. The heater is stopped on
// return.
func (m *Monitor) Run(ctx context.Context) (err error) {
	logger := m.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if m.Thermostat != nil {
		if err := m.Thermostat.Off(); err != nil {
			return err
		}
		defer func() {
			err = errors.Join(err, m.Thermostat.Off())
		}()
	}
	if m.Display != nil {
		if err := m.splash(); err != nil {
			return err
		}
	}
	for {
		r, err := m.Sampler.Average(ctx)
		if err != nil {
			return err
		}
		heating := false
		if m.Thermostat != nil {
			if heating, err = m.Thermostat.Update(r.Temperature); err != nil {
				return err
			}
		}
		logger.Info("reading",
			"celsius", r.Celsius(),
			"hpa", r.Hectopascal(),
			"heating", heating,
		)
		if m.Display != nil {
			if err = Show(m.Display, r); err != nil {
				return err
			}
		}
		for _, sink := range m.Sinks {
			if err = sink.Publish(r); err != nil {
				return err
			}
		}
	}
}

func (m *Monitor) splash() error {
	if err := m.Display.Clear(); err != nil {
		return fmt.Errorf("station: display: %w", err)
	}
	if err := m.Display.Home(); err != nil {
		return fmt.Errorf("station: display: %w", err)
	}
	if _, err := m.Display.WriteString(Splash); err != nil {
		return fmt.Errorf("station: display: %w", err)
	}
	return nil
}

// Show writes the temperature on the first row of d and the pressure on the
// second one when d has it.
func Show(d display.TextDisplay, r telemetry.Reading) error {
	if err := d.Clear(); err != nil {
		return fmt.Errorf("station: display: %w", err)
	}
	if err := d.Home(); err != nil {
		return fmt.Errorf("station: display: %w", err)
	}
	if _, err := d.WriteString(fmt.Sprintf("T: %.2fC", r.Celsius())); err != nil {
		return fmt.Errorf("station: display: %w", err)
	}
	if d.Rows() < 2 {
		return nil
	}
	if err := d.MoveTo(d.MinRow()+1, d.MinCol()); err != nil {
		return fmt.Errorf("station: display: %w", err)
	}
	if _, err := d.WriteString(fmt.Sprintf("P: %.2fhPa", r.Hectopascal())); err != nil {
		return fmt.Errorf("station: display: %w", err)
	}
	return nil
}

// Poll reads sensor every interval and logs the values until ctx is done or
// the sensor fails.
func Poll(ctx context.Context, sensor physic.SenseEnv, interval time.Duration, logger *slog.Logger) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		var e physic.Env
		if err := sensor.Sense(&e); err != nil {
			return fmt.Errorf("station: %s: %w", sensor, err)
		}
		logger.Info("pressure", "value", e.Pressure.String())
		logger.Info("temperature", "value", e.Temperature.String())
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
