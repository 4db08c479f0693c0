// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package station runs the barometric station: it averages sensor samples,
// drives the heater, shows the result on a text display and publishes it.
package station

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/GermanBionicSystems/barolcd/telemetry"
	"periph.io/x/conn/v3/physic"
)

// Sampler averages readings of an environmental sensor.
type Sampler struct {
	Sensor physic.SenseEnv
	// Count is the number of samples per average.
	Count int
	// Interval separates two samples.
	Interval time.Duration
}

// Average takes Count samples Interval apart and returns their mean. The
// first sample is taken right away. Any sensor error aborts the average.
func (s *Sampler) Average(ctx context.Context) (telemetry.Reading, error) {
	if s.Count < 1 {
		return telemetry.Reading{}, errors.New("station: sample count must be at least 1")
	}
	var sumT, sumP int64
	var timer *time.Timer
	for ix := range s.Count {
		if ix > 0 {
			if timer == nil {
				timer = time.NewTimer(s.Interval)
				defer timer.Stop()
			} else {
				timer.Reset(s.Interval)
			}
			select {
			case <-ctx.Done():
				return telemetry.Reading{}, ctx.Err()
			case <-timer.C:
			}
		}
		var e physic.Env
		if err := s.Sensor.Sense(&e); err != nil {
			return telemetry.Reading{}, fmt.Errorf("station: %s: %w", s.Sensor, err)
		}
		sumT += int64(e.Temperature)
		sumP += int64(e.Pressure)
	}
	n := int64(s.Count)
	return telemetry.Reading{
		Time:        time.Now(),
		Temperature: physic.Temperature(sumT / n),
		Pressure:    physic.Pressure(sumP / n),
	}, nil
}
