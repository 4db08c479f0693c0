// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package station

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// DefaultThreshold is the temperature under which the heater runs.
const DefaultThreshold = physic.ZeroCelsius + 23500*physic.MilliKelvin

// Thermostat switches an active-low heater output: Low runs the heater.
type Thermostat struct {
	Heater    gpio.PinOut
	Threshold physic.Temperature
}

// Update runs the heater when t is below the threshold and stops it
// otherwise. It returns whether the heater runs.
func (th *Thermostat) Update(t physic.Temperature) (bool, error) {
	on := t < th.Threshold
	return on, th.set(on)
}

// Off stops the heater.
func (th *Thermostat) Off() error {
	return th.set(false)
}

func (th *Thermostat) set(on bool) error {
	if th.Heater == nil {
		return nil
	}
	if err := th.Heater.Out(gpio.Level(!on)); err != nil {
		return fmt.Errorf("station: heater %s: %w", th.Heater, err)
	}
	return nil
}
