// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package barolcd is a barometric station built on periph.
//
// hd44780 drives a character LCD through a PCF8574 backpack or plain GPIOs,
// lcdsim emulates that backpack on a terminal and station averages a
// barometric sensor, runs the heater and publishes readings through
// telemetry.
//
// The programs live under cmd/.
package barolcd
