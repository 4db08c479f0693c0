// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// barometer logs the pressure and temperature of a BMP280 every
// SAMPLE_INTERVAL.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/GermanBionicSystems/barolcd/internal/config"
	"github.com/GermanBionicSystems/barolcd/internal/logging"
	"github.com/GermanBionicSystems/barolcd/station"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/bmxx80"
	"periph.io/x/host/v3"
)

var version = "dev"
var appName = "barometer"

func mainImpl(ctx context.Context, cfg config.Config) error {
	if _, err := host.Init(); err != nil {
		return err
	}
	bus, err := i2creg.Open(cfg.SensorBus)
	if err != nil {
		return fmt.Errorf("i2c bus %q: %w", cfg.SensorBus, err)
	}
	defer bus.Close()

	dev, err := bmxx80.NewI2C(bus, cfg.SensorAddress, &bmxx80.DefaultOpts)
	if err != nil {
		return err
	}
	defer dev.Halt()
	slog.Info("sensor ready", "device", dev.String(), "interval", cfg.SampleInterval)

	return station.Poll(ctx, dev, cfg.SampleInterval, slog.Default())
}

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg, version, appName)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := mainImpl(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run failed", "err", err)
		os.Exit(1)
	}
	slog.Info("shutting down")
}
