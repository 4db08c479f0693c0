// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// lcdmonitor averages a BMP280 over SAMPLE_COUNT samples, keeps the
// enclosure warm with an active-low heater, shows the result on a character
// LCD behind a PCF8574 backpack and writes {"celsius": X.XX} lines to a
// serial port.
//
// Set LCD_SIM=1 to render the display on the terminal instead.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/GermanBionicSystems/barolcd/hd44780"
	"github.com/GermanBionicSystems/barolcd/internal/config"
	"github.com/GermanBionicSystems/barolcd/internal/logging"
	"github.com/GermanBionicSystems/barolcd/lcdsim"
	"github.com/GermanBionicSystems/barolcd/station"
	"github.com/GermanBionicSystems/barolcd/telemetry"
	"github.com/mattn/go-colorable"
	"go.bug.st/serial"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/bmxx80"
	"periph.io/x/host/v3"
)

var version = "dev"
var appName = "lcdmonitor"

// simOpts configures the emulated display. The logger owns stdout, so the
// display is redrawn on stderr.
func simOpts(cfg config.Config) *lcdsim.Opts {
	return &lcdsim.Opts{
		Rows: cfg.LCDRows,
		Cols: cfg.LCDCols,
		Addr: cfg.LCDAddress,
		W:    colorable.NewColorableStderr(),
	}
}

func mainImpl(ctx context.Context, cfg config.Config) error {
	if _, err := host.Init(); err != nil {
		return err
	}

	sensorBus, err := i2creg.Open(cfg.SensorBus)
	if err != nil {
		return fmt.Errorf("i2c bus %q: %w", cfg.SensorBus, err)
	}
	defer sensorBus.Close()

	sensor, err := bmxx80.NewI2C(sensorBus, cfg.SensorAddress, &bmxx80.DefaultOpts)
	if err != nil {
		return err
	}
	defer sensor.Halt()

	var lcdBus i2c.Bus
	switch {
	case cfg.LCDSim:
		sim := lcdsim.New(simOpts(cfg))
		defer sim.Halt()
		lcdBus = sim
	case cfg.LCDBus == cfg.SensorBus:
		lcdBus = sensorBus
	default:
		b, err := i2creg.Open(cfg.LCDBus)
		if err != nil {
			return fmt.Errorf("i2c bus %q: %w", cfg.LCDBus, err)
		}
		defer b.Close()
		lcdBus = b
	}
	lcd, err := hd44780.NewPCF8574Display(lcdBus, cfg.LCDAddress, cfg.LCDRows, cfg.LCDCols)
	if err != nil {
		return err
	}
	defer lcd.Halt()

	var heater gpio.PinOut
	if cfg.HeaterPin != "" {
		p := gpioreg.ByName(cfg.HeaterPin)
		if p == nil {
			return fmt.Errorf("heater pin %q not found", cfg.HeaterPin)
		}
		heater = p
	}

	port, err := serial.Open(cfg.SerialPort, &serial.Mode{BaudRate: cfg.SerialBaud})
	if err != nil {
		return fmt.Errorf("serial port %s: %w", cfg.SerialPort, err)
	}
	defer port.Close()
	sinks := []telemetry.Sink{telemetry.NewLineWriter(port)}

	if cfg.MQTTBroker != "" {
		pub := telemetry.NewMQTTPublisher(telemetry.MQTTOpts{
			Broker:    cfg.MQTTBroker,
			Port:      cfg.MQTTPort,
			ClientID:  cfg.MQTTClientID,
			StationID: cfg.StationID,
		}, slog.Default())
		if err := pub.Connect(ctx); err != nil {
			return err
		}
		defer pub.Close()
		sinks = append(sinks, pub)
	}

	slog.Info("monitor ready",
		"sensor", sensor.String(),
		"display", lcd.String(),
		"heater", cfg.HeaterPin,
		"serial", cfg.SerialPort,
		"samples", cfg.SampleCount,
		"interval", cfg.SampleInterval,
	)

	m := &station.Monitor{
		Sampler: &station.Sampler{
			Sensor:   sensor,
			Count:    cfg.SampleCount,
			Interval: cfg.SampleInterval,
		},
		Thermostat: &station.Thermostat{Heater: heater, Threshold: cfg.HeaterThreshold},
		Display:    lcd,
		Sinks:      sinks,
		Logger:     slog.Default(),
	}
	return m.Run(ctx)
}

func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg, version, appName)
	slog.SetDefault(logger)

	slog.Info("starting",
		"app", appName,
		"version", version,
		"env", cfg.AppEnv,
		"log_level", cfg.LogLevel.String(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := mainImpl(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run failed", "err", err)
		os.Exit(1)
	}
	slog.Info("shutting down")
}
