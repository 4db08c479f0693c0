// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package config reads the programs' settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"periph.io/x/conn/v3/physic"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level

	// SensorBus is the I²C bus name; empty selects the default bus.
	SensorBus     string
	SensorAddress uint16

	LCDBus     string
	LCDAddress uint16
	LCDRows    int
	LCDCols    int
	// LCDSim renders the display on the terminal instead of using the bus.
	LCDSim bool

	SerialPort string
	SerialBaud int

	// HeaterPin is empty when there is no heater.
	HeaterPin       string
	HeaterThreshold physic.Temperature

	SampleCount    int
	SampleInterval time.Duration

	// MQTTBroker is empty when MQTT publishing is disabled.
	MQTTBroker   string
	MQTTPort     int
	MQTTClientID string
	StationID    string
}

func LoadFromEnv() (Config, error) {
	appEnv := env("APP_ENV", "dev")
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	level, err := parseLogLevel(env("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}

	sensorAddress, err := parseAddress("SENSOR_ADDRESS", "0x76")
	if err != nil {
		return Config{}, err
	}
	lcdAddress, err := parseAddress("LCD_ADDRESS", "0x27")
	if err != nil {
		return Config{}, err
	}

	lcdRows, err := parsePositive("LCD_ROWS", "2")
	if err != nil {
		return Config{}, err
	}
	if lcdRows > 4 {
		return Config{}, fmt.Errorf("LCD_ROWS must be at most 4, got %d", lcdRows)
	}
	lcdCols, err := parsePositive("LCD_COLS", "16")
	if err != nil {
		return Config{}, err
	}
	if lcdCols > 40 || lcdRows*lcdCols > 80 {
		return Config{}, fmt.Errorf("LCD_ROWS x LCD_COLS %dx%d exceeds the controller's 2x40 memory", lcdRows, lcdCols)
	}

	lcdSimStr := env("LCD_SIM", "false")
	lcdSim, err := strconv.ParseBool(lcdSimStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid LCD_SIM %q: %w", lcdSimStr, err)
	}

	serialBaud, err := parsePositive("SERIAL_BAUD", "115200")
	if err != nil {
		return Config{}, err
	}

	// HEATER_PIN set to an empty string disables the heater, so it is looked
	// up rather than defaulted.
	heaterPin := "GPIO12"
	if v, ok := os.LookupEnv("HEATER_PIN"); ok {
		heaterPin = strings.TrimSpace(v)
	}

	thresholdStr := env("HEATER_THRESHOLD_C", "23.5")
	thresholdC, err := strconv.ParseFloat(thresholdStr, 64)
	if err != nil {
		return Config{}, fmt.Errorf("invalid HEATER_THRESHOLD_C %q: %w", thresholdStr, err)
	}

	sampleCount, err := parsePositive("SAMPLE_COUNT", "60")
	if err != nil {
		return Config{}, err
	}

	sampleIntervalStr := env("SAMPLE_INTERVAL", "1s")
	sampleInterval, err := time.ParseDuration(sampleIntervalStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid SAMPLE_INTERVAL %q: %w", sampleIntervalStr, err)
	}
	if sampleInterval <= 0 {
		return Config{}, fmt.Errorf("SAMPLE_INTERVAL must be positive, got %v", sampleInterval)
	}

	mqttPort, err := parsePositive("MQTT_PORT", "1883")
	if err != nil {
		return Config{}, err
	}

	return Config{
		AppEnv:          appEnv,
		LogLevel:        level,
		SensorBus:       env("SENSOR_I2C_BUS", ""),
		SensorAddress:   sensorAddress,
		LCDBus:          env("LCD_I2C_BUS", ""),
		LCDAddress:      lcdAddress,
		LCDRows:         lcdRows,
		LCDCols:         lcdCols,
		LCDSim:          lcdSim,
		SerialPort:      env("SERIAL_PORT", "/dev/ttyS0"),
		SerialBaud:      serialBaud,
		HeaterPin:       heaterPin,
		HeaterThreshold: physic.ZeroCelsius + physic.Temperature(thresholdC*float64(physic.Kelvin)),
		SampleCount:     sampleCount,
		SampleInterval:  sampleInterval,
		MQTTBroker:      env("MQTT_BROKER", ""),
		MQTTPort:        mqttPort,
		MQTTClientID:    env("MQTT_CLIENT_ID", "barolcd"),
		StationID:       env("STATION_ID", "home"),
	}, nil
}

// env returns the trimmed value of key, or def when it is unset or blank.
func env(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func parseAddress(key, def string) (uint16, error) {
	s := env(key, def)
	v, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	if v > 0x7f {
		return 0, fmt.Errorf("%s must be a 7-bit address, got %#x", key, v)
	}
	return uint16(v), nil
}

func parsePositive(key, def string) (int, error) {
	s := env(key, def)
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", key, v)
	}
	return v, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
