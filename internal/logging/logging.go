// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package logging builds the programs' slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/GermanBionicSystems/barolcd/internal/config"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// New returns a colored text logger on stdout in dev and a JSON logger in
// prod.
func New(cfg config.Config, version, appName string) *slog.Logger {
	if cfg.AppEnv == "dev" {
		f := os.Stdout
		color := isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		return NewWriter(cfg, colorable.NewColorable(f), !color, version, appName)
	}
	return NewWriter(cfg, os.Stdout, true, version, appName)
}

// NewWriter is New with an explicit destination.
func NewWriter(cfg config.Config, w io.Writer, noColor bool, version, appName string) *slog.Logger {
	if cfg.AppEnv == "dev" {
		h := tint.NewHandler(w, &tint.Options{
			Level:      cfg.LogLevel,
			AddSource:  true,
			TimeFormat: time.Kitchen,
			NoColor:    noColor,
		})
		return slog.New(h).With("app", appName)
	}

	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	})
	return slog.New(h).With(
		"app", appName,
		"version", version,
		"env", cfg.AppEnv,
	)
}
