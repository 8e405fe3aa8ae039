// Alpenglow - Solar and Lunar Peak Alignment Calendar
// Copyright 2026 Alpenglow Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alpenglow-dev/alpenglow

// Package logging provides centralized zerolog-based logging for Alpenglow.
//
// All components log through the package-level helpers or through child
// loggers created with With():
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Msg("server starting")
//
//	searchLogger := logging.With().Str("component", "search").Logger()
//
// Always terminate log chains with .Msg() or .Send(); an unterminated chain
// is silently dropped. Prefer structured fields over Msgf formatting.
//
// The slog adapter in slog_adapter.go bridges libraries that require an
// *slog.Logger (suture's sutureslog hook) onto the same backend.
package logging
