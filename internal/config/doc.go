// Alpenglow - Solar and Lunar Peak Alignment Calendar
// Copyright 2026 Alpenglow Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alpenglow-dev/alpenglow

// Package config loads and validates the application configuration.
//
// Configuration is layered with koanf: built-in defaults first, then an
// optional YAML file, then ALPENGLOW_-prefixed environment variables. Every
// setting is reachable from all three layers; the environment always wins.
//
// Validation happens once at load time. A Config that reaches the rest of
// the application is structurally valid: the timezone resolves, the port is
// in range, and every scheduled rule passed its own Validate.
package config
