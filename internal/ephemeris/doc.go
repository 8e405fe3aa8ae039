// Alpenglow - Solar and Lunar Peak Alignment Calendar
// Copyright 2026 Alpenglow Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alpenglow-dev/alpenglow

// Package ephemeris defines the celestial-position port consumed by the
// alignment search, plus a built-in low-precision provider.
//
// The built-in provider uses the NOAA solar position algorithm and a
// truncated Meeus lunar theory. Accuracy is on the order of arcminutes for
// the sun and a tenth of a degree for the moon, which is sufficient for
// alignment search tolerances; deployments that need better can implement
// Provider against a full ephemeris.
package ephemeris
