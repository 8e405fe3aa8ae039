// Alpenglow - Solar and Lunar Peak Alignment Calendar
// Copyright 2026 Alpenglow Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alpenglow-dev/alpenglow

// Package geodesy computes bearing, distance, and apparent elevation angle
// between an observation point and a landmark summit on a spherical Earth,
// with curvature and standard refraction correction.
//
// All functions are pure and total over valid coordinate pairs; malformed
// coordinates are a precondition violation handled before this package.
package geodesy
