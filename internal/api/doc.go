// Alpenglow - Solar and Lunar Peak Alignment Calendar
// Copyright 2026 Alpenglow Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alpenglow-dev/alpenglow

/*
Package api exposes the HTTP surface: landmark CRUD, cached event queries,
regeneration triggers, and queue inspection.

The API is deliberately thin. Regeneration endpoints only enqueue work and
answer 202; the queue and generator do the rest. Every response uses the
common envelope with a request ID for tracing, and all list endpoints are
bounded by the configured page sizes.
*/
package api
