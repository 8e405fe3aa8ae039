// Alpenglow - Solar and Lunar Peak Alignment Calendar
// Copyright 2026 Alpenglow Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/alpenglow-dev/alpenglow

/*
Package supervisor runs Alpenglow's long-lived services under suture v4.

The tree has two layers:

	root ("alpenglow")
	├── workers-layer
	│   ├── work queue
	│   └── scheduler
	└── api-layer
	    └── HTTP server

Crashed services restart with exponential backoff; failures in one layer do
not affect the other. Supervisor events are logged through the sutureslog
adapter.
*/
package supervisor
