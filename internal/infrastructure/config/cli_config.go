// Copyright the Web Content Share contributors.
// SPDX-License-Identifier: MIT

package config

// CLIConfig holds parsed command line flags and configuration overrides
type CLIConfig struct {
	Port         string
	Debug        bool
	Bind         string
	NoCleanup    bool
	SimpleHealth bool
	ConfigCheck  bool
	Help         bool
}
