// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

// Package config holds the type checker's ambient, process-wide options.
package config

// Config encapsulates the options which affect how the checker runs,
// independent of the model being checked.
type Config struct {
	// Verbose records whether debug logging was requested. No package
	// reads it; the check command reads its own --verbose flag.
	Verbose bool
	// Strict is not read by any package; diagnostics are the same
	// whatever its value.
	Strict bool
	// MaxTyVarDepth records a structural-depth ceiling (256 by default).
	// No package reads it: pkg/types uses its own fixed maxStructuralDepth
	// of the same value and, past it, returns a conservative answer
	// without a diagnostic.
	MaxTyVarDepth int
}

// Default returns the checker's default configuration.
func Default() Config {
	return Config{MaxTyVarDepth: 256}
}
