// =============================================================================
// config.go - Environment Configuration
// =============================================================================
//
// Every option that takes a value, and the passthrough/verbose switches, can
// be preset through STDIN2SHM_* environment variables. This is convenient
// when stdin2shm is started by a service manager next to the Modbus server.
// Command-line flags always win over the environment.
//
// =============================================================================

package main

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// envPrefix is prepended to every variable name in envConfig.
const envPrefix = "STDIN2SHM_"

// GO CONCEPT: Struct Tags
// -----------------------
// The backquoted strings after each field are struct tags. They are ignored
// by the compiler and read at runtime through reflection; caarlos0/env uses
// the "env" key for the variable name and "envDefault" for the fallback.
//
// Compare with Swift: there are no tags; Codable uses CodingKeys enums to
// map names.
//
// Compare with Python: pydantic-settings declares the same thing with
// class attributes and Field(alias=...).

// envConfig mirrors the configurable part of arguments.
type envConfig struct {
	NamePrefix       string        `env:"NAME_PREFIX" envDefault:"modbus_"`
	AddressBase      int           `env:"ADDRESS_BASE" envDefault:"0"`
	ValueBase        int           `env:"VALUE_BASE" envDefault:"0"`
	Semaphore        string        `env:"SEMAPHORE"`
	SemaphoreTimeout time.Duration `env:"SEMAPHORE_TIMEOUT" envDefault:"100ms"`
	Wait             time.Duration `env:"WAIT" envDefault:"0s"`
	PID              int           `env:"PID"`
	Passthrough      bool          `env:"PASSTHROUGH"`
	Verbose          bool          `env:"VERBOSE"`
}

// GO CONCEPT: Wrapping Errors with %w
// -----------------------------------
// fmt.Errorf with the %w verb adds context and keeps the original error
// reachable through errors.Is and errors.As.
//
// Compare with Python: "raise ConfigError(...) from err" chains the
// cause in __cause__.

// loadConfig returns the defaults for parseArguments, read from the
// environment.
func loadConfig() (arguments, error) {
	var cfg envConfig
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix}); err != nil {
		return arguments{}, fmt.Errorf("parse env: %w", err)
	}

	args := defaultArguments()
	args.namePrefix = cfg.NamePrefix
	args.addressBase = cfg.AddressBase
	args.valueBase = cfg.ValueBase
	args.semaphore = cfg.Semaphore
	args.semaphoreTimeout = cfg.SemaphoreTimeout
	args.wait = cfg.Wait
	args.pid = cfg.PID
	args.passthrough = cfg.Passthrough
	args.verbose = cfg.Verbose
	return args, nil
}
