package patchload

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xyproto/env/v2"
)

const (
	DefaultPayload  = "load"
	DefaultCapacity = 10000
)

// Config controls a Loader. It's fixed before the loader starts.
type Config struct {
	// Payload is the file holding the machine code.
	Payload string

	// Capacity is the size of the executable buffer. Payloads larger than
	// this are truncated.
	Capacity int

	Policy    Policy
	PatchAll  bool
	ShortRead ShortRead

	// Seal drops write permission from the buffer before the transfer.
	Seal bool

	// Verbosity is the klog level for cmd/patchload.
	Verbosity int
}

func DefaultConfig() Config {
	return Config{
		Payload:  DefaultPayload,
		Capacity: DefaultCapacity,
		Policy:   Eager,
	}
}

// ConfigFromEnv starts with DefaultConfig and overrides it with any
// PATCHLOAD_* environment variables that are set. A value that doesn't parse
// is an error, never a silent fallback to the default.
func ConfigFromEnv() (Config, error) {
	// env caches the environment on first use.
	env.Load()

	cfg := DefaultConfig()

	cfg.Payload = env.Str("PATCHLOAD_PAYLOAD", cfg.Payload)
	cfg.PatchAll = env.Bool("PATCHLOAD_PATCH_ALL")
	cfg.Seal = env.Bool("PATCHLOAD_SEAL")

	var err error
	cfg.Capacity, err = envInt("PATCHLOAD_CAPACITY", cfg.Capacity)
	if err != nil {
		return cfg, err
	}

	cfg.Verbosity, err = envInt("PATCHLOAD_VERBOSITY", cfg.Verbosity)
	if err != nil {
		return cfg, err
	}

	cfg.Policy, err = ParsePolicy(env.Str("PATCHLOAD_POLICY", cfg.Policy.String()))
	if err != nil {
		return cfg, err
	}

	cfg.ShortRead, err = ParseShortRead(env.Str("PATCHLOAD_SHORT_READ", cfg.ShortRead.String()))
	if err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

func envInt(name string, def int) (int, error) {
	s := strings.TrimSpace(env.Str(name))
	if s == "" {
		return def, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return def, fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidConfig, name, s)
	}
	return n, nil
}

func (c Config) Validate() error {
	if c.Payload == "" {
		return fmt.Errorf("%w: no payload file", ErrInvalidConfig)
	}
	if c.Capacity < len(Placeholder) {
		return fmt.Errorf("%w: capacity %d is smaller than the placeholder", ErrInvalidConfig, c.Capacity)
	}
	if c.Policy != Eager && c.Policy != Lazy {
		return fmt.Errorf("%w: unknown policy %v", ErrInvalidConfig, c.Policy)
	}
	if c.ShortRead < ShortReadError || c.ShortRead > ShortReadNop {
		return fmt.Errorf("%w: unknown short read mode %v", ErrInvalidConfig, c.ShortRead)
	}
	return nil
}
