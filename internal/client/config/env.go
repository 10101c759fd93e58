package config

import "github.com/kelseyhightower/envconfig"

// EnvPrefix is prepended to every envconfig key, e.g. AKASHI_RPC_URL.
const EnvPrefix = "AKASHI"

// parseEnv overlays Config with AKASHI_* variables. Unset variables keep
// the current value. Panics on values that fail to parse.
func parseEnv(cfg *Config) {
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		panic(err)
	}
}
