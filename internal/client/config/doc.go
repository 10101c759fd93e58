// Package config loads runtime configuration for the Akashi CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults), pointing at testnet.
//  2. Optional JSON or YAML file selected via -c or -config.
//  3. Environment variables with the AKASHI_ prefix (envconfig).
//  4. Short command-line flags (see parseFlags).
//
// Durations accept strings like "30s" or integer nanoseconds in files, and
// Go duration strings in the environment:
//
//	storage_backend: walrus
//	rpc_url: https://fullnode.testnet.sui.io:443
//	request_timeout: 30s
//	online_check_interval: 5s
//
//	AKASHI_REQUEST_TIMEOUT=10s AKASHI_JOURNAL_DRIVER=postgres
package config
