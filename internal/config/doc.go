// Package config provides centralized configuration management for s38extract.
// It handles loading configuration from multiple sources, validation, and provides
// a type-safe API for accessing configuration values throughout the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. YAML configuration file (s38.yaml)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern S38_<SECTION>_<KEY>:
//
//	S38_DECODE_ENCODING=cp950
//	S38_DECODE_MIN_PRICE=0.01
//	S38_DECODE_ACCEPTED_ID_RANGES=1000-9999
//	S38_OUTPUT_FORMAT=sqlite
//	S38_LOGGING_LEVEL=debug
//
// # Validation
//
// Struct constraints are declared with go-playground/validator tags and
// checked at load time, for example the maximum closing price must exceed the
// minimum and the output format must be one of csv, xlsx or sqlite.
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Testing
//
// Use config.Default() to obtain a valid configuration that needs no
// environment variables or files.
package config
