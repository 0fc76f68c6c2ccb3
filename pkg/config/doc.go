// Package config handles configuration management for wasmstash.
// It supports loading configuration from multiple sources including
// TOML and YAML files, environment variables, and command-line flags.
//
// Sources are layered with koanf, lowest priority first:
//
//  1. embedded defaults (embedded/defaults.toml)
//  2. the user file $XDG_CONFIG_HOME/wasmstash/config.toml
//  3. the project file (.wasmstash.toml, wasmstash.toml, wasmstash.yaml)
//     in the working directory, or the file passed with --config
//  4. WASMSTASH_* environment variables
//  5. flags set on the command line
package config
