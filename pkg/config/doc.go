// Package config handles configuration management for modlink.
// Configuration is layered with koanf: embedded defaults, then the user's
// config.toml, then MODLINK_ environment variables. The merged result is
// decoded into Config with mapstructure.
package config
