// Package config handles configuration management for dataroot.
// It merges built-in defaults, a dataroot.toml or dataroot.yaml file,
// and DATAROOT_* environment variables, in that order.
package config
