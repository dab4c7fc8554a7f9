// Package catalog is the registry of dataset types: each name maps to
// the default directory its data is read from. The catalog is loaded
// from configuration or built programmatically, and resolves
// per-dataset DATAROOT_SRC_<NAME> environment overrides.
package catalog
