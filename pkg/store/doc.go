// Package store holds the in-process redirection mapping from dataset
// type to effective source path. Entries layer per scope: each write
// snapshots what it replaces and restores it when its scope closes.
package store
