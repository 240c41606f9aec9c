// Package types defines the Store interface, the Todo entity with its
// Placement value, configuration, and the standard errors shared by the
// ladder backends.
package types
