// Package ladder carries module-level metadata shared by the CLI and
// any embedding programs.
package ladder

// Version is the current ladder release. Bump on every tagged release.
const Version = "0.1.0"
