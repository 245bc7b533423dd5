// SPDX-License-Identifier: MIT

// Package config loads the daemon configuration with the precedence
// ENV > file > defaults. File parsing is strict: unknown keys, extra
// documents and unsupported extensions are errors. A ConfigHolder adds
// hot reloading with validate-before-swap semantics.
package config
