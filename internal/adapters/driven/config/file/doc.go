// Package file provides TOML-based configuration for channelsync.
//
// Configuration lives in ~/.channelsync/config.toml by default. The
// serve command additionally watches the file and reloads on change,
// so scheduler intervals and platform tuning can be adjusted without
// a restart.
package file
