// Package config loads, validates and publishes the terminal window
// configuration.
//
// Configuration is read from a single TOML file over built-in defaults.
// A Store publishes immutable snapshots tagged with a generation number;
// windows hold a Handle and compare generations to notice reloads. A
// Watcher reloads the store when the file changes on disk.
//
// Windows may layer per-window overrides, a JSON object merged over the
// published snapshot with ApplyOverrides.
package config
