// Package config provides the configuration system for lineview.
//
// Configuration is resolved in layers, each overriding the one before:
//
//	┌─────────────────────────────┐
//	│  4. Command Line Flags      │  ← Highest priority
//	├─────────────────────────────┤
//	│  3. Environment Variables   │  ← LINEVIEW_*
//	├─────────────────────────────┤
//	│  2. Config File             │  ← ~/.config/lineview/config.toml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// The file may be TOML or YAML, chosen by extension. A missing file is not
// an error. Flags are applied by the caller after ApplyEnv.
//
// # Sub-packages
//
//   - loader: Configuration file decoding (TOML, YAML) and env mapping
//   - watcher: File watching for live reload
//
// # Basic Usage
//
//	cfg, err := config.Load(config.DefaultPath())
//	if err != nil {
//	    return err
//	}
//	if err := cfg.ApplyEnv(); err != nil {
//	    return err
//	}
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
package config
