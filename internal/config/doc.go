// Package config loads worktrunk's TOML configuration.
//
// Load order: built-in defaults, user TOML
// (~/.config/worktrunk/config.toml or $WORKTRUNK_CONFIG_PATH), WORKTRUNK_
// environment variable overrides, then project TOML
// (<repo>/.config/wt.toml). Scalars and overridable sections from the
// project file replace the global value; hooks merge with append
// semantics (global hooks run first, then project hooks).
//
// Unknown keys are kept in a list, Config.Unknown (rather than rejected), and
// surfaced as warnings by `wt config show`, with a "belongs in X" hint
// derived from a JSON-schema reflection of Config ([SchemaKeyHint]).
package config
