// Package config loads and validates auditflow configuration.
//
// Configuration is TOML, resolved from an explicit --config path,
// ~/.config/auditflow/config.toml, or an auditflow.toml in the working
// directory, merged over built-in defaults. All path fields are expanded
// (~, relative) and normalized before validation.
package config
