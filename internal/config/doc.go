// Package config provides configuration structures and utilities for wordfetch.
// It defines crawl limits, word ranking and mutation settings, report output
// preferences, and the optional .wordfetch YAML file with per-host overrides.
package config
