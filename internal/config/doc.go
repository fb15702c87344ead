// Package config provides configuration structures and utilities for
// toolaudit. It defines the dataset locations, the audit rule parameters,
// and report generation preferences, populated from CLI flags and the
// optional .toolaudit YAML file.
package config
