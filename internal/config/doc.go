// Package config provides the configuration of domaincrawl: built-in defaults,
// the optional YAML configuration file and validation of the merged result.
package config
