// Package config loads flashdeck settings from defaults, an optional YAML
// file and FLASHDECK_ environment variables, then validates them before
// any component is built.
package config
