// Package config provides environment-variable helpers for go-eyemouse commands.
// Every tunable reads EYEMOUSE_<NAME> and falls back to the compiled-in default.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/teslashibe/go-eyemouse/internal/log"
)

// Prefix is prepended to every variable name.
const Prefix = "EYEMOUSE_"

// Default network endpoints.
const (
	DefaultDashboardPort = "8090"
	DefaultAgentPort     = "8091"
)

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(Prefix + name)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// String returns EYEMOUSE_<name> or def if unset.
func String(name, def string) string {
	if v, ok := lookup(name); ok {
		return v
	}
	return def
}

// Int returns EYEMOUSE_<name> parsed as an int, or def if unset or invalid.
func Int(name string, def int) int {
	v, ok := lookup(name)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn("ignoring invalid integer", "var", Prefix+name, "value", v)
		return def
	}
	return n
}

// Float returns EYEMOUSE_<name> parsed as a float64, or def if unset or invalid.
func Float(name string, def float64) float64 {
	v, ok := lookup(name)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Warn("ignoring invalid number", "var", Prefix+name, "value", v)
		return def
	}
	return f
}

// Bool returns EYEMOUSE_<name> parsed as a bool, or def if unset or invalid.
func Bool(name string, def bool) bool {
	v, ok := lookup(name)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Warn("ignoring invalid boolean", "var", Prefix+name, "value", v)
		return def
	}
	return b
}

// Duration returns EYEMOUSE_<name> parsed with time.ParseDuration, or def if unset or invalid.
func Duration(name string, def time.Duration) time.Duration {
	v, ok := lookup(name)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Warn("ignoring invalid duration", "var", Prefix+name, "value", v)
		return def
	}
	return d
}
