// Package config loads and validates pipeline definition files.
package config
