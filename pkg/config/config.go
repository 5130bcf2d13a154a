// Package config loads index-manager configuration from a JSON file or from
// the process environment, producing an options.Options. Unlike
// options.Options's functional-option assembly at call sites, this package
// drives assembly from external input.
package config

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"github.com/iamNilotpal/ember/pkg/errors"
	"github.com/iamNilotpal/ember/pkg/options"
)

// fileConfig mirrors the JSON shape accepted by Load; fields left unset keep
// their default value from options.NewDefaultOptions.
type fileConfig struct {
	DataDir                   string `json:"dataDir"`
	SegmentSizeThresholdBytes uint64 `json:"segmentSizeThresholdBytes"`
	SearchMemoryBudgetBytes   uint64 `json:"searchMemoryBudgetBytes"`
	Fsync                     *bool  `json:"fsync"`
}

// LoadFile reads a JSON configuration document at path and overlays it onto
// the default options, returning an error if the document is malformed or
// the resulting configuration fails validation.
func LoadFile(path string) (options.Options, error) {
	opts := options.NewDefaultOptions()

	raw, err := os.ReadFile(path)
	if err != nil {
		return opts, errors.NewStorageError(err, errors.ErrorCodeIO, "failed to read configuration file").WithPath(path)
	}

	var fc fileConfig
	if err := json.Unmarshal(raw, &fc); err != nil {
		return opts, errors.NewJSONParseError(err)
	}

	if fc.DataDir != "" {
		opts.DataDir = fc.DataDir
	}
	if fc.SegmentSizeThresholdBytes != 0 {
		opts.SegmentSizeThresholdBytes = fc.SegmentSizeThresholdBytes
	}
	if fc.SearchMemoryBudgetBytes != 0 {
		opts.SearchMemoryBudgetBytes = fc.SearchMemoryBudgetBytes
	}
	if fc.Fsync != nil {
		opts.Fsync = *fc.Fsync
	}

	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

// Environment variable names recognized by LoadEnv.
const (
	EnvDataDir                   = "EMBER_DATA_DIR"
	EnvSegmentSizeThresholdBytes = "EMBER_SEGMENT_SIZE_THRESHOLD_BYTES"
	EnvSearchMemoryBudgetBytes   = "EMBER_SEARCH_MEMORY_BUDGET_BYTES"
	EnvFsync                     = "EMBER_FSYNC"
)

// LoadEnv overlays recognized EMBER_* environment variables onto the default
// options, returning an error if a value is present but cannot be parsed or
// if the resulting configuration fails validation.
func LoadEnv() (options.Options, error) {
	opts := options.NewDefaultOptions()

	if v := strings.TrimSpace(os.Getenv(EnvDataDir)); v != "" {
		opts.DataDir = v
	}

	if v := strings.TrimSpace(os.Getenv(EnvSegmentSizeThresholdBytes)); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return opts, errors.NewFieldFormatError(EnvSegmentSizeThresholdBytes, v, "unsigned integer byte count")
		}
		opts.SegmentSizeThresholdBytes = n
	}

	if v := strings.TrimSpace(os.Getenv(EnvSearchMemoryBudgetBytes)); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return opts, errors.NewFieldFormatError(EnvSearchMemoryBudgetBytes, v, "unsigned integer byte count")
		}
		opts.SearchMemoryBudgetBytes = n
	}

	if v := strings.TrimSpace(os.Getenv(EnvFsync)); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.NewFieldFormatError(EnvFsync, v, "boolean")
		}
		opts.Fsync = b
	}

	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}
