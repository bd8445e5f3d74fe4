// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package gpt

import "go.uber.org/zap"

// Options is a set of options for building GPT data.
type Options struct {
	// Logger receives debug information about the computed layout.
	Logger *zap.Logger

	// MarkPMBRBootable sets the boot indicator of the protective MBR record.
	MarkPMBRBootable bool
}

// Option is a function that sets some option.
type Option func(*Options)

// WithLogger is an option to set the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithMarkPMBRBootable is an option to mark the protective MBR bootable.
func WithMarkPMBRBootable() Option {
	return func(o *Options) {
		o.MarkPMBRBootable = true
	}
}

func applyOptions(opts ...Option) Options {
	options := Options{
		Logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(&options)
	}

	return options
}
