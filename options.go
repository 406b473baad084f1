// Copyright 2015 Aleksandr Demakin. All rights reserved.

package shared

import (
	"github.com/avd/go-shared-resource/codec"
	"github.com/avd/go-shared-resource/internal/telemetry"
	"github.com/rs/zerolog"
)

// config holds the tunables Open accepts. There is no external
// configuration surface (no CLI, no env file) for this library per
// spec.md §6, so this is rendered as the functional-options pattern
// rather than a parsed config struct -- see DESIGN.md.
type config[T any] struct {
	codec  codec.Codec[T]
	logger zerolog.Logger
}

func defaultConfig[T any]() config[T] {
	return config[T]{
		codec:  codec.NewGobCodec[T](),
		logger: telemetry.NewLogger("shared.resource"),
	}
}

// Option configures Open.
type Option[T any] func(*config[T])

// WithCodec overrides the default gob codec.
func WithCodec[T any](c codec.Codec[T]) Option[T] {
	return func(cfg *config[T]) { cfg.codec = c }
}

// WithLogger overrides the default logger.
func WithLogger[T any](logger zerolog.Logger) Option[T] {
	return func(cfg *config[T]) { cfg.logger = logger }
}
