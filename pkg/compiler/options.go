package compiler

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const defaultTracerName = "vbind"

// Interpolation selects how text placeholders are bound.
type Interpolation uint8

const (
	// InterpolateSegments splits a text node into static and reactive
	// siblings; each placeholder updates only its own node.
	InterpolateSegments Interpolation = iota

	// InterpolateWholeNode overwrites the whole text node with the value of
	// whichever placeholder reacted last.
	InterpolateWholeNode
)

// String returns the string representation of the Interpolation.
func (m Interpolation) String() string {
	switch m {
	case InterpolateSegments:
		return "segments"
	case InterpolateWholeNode:
		return "whole-node"
	default:
		return "unknown"
	}
}

// ParseInterpolation maps a config string to an Interpolation.
func ParseInterpolation(s string) (Interpolation, bool) {
	switch s {
	case "", "segments":
		return InterpolateSegments, true
	case "whole-node", "whole":
		return InterpolateWholeNode, true
	default:
		return InterpolateSegments, false
	}
}

// Options configures a Compiler.
type Options struct {
	// Prefix marks directive attributes. Default "v-".
	Prefix string

	// Interpolation selects the text binding mode.
	Interpolation Interpolation

	// HydrationIDs enables data-vb attributes on bound elements.
	// Default true.
	HydrationIDs bool

	// Tracer is used for the compile span. Defaults to the global
	// provider's "vbind" tracer.
	Tracer trace.Tracer
}

// Option configures a Compiler.
type Option func(*Options)

// WithPrefix sets the directive prefix.
func WithPrefix(prefix string) Option {
	return func(o *Options) {
		o.Prefix = prefix
	}
}

// WithInterpolation sets the text binding mode.
func WithInterpolation(m Interpolation) Option {
	return func(o *Options) {
		o.Interpolation = m
	}
}

// WithHydrationIDs enables or disables hydration IDs.
func WithHydrationIDs(enabled bool) Option {
	return func(o *Options) {
		o.HydrationIDs = enabled
	}
}

// WithTracer sets the tracer.
func WithTracer(t trace.Tracer) Option {
	return func(o *Options) {
		o.Tracer = t
	}
}

func defaultOptions() Options {
	return Options{
		Prefix:       "v-",
		HydrationIDs: true,
	}
}

func (o *Options) resolve() {
	if o.Prefix == "" {
		o.Prefix = "v-"
	}
	if o.Tracer == nil {
		o.Tracer = otel.Tracer(defaultTracerName)
	}
}
