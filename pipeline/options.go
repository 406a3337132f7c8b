package pipeline

import (
	"github.com/turbot/songplay-etl/artifact_source"
	"github.com/turbot/songplay-etl/dataset"
	"github.com/turbot/songplay-etl/destination"
	"github.com/turbot/songplay-etl/id_generator"
	"github.com/turbot/songplay-etl/observable"
)

type Phase string

const (
	// PhaseSongs reads the catalog and writes the songs and artists tables
	PhaseSongs Phase = "songs"
	// PhaseLogs reads the activity log and writes the users, time and songplays tables
	PhaseLogs Phase = "logs"
)

type Option func(*Pipeline)

// WithSource sets the input source, overriding the one built from input_root
func WithSource(source artifact_source.Source) Option {
	return func(p *Pipeline) {
		p.source = source
	}
}

// WithDestination sets the output destination, overriding the one built from output_root
func WithDestination(dest destination.Destination) Option {
	return func(p *Pipeline) {
		p.dest = dest
	}
}

func WithIdGenerator(gen id_generator.Generator) Option {
	return func(p *Pipeline) {
		p.idGenerator = gen
	}
}

func WithExecutor(executor dataset.Executor) Option {
	return func(p *Pipeline) {
		p.executor = executor
	}
}

// WithOutputFormat overrides the output_format of the config
func WithOutputFormat(format string) Option {
	return func(p *Pipeline) {
		p.outputFormat = format
	}
}

func WithObservers(observers ...observable.Observer) Option {
	return func(p *Pipeline) {
		p.observers = append(p.observers, observers...)
	}
}

// WithPhases restricts [Pipeline.Run] to the given phases
func WithPhases(phases ...Phase) Option {
	return func(p *Pipeline) {
		p.phases = phases
	}
}
