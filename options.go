package chunkstore

import "go.uber.org/zap"

// Options configure a store.
type Options struct {
	Codec  Codec
	Logger *zap.Logger
}

// Option is a functional option for configuring New.
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		Codec:  CBORCodec{},
		Logger: zap.NewNop(),
	}
}

// WithCodec sets the key/value codec. The default is CBORCodec.
func WithCodec(c Codec) Option {
	return func(o *Options) { o.Codec = c }
}

// WithLogger sets the logger for lifecycle events and background write
// failures. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) { o.Logger = l }
}
