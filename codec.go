package chunkstore

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
)

// Codec turns keys and values into chunk bytes and back. The store never
// inspects encoded bytes beyond their length and a digest; callers that
// want full control of the wire format plug in their own Codec.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// CBORCodec is the default codec. CBOR frames byte strings with their
// length, so the accounted size of a chunk is a few bytes larger than its
// raw payload.
type CBORCodec struct{}

func (CBORCodec) Marshal(v any) ([]byte, error) { return cbor.Marshal(v) }

func (CBORCodec) Unmarshal(data []byte, v any) error { return cbor.Unmarshal(data, v) }

// ZstdCodec wraps another codec and stores its output zstd-compressed.
// Quota accounting stays exact because the store credits the compressed
// length, which is what lands on disk.
type ZstdCodec struct {
	inner   Codec
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewZstdCodec returns a codec that compresses inner's encoding.
func NewZstdCodec(inner Codec) (*ZstdCodec, error) {
	encoder, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedDefault),
		zstd.WithEncoderConcurrency(1),
	)
	if err != nil {
		return nil, err
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}

	return &ZstdCodec{inner: inner, encoder: encoder, decoder: decoder}, nil
}

func (c *ZstdCodec) Marshal(v any) ([]byte, error) {
	data, err := c.inner.Marshal(v)
	if err != nil {
		return nil, err
	}
	return c.encoder.EncodeAll(data, make([]byte, 0, len(data))), nil
}

func (c *ZstdCodec) Unmarshal(data []byte, v any) error {
	raw, err := c.decoder.DecodeAll(data, nil)
	if err != nil {
		return fmt.Errorf("zstd decode: %w", err)
	}
	return c.inner.Unmarshal(raw, v)
}

// Close releases the compressor state. The wrapped codec is unaffected.
func (c *ZstdCodec) Close() error {
	c.encoder.Close()
	c.decoder.Close()
	return nil
}
