package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/pierrec/lz4/v4"
	"github.com/srg/astrod/internal/fault"
	"github.com/srg/astrod/internal/record"
)

const (
	// SizePrefixLen is the length of the little-endian uncompressed size header.
	SizePrefixLen = 8

	// MaxUncompressedSize bounds the allocation a size prefix may request.
	MaxUncompressedSize = 1 << 20
)

// encMode is the CBOR encoder mode for envelopes.
var encMode cbor.EncMode

// decMode is the CBOR decoder mode for envelopes.
var decMode cbor.DecMode

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsEmpty,
	}
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyEnforcedAPF,
		IndefLength: cbor.IndefLengthForbidden,
	}
	decMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR decoder mode: %v", err))
	}
}

// envelope is the serialized form of record.Envelope: [kind, payload].
type envelope struct {
	_       struct{} `cbor:",toarray"`
	Kind    record.Kind
	Payload cbor.RawMessage
}

// Encode serializes env and compresses it behind an 8-byte size prefix.
func Encode(env record.Envelope) ([]byte, error) {
	if err := env.Validate(); err != nil {
		return nil, fmt.Errorf("invalid envelope: %w", err)
	}

	var payload []byte
	var err error
	switch env.Kind {
	case record.KindConfig:
		payload, err = encMode.Marshal(env.Config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to serialize %s record: %w", env.Kind, err)
	}

	raw, err := encMode.Marshal(envelope{Kind: env.Kind, Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize envelope: %w", err)
	}

	return Compress(raw)
}

// EncodeConfig is shorthand for Encode(record.Wrap(r)).
func EncodeConfig(r *record.ConfigRecord) ([]byte, error) {
	return Encode(record.Wrap(r))
}

// Decode reverses Encode. Any failure is a fault.Decode error and no envelope is returned.
func Decode(data []byte) (record.Envelope, error) {
	raw, err := Decompress(data)
	if err != nil {
		return record.Envelope{}, err
	}

	var env envelope
	if err := decMode.Unmarshal(raw, &env); err != nil {
		return record.Envelope{}, fault.Wrap(fault.Decode, "deserialize envelope", err)
	}

	switch env.Kind {
	case record.KindConfig:
		var cfg record.ConfigRecord
		if err := decMode.Unmarshal(env.Payload, &cfg); err != nil {
			return record.Envelope{}, fault.Wrap(fault.Decode, "deserialize config record", err)
		}
		out := record.Wrap(&cfg)
		if err := out.Validate(); err != nil {
			return record.Envelope{}, fault.Wrap(fault.Decode, "validate envelope", err)
		}
		return out, nil
	default:
		return record.Envelope{}, fault.New(fault.Decode, "deserialize envelope", "unknown record kind %d", uint8(env.Kind))
	}
}

// DecodeConfig decodes data and returns the carried ConfigRecord.
func DecodeConfig(data []byte) (*record.ConfigRecord, error) {
	env, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return env.Config, nil
}

// MaxEncodedLen is the longest output Encode can produce: the size prefix plus
// the worst-case LZ4 block for MaxUncompressedSize bytes.
func MaxEncodedLen() int {
	return SizePrefixLen + lz4.CompressBlockBound(MaxUncompressedSize)
}

// Compress writes len(src) as a little-endian uint64 followed by the LZ4 block of src.
func Compress(src []byte) ([]byte, error) {
	out := make([]byte, SizePrefixLen+lz4.CompressBlockBound(len(src)))
	binary.LittleEndian.PutUint64(out, uint64(len(src)))

	n, err := lz4.CompressBlock(src, out[SizePrefixLen:], nil)
	if err != nil {
		return nil, fmt.Errorf("failed to compress: %w", err)
	}
	if n == 0 && len(src) > 0 {
		return nil, fmt.Errorf("failed to compress: empty block for %d bytes", len(src))
	}
	return out[:SizePrefixLen+n], nil
}

// Decompress reverses Compress.
func Decompress(data []byte) ([]byte, error) {
	if len(data) <= SizePrefixLen {
		return nil, fault.New(fault.Decode, "decompress", "input too short: %d bytes", len(data))
	}

	size := binary.LittleEndian.Uint64(data[:SizePrefixLen])
	if size == 0 || size > MaxUncompressedSize {
		return nil, fault.New(fault.Decode, "decompress", "invalid size prefix %d", size)
	}

	dst := make([]byte, size)
	n, err := lz4.UncompressBlock(data[SizePrefixLen:], dst)
	if err != nil {
		return nil, fault.Wrap(fault.Decode, "decompress", err)
	}
	if uint64(n) != size {
		return nil, fault.New(fault.Decode, "decompress", "size prefix says %d bytes, block holds %d", size, n)
	}
	return dst, nil
}
