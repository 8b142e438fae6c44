package cache

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Entries are stored as zstd-compressed JSON. The encoder and decoder are
// shared; EncodeAll and DecodeAll are safe for concurrent use.
var (
	codecOnce sync.Once
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder
	codecErr  error
)

func initCodec() error {
	codecOnce.Do(func() {
		encoder, codecErr = zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedFastest),
			zstd.WithEncoderConcurrency(1),
		)
		if codecErr != nil {
			return
		}
		decoder, codecErr = zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	})
	return codecErr
}

// errCorruptEntry marks a stored payload that cannot be decoded. Such an entry
// is treated as a miss and overwritten.
var errCorruptEntry = stderrors.New("corrupt cache entry")

func encodeEntry(entry *Entry) ([]byte, error) {
	if err := initCodec(); err != nil {
		return nil, fmt.Errorf("failed to init zstd: %w", err)
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cache entry: %w", err)
	}
	return encoder.EncodeAll(raw, make([]byte, 0, len(raw)/2)), nil
}

func decodeEntry(data []byte) (*Entry, error) {
	if err := initCodec(); err != nil {
		return nil, fmt.Errorf("failed to init zstd: %w", err)
	}
	raw, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decompress: %w", errCorruptEntry, err)
	}
	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal: %w", errCorruptEntry, err)
	}
	return &entry, nil
}
