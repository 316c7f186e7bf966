package cosave

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

func compressBody(level zstd.EncoderLevel, raw []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(level))
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(raw, nil), nil
}

func decompressBody(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(MaxBodySize))
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("cosave: failed to decompress body: %w", err)
	}
	return out, nil
}

// ParseLevel maps a level name (fastest, default, better, best) to a zstd
// encoder level.
func ParseLevel(name string) (zstd.EncoderLevel, error) {
	if name == "" {
		return zstd.SpeedDefault, nil
	}
	ok, level := zstd.EncoderLevelFromString(name)
	if !ok {
		return 0, fmt.Errorf("cosave: unknown compression level: %s", name)
	}
	return level, nil
}
