package cosave

import (
	"testing"

	"github.com/klauspost/compress/zstd"

	"github.com/rawbytedev/hexscriptex/pkg/forms"
)

func benchCosave(b *testing.B, opts ...WriterOption) []byte {
	b.Helper()

	w := NewWriter(opts...)
	for i := 0; i < 1000; i++ {
		if err := w.OpenRecord(FourCC("BNCH"), 1); err != nil {
			b.Fatal(err)
		}
		_ = w.WriteI32(int32(i))
		_ = w.WriteString("azerty")
		_ = w.WriteF32(float32(i) / 3)
	}
	data, err := w.Bytes()
	if err != nil {
		b.Fatal(err)
	}
	return data
}

func BenchmarkWrite(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		benchCosave(b)
	}
}

func BenchmarkWriteZstd(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		benchCosave(b, WithCompression(zstd.SpeedFastest))
	}
}

func BenchmarkRead(b *testing.B) {
	data := benchCosave(b)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r, err := NewReader(data, forms.LoadOrder{})
		if err != nil {
			b.Fatal(err)
		}
		for {
			if _, ok := r.NextRecord(); !ok {
				break
			}
			_, _ = r.ReadI32()
			_, _ = r.ReadString()
			_, _ = r.ReadF32()
		}
	}
}
