package codec

import (
	"fmt"
	"testing"
)

func benchDoc(n int) doc {
	d := doc{List: make([]entry, n)}
	for i := range d.List {
		d.List[i] = entry{ID: fmt.Sprintf("tile-%d", i), X: float64(i), Y: float64(i % 97)}
	}
	return d
}

func benchmarkCodecMarshal(b *testing.B, c Codec, v any) {
	b.Helper()
	b.ReportAllocs()

	warm, err := c.Marshal(v)
	if err != nil {
		b.Fatal(err)
	}
	b.SetBytes(int64(len(warm)))

	var sink []byte
	b.ResetTimer()
	for b.Loop() {
		out, err := c.Marshal(v)
		if err != nil {
			b.Fatal(err)
		}
		sink = out
	}
	_ = sink
}

func benchmarkCodecUnmarshal[T any](b *testing.B, c Codec, data []byte, dst *T) {
	b.Helper()
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))

	var v T
	b.ResetTimer()
	for b.Loop() {
		if err := c.Unmarshal(data, &v); err != nil {
			b.Fatal(err)
		}
	}
	if dst != nil {
		*dst = v
	}
}

func BenchmarkMarshal(b *testing.B) {
	v := benchDoc(1000)
	for _, c := range []Codec{JSON{}, GoJSON{}, TOML{}} {
		b.Run(c.Name(), func(b *testing.B) { benchmarkCodecMarshal(b, c, v) })
	}
}

func BenchmarkUnmarshal(b *testing.B) {
	v := benchDoc(1000)
	for _, c := range []Codec{JSON{}, GoJSON{}, TOML{}} {
		data := MustMarshal(c, v)
		b.Run(c.Name(), func(b *testing.B) {
			var out doc
			benchmarkCodecUnmarshal(b, c, data, &out)
		})
	}
}
