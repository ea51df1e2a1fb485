package compress_test

import (
	"bytes"
	"testing"

	"github.com/vellum-data/vellum/compress"
	"github.com/vellum-data/vellum/compress/brotli"
	"github.com/vellum-data/vellum/compress/gzip"
	"github.com/vellum-data/vellum/compress/lz4"
	"github.com/vellum-data/vellum/compress/snappy"
	"github.com/vellum-data/vellum/compress/uncompressed"
	"github.com/vellum-data/vellum/compress/zstd"
)

var tests = [...]struct {
	scenario string
	codec    compress.Codec
}{
	{
		scenario: "uncompressed",
		codec:    new(uncompressed.Codec),
	},

	{
		scenario: "snappy",
		codec:    new(snappy.Codec),
	},

	{
		scenario: "gzip",
		codec:    new(gzip.Codec),
	},

	{
		scenario: "brotli",
		codec:    new(brotli.Codec),
	},

	{
		scenario: "zstd",
		codec:    new(zstd.Codec),
	},

	{
		scenario: "lz4-fastest",
		codec:    &lz4.Codec{Level: lz4.Fastest},
	},
	{
		scenario: "lz4-l1",
		codec:    &lz4.Codec{Level: lz4.Level1},
	},
	{
		scenario: "lz4-l9",
		codec:    &lz4.Codec{Level: lz4.Level9},
	},
}

var testdata = bytes.Repeat([]byte("1234567890qwertyuiopasdfghjklzxcvbnm"), 10e3)

func TestCompressionCodec(t *testing.T) {
	buffer := make([]byte, 0, len(testdata))
	output := make([]byte, 0, len(testdata))

	for _, test := range tests {
		t.Run(test.scenario, func(t *testing.T) {
			const N = 10
			// Run the test multiple times to exercise codecs that maintain
			// state across compression/decompression.
			for i := 0; i < N; i++ {
				var err error

				buffer, err = test.codec.Encode(buffer[:0], testdata)
				if err != nil {
					t.Fatal(err)
				}

				output, err = test.codec.Decode(output[:0], buffer)
				if err != nil {
					t.Fatal(err)
				}

				if !bytes.Equal(testdata, output) {
					t.Errorf("content mismatch after compressing and decompressing (attempt %d/%d)", i+1, N)
				}
			}
		})
	}
}

func TestCodecEmptyInput(t *testing.T) {
	for _, test := range tests {
		t.Run(test.scenario, func(t *testing.T) {
			buffer, err := test.codec.Encode(nil, nil)
			if err != nil {
				t.Fatal(err)
			}
			output, err := test.codec.Decode(nil, buffer)
			if err != nil {
				t.Fatal(err)
			}
			if len(output) != 0 {
				t.Errorf("expected empty output, got %d bytes", len(output))
			}
		})
	}
}
