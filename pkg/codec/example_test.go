package codec_test

import (
	"fmt"
	"log"

	"github.com/ssargent/fsbx/pkg/codec"
)

// ExampleParseHeader demonstrates building and validating a file record
func ExampleParseHeader() {
	h, err := codec.ParseHeader([]byte("file\x00a.txt\x00cfg\x005\x00644\x000\x000\x000\x000"))
	if err != nil {
		log.Fatal(err)
	}

	payload := []byte("hello")
	rec, err := codec.NewRecord(h, payload, codec.Checksum(payload))
	if err != nil {
		log.Fatal(err)
	}

	if err := rec.Validate(); err != nil {
		log.Fatal(err)
	}

	fmt.Println(rec)
	fmt.Println(rec.Digest())
	// Output:
	// file a.txt cfg
	// 5d41402abc4b2a76b9719d911017c592
}
