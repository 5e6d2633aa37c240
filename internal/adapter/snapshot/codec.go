// Package snapshot encodes session state as zstd-compressed CBOR. CBOR keeps
// the blob compact and schema-tolerant across versions; zstd keeps large
// world snapshots cheap to store.
package snapshot

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"

	"townsim/internal/app/session"
)

type Codec struct{}

func (Codec) Encode(st session.State) ([]byte, error) {
	raw, err := cbor.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("cbor encode: %w", err)
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd writer: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(raw, nil), nil
}

func (Codec) Decode(blob []byte) (session.State, error) {
	var st session.State
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return st, fmt.Errorf("zstd reader: %w", err)
	}
	defer dec.Close()
	raw, err := dec.DecodeAll(blob, nil)
	if err != nil {
		return st, fmt.Errorf("zstd decode: %w", err)
	}
	if err := cbor.Unmarshal(raw, &st); err != nil {
		return st, fmt.Errorf("cbor decode: %w", err)
	}
	return st, nil
}
