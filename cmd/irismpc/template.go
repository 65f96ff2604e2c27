// Copyright (C) 2024 The irismpc Authors.
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this file,
// You can obtain one at https://mozilla.org/MPL/2.0/.

package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"github.com/irisshare/irismpc/lib/bitvec"
)

// templateJSON is the on-disk shape of one Template record (spec.md
// §6): a hex-encoded pattern and mask, each 1600 bytes.
type templateJSON struct {
	Pattern string `json:"pattern"`
	Mask    string `json:"mask"`
}

func encodeTemplateJSON(pattern, mask bitvec.Vector) templateJSON {
	return templateJSON{
		Pattern: hex.EncodeToString(pattern[:]),
		Mask:    hex.EncodeToString(mask[:]),
	}
}

func (t templateJSON) decode() (pattern, mask bitvec.Vector, err error) {
	pb, err := hex.DecodeString(t.Pattern)
	if err != nil {
		return pattern, mask, fmt.Errorf("decode pattern: %w", err)
	}
	mb, err := hex.DecodeString(t.Mask)
	if err != nil {
		return pattern, mask, fmt.Errorf("decode mask: %w", err)
	}
	if len(pb) != bitvec.Bytes || len(mb) != bitvec.Bytes {
		return pattern, mask, fmt.Errorf("template: expected %d-byte pattern/mask, got %d/%d", bitvec.Bytes, len(pb), len(mb))
	}
	copy(pattern[:], pb)
	copy(mask[:], mb)
	return pattern, mask, nil
}

// templateStreamReader walks a Template JSON array one element at a
// time via json.Decoder's token stream, rather than unmarshaling the
// whole array into memory — the streaming behavior spec.md §6 assigns
// to an external collaborator, satisfied here with the standard
// library's own streaming decoder.
type templateStreamReader struct {
	dec *json.Decoder
}

func newTemplateStreamReader(r io.Reader) (*templateStreamReader, error) {
	dec := json.NewDecoder(r)
	if _, err := dec.Token(); err != nil { // consume '['
		return nil, fmt.Errorf("read template array: %w", err)
	}
	return &templateStreamReader{dec: dec}, nil
}

// Next returns the next template, or io.EOF once the array is
// exhausted.
func (s *templateStreamReader) Next() (pattern, mask bitvec.Vector, err error) {
	if !s.dec.More() {
		return pattern, mask, io.EOF
	}
	var tj templateJSON
	if err := s.dec.Decode(&tj); err != nil {
		return pattern, mask, fmt.Errorf("decode template: %w", err)
	}
	return tj.decode()
}
