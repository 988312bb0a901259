package llm

import (
	"errors"
	"io"
)

// ChunkReader yields stream events one at a time. Recv returns io.EOF when
// the stream is exhausted.
type ChunkReader interface {
	Recv() (Chunk, error)
	Close() error
}

// Decoder lazily turns a provider stream into text fragments.
// Use it like bufio.Scanner:
//
//	for dec.Next() {
//		w.Write([]byte(dec.Text()))
//	}
//	if err := dec.Err(); err != nil { ... }
type Decoder struct {
	src  ChunkReader
	text string
	err  error
	done bool
}

func NewDecoder(src ChunkReader) *Decoder {
	return &Decoder{src: src}
}

// Next advances to the next non-empty fragment. It returns false at the end
// of the stream, after the provider's done sentinel, or on error.
func (d *Decoder) Next() bool {
	if d.done || d.err != nil {
		return false
	}
	for {
		chunk, err := d.src.Recv()
		if errors.Is(err, io.EOF) {
			d.done = true
			return false
		}
		if errors.Is(err, ErrMalformedChunk) {
			continue
		}
		if err != nil {
			d.err = err
			return false
		}
		if chunk.Done {
			d.done = true
		}
		if chunk.Text != "" {
			d.text = chunk.Text
			return true
		}
		if d.done {
			return false
		}
	}
}

// Text returns the fragment produced by the last successful Next.
func (d *Decoder) Text() string { return d.text }

func (d *Decoder) Err() error { return d.err }

func (d *Decoder) Close() error { return d.src.Close() }
