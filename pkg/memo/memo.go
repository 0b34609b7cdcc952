// Package memo persists the result of a slow computation to a file and loads
// it back on later runs instead of recomputing it.
package memo

import (
	"bufio"
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/rs/zerolog/log"
)

type Compression string

const (
	None Compression = "none"
	Zstd Compression = "zstd"
	LZ4  Compression = "lz4"
)

func ParseCompression(name string) (Compression, error) {
	switch c := Compression(name); c {
	case None, Zstd, LZ4:
		return c, nil
	case "":
		return None, nil
	}
	return "", fmt.Errorf("unknown compression %q, expected one of %s, %s, %s", name, None, Zstd, LZ4)
}

type Options struct {
	Compression Compression
}

// LoadOrExec returns the value stored at path. When it cannot be loaded for
// any reason, fn is run and its result saved to path before being returned.
func LoadOrExec[T any](path string, opts Options, fn func() (T, error)) (T, error) {
	value, err := Load[T](path, opts)
	if err == nil {
		log.Debug().Str("file", path).Msg("loaded cached result")
		return value, nil
	}
	log.Info().Str("file", path).Err(err).Msg("cached result not found, executing function and then saving")

	value, err = fn()
	if err != nil {
		return value, err
	}
	if err := Save(path, opts, value); err != nil {
		return value, err
	}
	log.Info().Str("file", path).Msg("saved result")
	return value, nil
}

func Load[T any](path string, opts Options) (T, error) {
	var value T
	file, err := os.Open(path)
	if err != nil {
		return value, fmt.Errorf("error opening cache file: %w", err)
	}
	defer file.Close()

	reader, closeReader, err := decompressor(bufio.NewReader(file), opts.Compression)
	if err != nil {
		return value, err
	}
	defer closeReader()

	if err := gob.NewDecoder(reader).Decode(&value); err != nil {
		return value, fmt.Errorf("error decoding cached value: %w", err)
	}
	return value, nil
}

// Save writes value to path, replacing it only once the write completed.
func Save[T any](path string, opts Options, value T) error {
	file, err := os.CreateTemp(filepath.Dir(path), ".memo-*")
	if err != nil {
		return fmt.Errorf("error creating cache file: %w", err)
	}
	defer os.Remove(file.Name())

	if err := encode(file, opts.Compression, value); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("error closing cache file: %w", err)
	}
	if err := os.Rename(file.Name(), path); err != nil {
		return fmt.Errorf("error moving cache file into place: %w", err)
	}
	return nil
}

func encode[T any](w io.Writer, compression Compression, value T) error {
	buffered := bufio.NewWriter(w)
	writer, err := compressor(buffered, compression)
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(writer).Encode(value); err != nil {
		return fmt.Errorf("error encoding value: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("error compressing value: %w", err)
	}
	return buffered.Flush()
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error {
	return nil
}

func compressor(w io.Writer, compression Compression) (io.WriteCloser, error) {
	switch compression {
	case Zstd:
		return zstd.NewWriter(w)
	case LZ4:
		return lz4.NewWriter(w), nil
	case None, "":
		return nopWriteCloser{w}, nil
	}
	return nil, fmt.Errorf("unknown compression %q", compression)
}

func decompressor(r io.Reader, compression Compression) (io.Reader, func(), error) {
	switch compression {
	case Zstd:
		decoder, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("error creating zstd reader: %w", err)
		}
		return decoder, decoder.Close, nil
	case LZ4:
		return lz4.NewReader(r), func() {}, nil
	case None, "":
		return r, func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown compression %q", compression)
}
