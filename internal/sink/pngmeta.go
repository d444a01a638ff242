package sink

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"image"
	"image/png"
	"io"
	"sort"
)

const pngFooterLen = 12 // IEND chunk: length + type + crc

// encodePNGWithText encodes img as PNG with one tEXt chunk per metadata key,
// spliced in ahead of the IEND chunk. Keys are written in sorted order so the
// output is byte-reproducible.
func encodePNGWithText(w io.Writer, img image.Image, metadata map[string]string) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return err
	}

	encoded := buf.Bytes()
	if len(encoded) < pngFooterLen {
		return fmt.Errorf("png encoder produced %d bytes", len(encoded))
	}
	body, footer := encoded[:len(encoded)-pngFooterLen], encoded[len(encoded)-pngFooterLen:]

	if _, err := w.Write(body); err != nil {
		return err
	}

	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if err := writeTextChunk(w, key, metadata[key]); err != nil {
			return err
		}
	}

	_, err := w.Write(footer)
	return err
}

// writeTextChunk emits one tEXt chunk: keyword, NUL separator, text.
func writeTextChunk(w io.Writer, keyword, text string) error {
	if len(keyword) == 0 || len(keyword) > 79 {
		return fmt.Errorf("tEXt keyword %q must be 1-79 bytes", keyword)
	}

	data := make([]byte, 0, len(keyword)+1+len(text))
	data = append(data, keyword...)
	data = append(data, 0)
	data = append(data, text...)

	var header [8]byte
	binary.BigEndian.PutUint32(header[:4], uint32(len(data)))
	copy(header[4:], "tEXt")

	crc := crc32.NewIEEE()
	crc.Write(header[4:])
	crc.Write(data)

	var footer [4]byte
	binary.BigEndian.PutUint32(footer[:], crc.Sum32())

	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err := w.Write(footer[:])
	return err
}
