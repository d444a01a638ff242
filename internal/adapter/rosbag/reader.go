package rosbag

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	gorosbag "github.com/lherman-cs/go-rosbag"

	"github.com/artificial-agent/ros-to-huggingface/internal/domain"
	"github.com/artificial-agent/ros-to-huggingface/internal/pipeline"
)

// Bag streams message records from one rosbag file in arrival order.
// It implements pipeline.BagSource.
type Bag struct {
	name    string
	count   int
	file    *os.File
	decoder *gorosbag.Decoder
	// current is the pooled record backing the last returned message; its
	// payload stays valid until the next read, so it is recycled there.
	current gorosbag.Record
}

// Open opens the bag read-only. The file is pre-scanned once to recover the
// total message count for progress reporting, since the bag's index is not
// reachable from a forward stream.
func Open(path string) (*Bag, error) {
	count, err := countMessages(path)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	return &Bag{
		name:    BagName(path),
		count:   count,
		file:    f,
		decoder: gorosbag.NewDecoder(f),
	}, nil
}

// BagName is the bag's file-derived identifier: the base name without its
// extension.
func BagName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Name returns the bag's identifier.
func (b *Bag) Name() string { return b.name }

// MessageCount returns the bag's total message count.
func (b *Bag) MessageCount() int { return b.count }

// Next returns the next message in bag order, skipping connection, index,
// and chunk bookkeeping records. It returns io.EOF at the end of the bag.
func (b *Bag) Next() (domain.Message, error) {
	for {
		b.recycle()

		record, err := b.decoder.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return domain.Message{}, io.EOF
			}
			return domain.Message{}, fmt.Errorf("decode record: %w", err)
		}

		msg, ok := record.(*gorosbag.RecordMessageData)
		if !ok {
			record.Close()
			continue
		}

		hdr := msg.ConnectionHeader()
		stamp, err := msg.Time()
		if err != nil {
			record.Close()
			return domain.Message{}, fmt.Errorf("message time on %s: %w", hdr.Topic, err)
		}

		b.current = msg
		return domain.Message{
			Topic: hdr.Topic,
			Type:  hdr.Type,
			Time:  stamp,
			Raw:   messageView{record: msg},
		}, nil
	}
}

// Close releases the held record and the underlying file.
func (b *Bag) Close() error {
	b.recycle()
	return b.file.Close()
}

func (b *Bag) recycle() {
	if b.current != nil {
		b.current.Close()
		b.current = nil
	}
}

// messageView defers field decoding until the message is actually sampled.
type messageView struct {
	record *gorosbag.RecordMessageData
}

func (v messageView) Decode(into map[string]interface{}) error {
	return v.record.ViewAs(into)
}

// countMessages walks the record framing of the bag at path and counts
// message-data records without decoding any fields.
func countMessages(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	decoder := gorosbag.NewDecoder(f)
	count := 0
	for {
		record, err := decoder.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return count, nil
			}
			return 0, err
		}
		if _, ok := record.(*gorosbag.RecordMessageData); ok {
			count++
		}
		record.Close()
	}
}

// Opener adapts Open to the batch driver's BagOpener port.
type Opener struct{}

func (Opener) Open(path string) (pipeline.BagSource, error) {
	return Open(path)
}
