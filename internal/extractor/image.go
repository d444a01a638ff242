package extractor

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"strconv"

	// Register decoders for the payload formats CompressedImage carries.
	_ "image/jpeg"
	_ "image/png"

	"github.com/artificial-agent/ros-to-huggingface/internal/domain"
)

// RawImageHandler extracts sensor_msgs/Image frames. Supported encodings:
// rgb8, bgr8, mono8.
type RawImageHandler struct{}

func (RawImageHandler) ExtractImage(msg domain.Message, _ map[string]any) (image.Image, map[string]string, error) {
	data, err := msg.Fields()
	if err != nil {
		return nil, nil, err
	}

	width, err := intField(data, "width")
	if err != nil {
		return nil, nil, fmt.Errorf("%s on %s: %w", msg.Type, msg.Topic, err)
	}
	height, err := intField(data, "height")
	if err != nil {
		return nil, nil, fmt.Errorf("%s on %s: %w", msg.Type, msg.Topic, err)
	}
	step, err := intField(data, "step")
	if err != nil {
		return nil, nil, fmt.Errorf("%s on %s: %w", msg.Type, msg.Topic, err)
	}
	encoding, err := stringField(data, "encoding")
	if err != nil {
		return nil, nil, fmt.Errorf("%s on %s: %w", msg.Type, msg.Topic, err)
	}
	pixels, err := bytesField(data, "data")
	if err != nil {
		return nil, nil, fmt.Errorf("%s on %s: %w", msg.Type, msg.Topic, err)
	}

	img, err := decodeRawFrame(encoding, width, height, step, pixels)
	if err != nil {
		return nil, nil, fmt.Errorf("%s on %s: %w", msg.Type, msg.Topic, err)
	}

	return img, frameMetadata(msg, encoding), nil
}

func decodeRawFrame(encoding string, width, height, step int, pixels []byte) (image.Image, error) {
	channels := 0
	switch encoding {
	case "rgb8", "bgr8":
		channels = 3
	case "mono8":
		channels = 1
	default:
		return nil, fmt.Errorf("unsupported image encoding %q", encoding)
	}

	if step < width*channels {
		return nil, fmt.Errorf("step %d too small for width %d encoding %q", step, width, encoding)
	}
	if len(pixels) < height*step {
		return nil, fmt.Errorf("image data is %d bytes, need %d", len(pixels), height*step)
	}

	if encoding == "mono8" {
		img := image.NewGray(image.Rect(0, 0, width, height))
		for y := 0; y < height; y++ {
			copy(img.Pix[y*img.Stride:y*img.Stride+width], pixels[y*step:])
		}
		return img, nil
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		row := pixels[y*step:]
		for x := 0; x < width; x++ {
			r, g, b := row[x*3], row[x*3+1], row[x*3+2]
			if encoding == "bgr8" {
				r, b = b, r
			}
			img.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 0xff})
		}
	}
	return img, nil
}

// CompressedImageHandler extracts sensor_msgs/CompressedImage frames by
// decoding the embedded jpeg or png payload.
type CompressedImageHandler struct{}

func (CompressedImageHandler) ExtractImage(msg domain.Message, _ map[string]any) (image.Image, map[string]string, error) {
	data, err := msg.Fields()
	if err != nil {
		return nil, nil, err
	}

	format, err := stringField(data, "format")
	if err != nil {
		return nil, nil, fmt.Errorf("%s on %s: %w", msg.Type, msg.Topic, err)
	}
	payload, err := bytesField(data, "data")
	if err != nil {
		return nil, nil, fmt.Errorf("%s on %s: %w", msg.Type, msg.Topic, err)
	}

	img, _, err := image.Decode(bytes.NewReader(payload))
	if err != nil {
		return nil, nil, fmt.Errorf("%s on %s: decode %q payload: %w", msg.Type, msg.Topic, format, err)
	}

	return img, frameMetadata(msg, format), nil
}

func frameMetadata(msg domain.Message, encoding string) map[string]string {
	return map[string]string{
		"topic":    msg.Topic,
		"type":     msg.Type,
		"stamp":    strconv.FormatInt(msg.Time.UnixNano(), 10),
		"encoding": encoding,
	}
}
