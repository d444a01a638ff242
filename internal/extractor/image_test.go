package extractor

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawImageFields(encoding string, width, height, step int, data []byte) map[string]any {
	return map[string]any{
		"width":    uint32(width),
		"height":   uint32(height),
		"step":     uint32(step),
		"encoding": encoding,
		"data":     data,
	}
}

func TestRawImageHandler_Mono8(t *testing.T) {
	msg := msgWith("/cam", "sensor_msgs/Image",
		rawImageFields("mono8", 2, 2, 2, []byte{0, 64, 128, 255}))

	img, meta, err := RawImageHandler{}.ExtractImage(msg, nil)
	require.NoError(t, err)

	gray, ok := img.(*image.Gray)
	require.True(t, ok)
	assert.Equal(t, image.Rect(0, 0, 2, 2), gray.Bounds())
	assert.Equal(t, uint8(255), gray.GrayAt(1, 1).Y)

	assert.Equal(t, "/cam", meta["topic"])
	assert.Equal(t, "sensor_msgs/Image", meta["type"])
	assert.Equal(t, "mono8", meta["encoding"])
	assert.NotEmpty(t, meta["stamp"])
}

func TestRawImageHandler_RGB8AndBGR8(t *testing.T) {
	// one red pixel
	rgbMsg := msgWith("/cam", "sensor_msgs/Image",
		rawImageFields("rgb8", 1, 1, 3, []byte{255, 0, 0}))
	bgrMsg := msgWith("/cam", "sensor_msgs/Image",
		rawImageFields("bgr8", 1, 1, 3, []byte{0, 0, 255}))

	rgbImg, _, err := RawImageHandler{}.ExtractImage(rgbMsg, nil)
	require.NoError(t, err)
	bgrImg, _, err := RawImageHandler{}.ExtractImage(bgrMsg, nil)
	require.NoError(t, err)

	want := color.RGBA{R: 255, A: 255}
	assert.Equal(t, want, rgbImg.(*image.RGBA).RGBAAt(0, 0))
	assert.Equal(t, want, bgrImg.(*image.RGBA).RGBAAt(0, 0))
}

func TestRawImageHandler_RowPadding(t *testing.T) {
	// step wider than width*channels: trailing pad bytes are ignored
	msg := msgWith("/cam", "sensor_msgs/Image",
		rawImageFields("mono8", 2, 2, 4, []byte{1, 2, 0, 0, 3, 4, 0, 0}))

	img, _, err := RawImageHandler{}.ExtractImage(msg, nil)
	require.NoError(t, err)
	gray := img.(*image.Gray)
	assert.Equal(t, uint8(3), gray.GrayAt(0, 1).Y)
	assert.Equal(t, uint8(4), gray.GrayAt(1, 1).Y)
}

func TestRawImageHandler_Errors(t *testing.T) {
	cases := []struct {
		name    string
		fields  map[string]any
		wantErr string
	}{
		{
			name:    "unsupported encoding",
			fields:  rawImageFields("bayer_rggb8", 2, 2, 2, make([]byte, 4)),
			wantErr: "unsupported image encoding",
		},
		{
			name:    "short data",
			fields:  rawImageFields("mono8", 4, 4, 4, make([]byte, 3)),
			wantErr: "image data is 3 bytes",
		},
		{
			name:    "step too small",
			fields:  rawImageFields("rgb8", 4, 1, 4, make([]byte, 12)),
			wantErr: "step 4 too small",
		},
		{
			name: "missing width",
			fields: map[string]any{
				"height": uint32(2), "step": uint32(2), "encoding": "mono8", "data": []byte{0, 0, 0, 0},
			},
			wantErr: `"width"`,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			msg := msgWith("/cam", "sensor_msgs/Image", tc.fields)
			_, _, err := RawImageHandler{}.ExtractImage(msg, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestCompressedImageHandler_PNGPayload(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 3, 3))
	var payload bytes.Buffer
	require.NoError(t, png.Encode(&payload, src))

	msg := msgWith("/cam", "sensor_msgs/CompressedImage", map[string]any{
		"format": "png",
		"data":   payload.Bytes(),
	})

	img, meta, err := CompressedImageHandler{}.ExtractImage(msg, nil)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 3, 3), img.Bounds())
	assert.Equal(t, "png", meta["encoding"])
}

func TestCompressedImageHandler_BadPayload(t *testing.T) {
	msg := msgWith("/cam", "sensor_msgs/CompressedImage", map[string]any{
		"format": "jpeg",
		"data":   []byte("not an image"),
	})

	_, _, err := CompressedImageHandler{}.ExtractImage(msg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}
