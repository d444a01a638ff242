package extractor

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artificial-agent/ros-to-huggingface/internal/domain"
)

type stubRaw struct {
	fields map[string]any
	err    error
}

func (s stubRaw) Decode(into map[string]interface{}) error {
	if s.err != nil {
		return s.err
	}
	for k, v := range s.fields {
		into[k] = v
	}
	return nil
}

func msgWith(topic, msgType string, fields map[string]any) domain.Message {
	return domain.Message{
		Topic: topic,
		Type:  msgType,
		Time:  time.Unix(12, 345),
		Raw:   stubRaw{fields: fields},
	}
}

func TestRegistry_KnownTypes(t *testing.T) {
	r := NewRegistry()

	for _, msgType := range []string{"geometry_msgs/Twist", "geometry_msgs/TwistStamped", "sensor_msgs/Imu"} {
		h, err := r.Tabular("/t", msgType)
		require.NoError(t, err, msgType)
		assert.NotNil(t, h)
	}

	for _, msgType := range []string{"sensor_msgs/Image", "sensor_msgs/CompressedImage"} {
		h, err := r.Image("/cam", msgType)
		require.NoError(t, err, msgType)
		assert.NotNil(t, h)
	}
}

func TestRegistry_UnknownTypeFailsExplicitly(t *testing.T) {
	r := NewRegistry()

	_, err := r.Tabular("/odom", "nav_msgs/Odometry")
	require.ErrorIs(t, err, domain.ErrUnsupportedMessageType)
	assert.Contains(t, err.Error(), "/odom")
	assert.Contains(t, err.Error(), "nav_msgs/Odometry")

	_, err = r.Image("/cam", "sensor_msgs/PointCloud2")
	require.ErrorIs(t, err, domain.ErrUnsupportedMessageType)
}

func TestRegistry_RegisterOverrides(t *testing.T) {
	r := NewRegistry()
	custom := TwistHandler{}
	r.RegisterTabular("my_msgs/Custom", custom)

	h, err := r.Tabular("/x", "my_msgs/Custom")
	require.NoError(t, err)
	assert.Equal(t, custom, h)
}

func TestMessageFields_DecodeError(t *testing.T) {
	msg := domain.Message{
		Topic: "/t",
		Type:  "geometry_msgs/Twist",
		Raw:   stubRaw{err: errors.New("truncated payload")},
	}

	_, err := TwistHandler{}.Extract(msg, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "truncated payload")
}
