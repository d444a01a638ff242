package extractor

import (
	"fmt"
	"image"

	"github.com/artificial-agent/ros-to-huggingface/internal/domain"
)

// TabularHandler turns one message into a flat row of scalar fields.
// Columns fixes the column set and order for every row the handler produces.
type TabularHandler interface {
	Columns() []string
	Extract(msg domain.Message, opts map[string]any) (map[string]any, error)
}

// ImageHandler turns one message into a renderable frame plus the metadata
// record embedded alongside it.
type ImageHandler interface {
	ExtractImage(msg domain.Message, opts map[string]any) (image.Image, map[string]string, error)
}

// Registry maps ROS message-type identifiers to extraction handlers. Lookups
// for unregistered types fail explicitly; there is no catch-all fallback.
type Registry struct {
	tabular map[string]TabularHandler
	image   map[string]ImageHandler
}

// NewRegistry returns a Registry with the built-in handlers registered.
func NewRegistry() *Registry {
	r := &Registry{
		tabular: make(map[string]TabularHandler),
		image:   make(map[string]ImageHandler),
	}

	r.RegisterTabular("geometry_msgs/Twist", TwistHandler{})
	r.RegisterTabular("geometry_msgs/TwistStamped", TwistStampedHandler{})
	r.RegisterTabular("sensor_msgs/Imu", ImuHandler{})
	r.RegisterImage("sensor_msgs/Image", RawImageHandler{})
	r.RegisterImage("sensor_msgs/CompressedImage", CompressedImageHandler{})

	return r
}

// RegisterTabular adds or replaces the tabular handler for msgType.
func (r *Registry) RegisterTabular(msgType string, h TabularHandler) {
	r.tabular[msgType] = h
}

// RegisterImage adds or replaces the image handler for msgType.
func (r *Registry) RegisterImage(msgType string, h ImageHandler) {
	r.image[msgType] = h
}

// Tabular resolves the tabular handler for a message type seen on topic.
func (r *Registry) Tabular(topic, msgType string) (TabularHandler, error) {
	h, ok := r.tabular[msgType]
	if !ok {
		return nil, fmt.Errorf("topic %s type %s: %w", topic, msgType, domain.ErrUnsupportedMessageType)
	}
	return h, nil
}

// Image resolves the image handler for a message type seen on topic.
func (r *Registry) Image(topic, msgType string) (ImageHandler, error) {
	h, ok := r.image[msgType]
	if !ok {
		return nil, fmt.Errorf("topic %s type %s: %w", topic, msgType, domain.ErrUnsupportedMessageType)
	}
	return h, nil
}
