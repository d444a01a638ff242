package extractor

import (
	"fmt"

	"github.com/artificial-agent/ros-to-huggingface/internal/domain"
)

var twistColumns = []string{"stamp", "vx", "vy", "vz", "wx", "wy", "wz"}

// TwistHandler extracts geometry_msgs/Twist into linear and angular
// velocity scalars. The stamp column carries the bag timestamp in
// nanoseconds since the epoch.
type TwistHandler struct{}

func (TwistHandler) Columns() []string { return twistColumns }

func (TwistHandler) Extract(msg domain.Message, _ map[string]any) (map[string]any, error) {
	data, err := msg.Fields()
	if err != nil {
		return nil, err
	}
	return twistRow(msg, data)
}

// TwistStampedHandler extracts geometry_msgs/TwistStamped; the twist lives
// one level down, the header stamp is ignored in favor of bag time.
type TwistStampedHandler struct{}

func (TwistStampedHandler) Columns() []string { return twistColumns }

func (TwistStampedHandler) Extract(msg domain.Message, _ map[string]any) (map[string]any, error) {
	data, err := msg.Fields()
	if err != nil {
		return nil, err
	}
	twist, err := nestedMap(data, "twist")
	if err != nil {
		return nil, fmt.Errorf("%s on %s: %w", msg.Type, msg.Topic, err)
	}
	return twistRow(msg, twist)
}

func twistRow(msg domain.Message, twist map[string]any) (map[string]any, error) {
	linear, err := nestedMap(twist, "linear")
	if err != nil {
		return nil, fmt.Errorf("%s on %s: %w", msg.Type, msg.Topic, err)
	}
	angular, err := nestedMap(twist, "angular")
	if err != nil {
		return nil, fmt.Errorf("%s on %s: %w", msg.Type, msg.Topic, err)
	}

	row := map[string]any{"stamp": msg.Time.UnixNano()}
	for axis, dst := range map[string]string{"x": "vx", "y": "vy", "z": "vz"} {
		v, err := floatField(linear, axis)
		if err != nil {
			return nil, fmt.Errorf("%s on %s: linear: %w", msg.Type, msg.Topic, err)
		}
		row[dst] = v
	}
	for axis, dst := range map[string]string{"x": "wx", "y": "wy", "z": "wz"} {
		v, err := floatField(angular, axis)
		if err != nil {
			return nil, fmt.Errorf("%s on %s: angular: %w", msg.Type, msg.Topic, err)
		}
		row[dst] = v
	}
	return row, nil
}
