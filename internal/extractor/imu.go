package extractor

import (
	"fmt"

	"github.com/artificial-agent/ros-to-huggingface/internal/domain"
)

var imuColumns = []string{
	"stamp",
	"ax", "ay", "az",
	"gx", "gy", "gz",
	"ox", "oy", "oz", "ow",
}

// ImuHandler extracts sensor_msgs/Imu into linear acceleration, angular
// velocity, and orientation quaternion scalars.
type ImuHandler struct{}

func (ImuHandler) Columns() []string { return imuColumns }

func (ImuHandler) Extract(msg domain.Message, _ map[string]any) (map[string]any, error) {
	data, err := msg.Fields()
	if err != nil {
		return nil, err
	}

	row := map[string]any{"stamp": msg.Time.UnixNano()}

	groups := []struct {
		field string
		axes  map[string]string
	}{
		{"linear_acceleration", map[string]string{"x": "ax", "y": "ay", "z": "az"}},
		{"angular_velocity", map[string]string{"x": "gx", "y": "gy", "z": "gz"}},
		{"orientation", map[string]string{"x": "ox", "y": "oy", "z": "oz", "w": "ow"}},
	}

	for _, group := range groups {
		sub, err := nestedMap(data, group.field)
		if err != nil {
			return nil, fmt.Errorf("%s on %s: %w", msg.Type, msg.Topic, err)
		}
		for axis, dst := range group.axes {
			v, err := floatField(sub, axis)
			if err != nil {
				return nil, fmt.Errorf("%s on %s: %s: %w", msg.Type, msg.Topic, group.field, err)
			}
			row[dst] = v
		}
	}

	return row, nil
}
