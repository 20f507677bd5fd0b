package telemetry

import "codeberg.org/mutker/perfctl/internal/errors"

const (
	ErrSensorReadFailed = errors.ErrorCode("telemetry_sensor_read_failed")
	ErrNoThermalSensor  = errors.ErrorCode("telemetry_no_thermal_sensor")
	ErrFrameFeedStale   = errors.ErrorCode("telemetry_frame_feed_stale")
)
