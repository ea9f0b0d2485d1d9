package telemetry

import (
	"time"

	"go.uber.org/zap"
)

const (
	FieldEvent      = "event"
	FieldDurationMs = "duration_ms"
	FieldRequestID  = "request_id"
	FieldMethod     = "method"
	FieldRoute      = "route"
	FieldStatus     = "status"
	FieldClientIP   = "client_ip"
	FieldToolID     = "tool_id"
)

const (
	EventHTTPRequest  = "http_request"
	EventConfigReload = "config_reload"
	EventImport       = "import"
	EventExport       = "export"
)

func EventField(event string) zap.Field {
	return zap.String(FieldEvent, event)
}

func DurationField(duration time.Duration) zap.Field {
	return zap.Int64(FieldDurationMs, duration.Milliseconds())
}

func RequestIDField(value string) zap.Field {
	return zap.String(FieldRequestID, value)
}

func ToolIDField(id int) zap.Field {
	return zap.Int(FieldToolID, id)
}

// HTTPFields describes one served request.
func HTTPFields(method, route string, status int, clientIP string, duration time.Duration) []zap.Field {
	return []zap.Field{
		EventField(EventHTTPRequest),
		zap.String(FieldMethod, method),
		zap.String(FieldRoute, route),
		zap.Int(FieldStatus, status),
		zap.String(FieldClientIP, clientIP),
		DurationField(duration),
	}
}
