package resources

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/rs/zerolog"
	otelog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"
)

// fieldAliases renames the fields this service logs everywhere to their
// OpenTelemetry semantic names.
var fieldAliases = map[string]string{
	"owner":      "enduser.id",
	"request_id": "http.request.id",
	"status":     "http.response.status_code",
	"method":     "http.request.method",
	"path":       "url.path",
	"error":      "exception.message",
}

type severity struct {
	level otelog.Severity
	text  string
}

var severities = map[zerolog.Level]severity{
	zerolog.TraceLevel: {otelog.SeverityTrace, "TRACE"},
	zerolog.DebugLevel: {otelog.SeverityDebug, "DEBUG"},
	zerolog.InfoLevel:  {otelog.SeverityInfo, "INFO"},
	zerolog.WarnLevel:  {otelog.SeverityWarn, "WARN"},
	zerolog.ErrorLevel: {otelog.SeverityError, "ERROR"},
	zerolog.FatalLevel: {otelog.SeverityFatal, "FATAL"},
	zerolog.PanicLevel: {otelog.SeverityFatal4, "FATAL"},
}

// LogBridge is a zerolog hook re-emitting every event as an OTel log record,
// with the structured fields as record attributes.
type LogBridge struct {
	logger   otelog.Logger
	resource []otelog.KeyValue
}

func NewLogBridge(serviceName string, serviceVersion string) *LogBridge {
	return &LogBridge{
		logger: global.GetLoggerProvider().Logger(serviceName),
		resource: []otelog.KeyValue{
			otelog.String("service.name", serviceName),
			otelog.String("service.version", serviceVersion),
		},
	}
}

func (b *LogBridge) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	fields, ok := eventFields(e)
	if !ok {
		return
	}

	var rec otelog.Record

	sev := severityOf(level)
	rec.SetTimestamp(eventTime(fields))
	rec.SetObservedTimestamp(time.Now())
	rec.SetSeverity(sev.level)
	rec.SetSeverityText(sev.text)
	rec.SetBody(otelog.StringValue(msg))
	rec.AddAttributes(b.resource...)
	rec.AddAttributes(attributesOf(fields)...)

	b.logger.Emit(e.GetCtx(), rec)
}

func severityOf(level zerolog.Level) severity {
	sev, ok := severities[level]
	if !ok {
		return severities[zerolog.InfoLevel]
	}

	return sev
}

// eventFields decodes the fields written so far. zerolog keeps them in an
// unexported, not yet closed JSON buffer.
func eventFields(e *zerolog.Event) (map[string]any, bool) {
	if e == nil {
		return nil, false
	}

	buf := reflect.ValueOf(e).Elem().FieldByName("buf")
	if !buf.IsValid() || buf.Kind() != reflect.Slice || buf.Type().Elem().Kind() != reflect.Uint8 || buf.Len() == 0 {
		return nil, false
	}

	raw := append([]byte(nil), buf.Bytes()...)
	if raw[len(raw)-1] != '}' {
		raw = append(raw, '}')
	}

	var fields map[string]any

	err := json.Unmarshal(raw, &fields)
	if err != nil {
		return nil, false
	}

	return fields, true
}

func eventTime(fields map[string]any) time.Time {
	s, ok := fields[zerolog.TimestampFieldName].(string)
	if !ok {
		return time.Now()
	}

	ts, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Now()
	}

	return ts
}

// attributesOf converts the event fields in key order, skipping what the
// record already carries.
func attributesOf(fields map[string]any) []otelog.KeyValue {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		switch key {
		case zerolog.TimestampFieldName, zerolog.LevelFieldName, zerolog.MessageFieldName:
			continue
		}

		keys = append(keys, key)
	}

	sort.Strings(keys)

	kvs := make([]otelog.KeyValue, 0, len(keys))
	for _, key := range keys {
		value, ok := valueOf(fields[key])
		if !ok {
			continue
		}

		if alias, found := fieldAliases[key]; found {
			key = alias
		}

		kvs = append(kvs, otelog.KeyValue{Key: key, Value: value})
	}

	return kvs
}

func valueOf(v any) (otelog.Value, bool) {
	switch x := v.(type) {
	case nil:
		return otelog.Value{}, false
	case string:
		return otelog.StringValue(x), true
	case bool:
		return otelog.BoolValue(x), true
	case float64:
		if x == float64(int64(x)) {
			return otelog.Int64Value(int64(x)), true
		}

		return otelog.Float64Value(x), true
	case []any:
		values := make([]otelog.Value, 0, len(x))
		for _, item := range x {
			if value, ok := valueOf(item); ok {
				values = append(values, value)
			}
		}

		return otelog.SliceValue(values...), true
	default:
		return otelog.StringValue(fmt.Sprintf("%v", x)), true
	}
}
