package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/log"
)

// emitter is the internal translation boundary. It exists as an interface so
// tests can substitute a failing translator.
type emitter interface {
	emit(entry *logrus.Entry) error
}

// translator converts logrus entries into OTel log records and emits them
// through the provider's logger. Its severity gate and record mapping are
// fixed at construction; nothing the host framework does to the bridge can
// reach in here.
type translator struct {
	logger      log.Logger
	minSeverity log.Severity
}

func newTranslator(logger log.Logger, minSeverity log.Severity) *translator {
	return &translator{logger: logger, minSeverity: minSeverity}
}

func (t *translator) emit(entry *logrus.Entry) error {
	severity := toSeverity(entry.Level)
	if severity < t.minSeverity {
		return nil
	}

	var record log.Record
	record.SetTimestamp(entry.Time)
	record.SetObservedTimestamp(time.Now())
	record.SetSeverity(severity)
	record.SetSeverityText(entry.Level.String())
	record.SetBody(log.StringValue(entry.Message))
	record.AddAttributes(fieldsToAttributes(entry.Data)...)

	// The entry context carries the active span, if any; the SDK stamps the
	// record's trace and span IDs from it.
	ctx := entry.Context
	if ctx == nil {
		ctx = context.Background()
	}
	t.logger.Emit(ctx, record)
	return nil
}

// toSeverity maps logrus levels onto OTel log severities.
func toSeverity(level logrus.Level) log.Severity {
	switch level {
	case logrus.TraceLevel:
		return log.SeverityTrace
	case logrus.DebugLevel:
		return log.SeverityDebug
	case logrus.InfoLevel:
		return log.SeverityInfo
	case logrus.WarnLevel:
		return log.SeverityWarn
	case logrus.ErrorLevel:
		return log.SeverityError
	case logrus.FatalLevel:
		return log.SeverityFatal
	case logrus.PanicLevel:
		return log.SeverityFatal4
	default:
		return log.SeverityUndefined
	}
}

func fieldsToAttributes(fields logrus.Fields) []log.KeyValue {
	if len(fields) == 0 {
		return nil
	}
	attrs := make([]log.KeyValue, 0, len(fields))
	for key, value := range fields {
		attrs = append(attrs, toKeyValue(key, value))
	}
	return attrs
}

func toKeyValue(key string, value any) log.KeyValue {
	switch v := value.(type) {
	case string:
		return log.String(key, v)
	case bool:
		return log.Bool(key, v)
	case int:
		return log.Int(key, v)
	case int64:
		return log.Int64(key, v)
	case float64:
		return log.Float64(key, v)
	case []byte:
		return log.Bytes(key, v)
	case error:
		return log.String(key, v.Error())
	default:
		return log.String(key, fmt.Sprintf("%v", v))
	}
}
