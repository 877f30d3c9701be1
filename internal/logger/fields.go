package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldFile is the structured log field key for the résumé display name.
	FieldFile = "resume_file"
	// FieldMIME is the structured log field key for the résumé declared type.
	FieldMIME = "resume_mime"
	// FieldRequestID is the structured log field key for the analysis request id.
	FieldRequestID = "request_id"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields safely attaches the provided fields to the logger.
// A nil logger is replaced with a no-op one.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// FileFields returns the fields describing a résumé file.
func FileFields(name, mimeType string) []zap.Field {
	return StringFields(
		StringField{Key: FieldFile, Value: name},
		StringField{Key: FieldMIME, Value: mimeType},
	)
}

func WithFileFields(logger *zap.Logger, name, mimeType string) *zap.Logger {
	return WithFields(logger, FileFields(name, mimeType)...)
}
