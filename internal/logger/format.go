package logger

import (
	"fmt"

	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

// PrettyEncoder writes entries as
//
//	[INFO] [repository] document loaded - root=p1, elements=42
//
// Context added through With is not rendered; pass fields per call.
type PrettyEncoder struct {
	zapcore.Encoder
	cfg  zapcore.EncoderConfig
	pool buffer.Pool
}

// NewPrettyEncoder returns a PrettyEncoder using cfg's line ending.
func NewPrettyEncoder(cfg zapcore.EncoderConfig) zapcore.Encoder {
	return &PrettyEncoder{
		Encoder: zapcore.NewConsoleEncoder(cfg),
		cfg:     cfg,
		pool:    buffer.NewPool(),
	}
}

// Clone implements zapcore.Encoder.
func (e *PrettyEncoder) Clone() zapcore.Encoder {
	return &PrettyEncoder{Encoder: e.Encoder.Clone(), cfg: e.cfg, pool: e.pool}
}

// EncodeEntry implements zapcore.Encoder.
func (e *PrettyEncoder) EncodeEntry(entry zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	line := e.pool.Get()
	line.AppendByte('[')
	line.AppendString(entry.Level.CapitalString())
	line.AppendString("] ")
	if entry.LoggerName != "" {
		line.AppendByte('[')
		line.AppendString(entry.LoggerName)
		line.AppendString("] ")
	}
	line.AppendString(entry.Message)
	if len(fields) > 0 {
		line.AppendString(" - ")
		addFields(line, fields)
	}
	line.AppendString(e.cfg.LineEnding)
	return line, nil
}

func addFields(line *buffer.Buffer, fields []zapcore.Field) {
	enc := zapcore.NewMapObjectEncoder()
	for i, field := range fields {
		field.AddTo(enc)
		if i > 0 {
			line.AppendString(", ")
		}
		line.AppendString(field.Key)
		line.AppendByte('=')
		line.AppendString(fmt.Sprintf("%v", enc.Fields[field.Key]))
	}
}
