package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger define a interface para logging estruturado.
// A aplicação (Handler, Service, Repository) depende apenas desta interface.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error)
	Fatal(msg string, err error)
}

// ZapLogger é a implementação concreta da interface Logger sobre o zap,
// com saída JSON estruturada.
type ZapLogger struct {
	z *zap.Logger
}

// NewLogger cria o Logger no nível informado ("debug", "info", "warn", "error").
// Níveis desconhecidos caem para "info".
func NewLogger(level string) Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	cfg.EncoderConfig.MessageKey = "message"

	z, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		z = zap.NewExample()
	}
	return &ZapLogger{z: z}
}

// NewNop devolve um Logger que descarta tudo (testes).
func NewNop() Logger {
	return &ZapLogger{z: zap.NewNop()}
}

// Sync descarrega buffers pendentes; chamado no encerramento do main.
func (l *ZapLogger) Sync() error {
	return l.z.Sync()
}

func (l *ZapLogger) Debug(msg string, fields map[string]interface{}) {
	l.z.Debug(msg, toZap(fields)...)
}

func (l *ZapLogger) Info(msg string, fields map[string]interface{}) {
	l.z.Info(msg, toZap(fields)...)
}

func (l *ZapLogger) Warn(msg string, fields map[string]interface{}) {
	l.z.Warn(msg, toZap(fields)...)
}

func (l *ZapLogger) Error(msg string, err error) {
	l.z.Error(msg, zap.Error(err))
}

func (l *ZapLogger) Fatal(msg string, err error) {
	l.z.Fatal(msg, zap.Error(err))
}

func toZap(fields map[string]interface{}) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		out = append(out, zap.Any(k, v))
	}
	return out
}
