package logging

import (
	"io"
	"log/slog"
	"os"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

// New returns a JSON line logger writing to w at info level. Records are
// encoded by zap with "ts" rendered in loc as RFC3339Nano and lowercase level
// names; callers use the slog API.
func New(w io.Writer, loc *time.Location) *slog.Logger {
	return slog.New(zapslog.NewHandler(newCore(w, loc, zapcore.InfoLevel)))
}

func newCore(w io.Writer, loc *time.Location, lvl zapcore.LevelEnabler) zapcore.Core {
	if w == nil {
		w = os.Stdout
	}
	if loc == nil {
		loc = time.UTC
	}
	enc := zapcore.NewJSONEncoder(zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeTime: func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
			pae.AppendString(t.In(loc).Format(time.RFC3339Nano))
		},
	})
	return zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(w)), lvl)
}

// LoadLocation resolves an IANA zone name, falling back to UTC.
func LoadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Component returns a child logger tagged with the component name.
func Component(l *slog.Logger, name string) *slog.Logger {
	if l == nil {
		l = slog.Default()
	}
	return l.With(slog.String("component", name))
}

// Err is a shorthand attribute for error values.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}
