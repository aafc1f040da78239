package utilities

import (
	"fmt"
	"os"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Level string `yaml:"level"`
	Dev   bool   `yaml:"dev"`
	// File enables a daily-rotated copy of the JSON log, e.g. /var/log/buteco/api.log.
	File    string        `yaml:"file"`
	MaxAge  time.Duration `yaml:"max_age"`
	Service string        `yaml:"-"`
}

// ApplyEnv overrides fields with LOG_* variables that are set.
func (c *Config) ApplyEnv() {
	if os.Getenv("LOG_DEV") == "1" {
		c.Dev = true
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Level = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		c.File = v
	}
	if c.Level == "" {
		if c.Dev {
			c.Level = "debug"
		} else {
			c.Level = "info"
		}
	}
}

func levelFromString(l string) zapcore.Level {
	switch l {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Init initializes and returns a *zap.Logger
func Init(cfg Config) (*zap.Logger, error) {
	lvl := levelFromString(cfg.Level)
	var fields []zap.Option
	if cfg.Service != "" {
		fields = append(fields, zap.Fields(zap.String("service", cfg.Service)))
	}
	if cfg.Dev {
		c := zap.NewDevelopmentConfig()
		c.Level = zap.NewAtomicLevelAt(lvl)
		return c.Build(fields...)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	sink := zapcore.AddSync(os.Stdout)
	if cfg.File != "" {
		w, err := rotatingFile(cfg.File, cfg.MaxAge)
		if err != nil {
			return nil, err
		}
		sink = zapcore.NewMultiWriteSyncer(sink, zapcore.AddSync(w))
	}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), sink, lvl)
	opts := append([]zap.Option{zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)}, fields...)
	return zap.New(core, opts...), nil
}

func rotatingFile(path string, maxAge time.Duration) (*rotatelogs.RotateLogs, error) {
	if maxAge <= 0 {
		maxAge = 7 * 24 * time.Hour
	}
	w, err := rotatelogs.New(
		path+".%Y%m%d",
		rotatelogs.WithLinkName(path),
		rotatelogs.WithRotationTime(24*time.Hour),
		rotatelogs.WithMaxAge(maxAge),
	)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return w, nil
}
