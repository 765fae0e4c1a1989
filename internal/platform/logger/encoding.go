package logger

import (
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"

	"github.com/nulzo/provider-relay/internal/cli"
)

const prettyConsoleEncoding = "console-pretty"

var registerOnce sync.Once

// registerPrettyConsole registers the colorized console encoder with zap and
// returns its encoding name.
func registerPrettyConsole() string {
	registerOnce.Do(func() {
		_ = zap.RegisterEncoder(prettyConsoleEncoding, func(cfg zapcore.EncoderConfig) (zapcore.Encoder, error) {
			return newPrettyConsoleEncoder(cfg), nil
		})
	})
	return prettyConsoleEncoding
}

// prettyConsoleEncoder wraps zap's console encoder to add syntax highlighting
// to the trailing JSON field blob.
type prettyConsoleEncoder struct {
	zapcore.Encoder
}

func newPrettyConsoleEncoder(cfg zapcore.EncoderConfig) zapcore.Encoder {
	return &prettyConsoleEncoder{
		Encoder: zapcore.NewConsoleEncoder(cfg),
	}
}

func (c *prettyConsoleEncoder) Clone() zapcore.Encoder {
	return &prettyConsoleEncoder{
		Encoder: c.Encoder.Clone(),
	}
}

func (c *prettyConsoleEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	buf, err := c.Encoder.EncodeEntry(ent, fields)
	if err != nil {
		return nil, err
	}

	logLine := buf.String()

	// The console encoder separates metadata from the JSON fields with a tab:
	// "15:04:05 INFO msg\t{json...}"
	splitIdx := strings.Index(logLine, "\t{")
	if splitIdx == -1 {
		return buf, nil
	}

	metaPart := logLine[:splitIdx+1]
	jsonPart := logLine[splitIdx+1:]

	newBuf := buffer.NewPool().Get()
	newBuf.AppendString(metaPart)
	newBuf.AppendString(cli.HighlightJSON(jsonPart))

	buf.Free()

	return newBuf, nil
}
