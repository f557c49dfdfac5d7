package logging

import (
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

type testAppender struct {
	tb      testing.TB
	encoder zapcore.Encoder
}

// NewTestAppender returns an appender that writes console lines through tb.Log, so output is
// attributed to the test that produced it.
func NewTestAppender(tb testing.TB) Appender {
	return &testAppender{tb: tb, encoder: zapcore.NewConsoleEncoder(newEncoderConfig(zapcore.CapitalLevelEncoder))}
}

func (ta *testAppender) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	ta.tb.Helper()
	buf, err := ta.encoder.EncodeEntry(entry, fields)
	if err != nil {
		return err
	}
	defer buf.Free()
	ta.tb.Log(strings.TrimSuffix(buf.String(), "\n"))
	return nil
}

func (ta *testAppender) Sync() error {
	return nil
}
