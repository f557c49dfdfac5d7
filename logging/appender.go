package logging

import (
	"io"
	"os"

	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Appender is an output for log entries. This is a subset of the `zapcore.Core` interface, so
// any zap core (e.g. the test observer) can be used as an appender.
type Appender interface {
	// Write submits a structured log entry to the appender for logging.
	Write(zapcore.Entry, []zapcore.Field) error
	// Sync is for signaling that any buffered logs to `Write` should be flushed. E.g: at shutdown.
	Sync() error
}

// ConsoleAppender will create human readable lines from log events and write them to the desired
// output sync. E.g: stdout or a file.
type ConsoleAppender struct {
	io.Writer
	encoder zapcore.Encoder
}

// NewStdoutAppender creates a new appender that writes colored, human readable lines to stdout.
func NewStdoutAppender() ConsoleAppender {
	return NewWriterAppender(os.Stdout, zapcore.CapitalColorLevelEncoder)
}

// NewWriterAppender creates a new appender that writes human readable lines to the given writer.
// Writes are serialized, so the writer need not be safe for concurrent use.
func NewWriterAppender(writer io.Writer, levelEncoder zapcore.LevelEncoder) ConsoleAppender {
	return ConsoleAppender{zapcore.Lock(zapcore.AddSync(writer)), zapcore.NewConsoleEncoder(newEncoderConfig(levelEncoder))}
}

// Write outputs the log entry to the underlying stream.
func (appender ConsoleAppender) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	buf, err := appender.encoder.EncodeEntry(entry, fields)
	if err != nil {
		return err
	}
	defer buf.Free()

	_, err = appender.Writer.Write(buf.Bytes())
	return err
}

// Sync is a no-op.
func (appender ConsoleAppender) Sync() error {
	return nil
}

// FileAppender writes human readable lines to a size-rotated log file.
type FileAppender struct {
	ConsoleAppender
	file *lumberjack.Logger
}

// NewFileAppender creates an appender writing to filename. The file is rotated at 100MB and two
// compressed backups are kept.
func NewFileAppender(filename string) *FileAppender {
	file := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    100,
		MaxBackups: 2,
		Compress:   true,
	}
	return &FileAppender{
		ConsoleAppender: NewWriterAppender(file, zapcore.CapitalLevelEncoder),
		file:            file,
	}
}

// Close closes the underlying file.
func (appender *FileAppender) Close() error {
	return appender.file.Close()
}
