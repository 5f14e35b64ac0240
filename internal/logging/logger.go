// Package logging configures the process-wide logrus instance used by
// every bridge host binary: a custom formatter tagging each line with
// the client ID driving it, and optional rotation to disk via
// lumberjack.
package logging

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	setupOnce sync.Once
	writerMu  sync.Mutex
	logWriter *lumberjack.Logger
)

// Formatter renders log lines as:
// [2026-07-30 10:04:04] [info ] [abcd1234] [router.go:118] message key=value
type Formatter struct{}

// fieldOrder controls which structured fields print, and in what order.
var fieldOrder = []string{"scheme", "route", "seq", "status", "latency", "error"}

func (f *Formatter) Format(entry *log.Entry) ([]byte, error) {
	var buf *bytes.Buffer
	if entry.Buffer != nil {
		buf = entry.Buffer
	} else {
		buf = &bytes.Buffer{}
	}

	timestamp := entry.Time.Format("2006-01-02 15:04:05")
	message := strings.TrimRight(entry.Message, "\r\n")

	client := "--------"
	if id, ok := entry.Data["client_id"].(string); ok && id != "" {
		client = id
	}

	level := entry.Level.String()
	if level == "warning" {
		level = "warn"
	}
	levelStr := fmt.Sprintf("%-5s", level)

	var fieldsStr string
	var fields []string
	for _, k := range fieldOrder {
		if v, ok := entry.Data[k]; ok {
			fields = append(fields, fmt.Sprintf("%s=%v", k, v))
		}
	}
	if len(fields) > 0 {
		fieldsStr = " " + strings.Join(fields, " ")
	}

	var line string
	if entry.Caller != nil {
		line = fmt.Sprintf("[%s] [%s] [%s] [%s:%d] %s%s\n", timestamp, levelStr, client, filepath.Base(entry.Caller.File), entry.Caller.Line, message, fieldsStr)
	} else {
		line = fmt.Sprintf("[%s] [%s] [%s] %s%s\n", timestamp, levelStr, client, message, fieldsStr)
	}
	buf.WriteString(line)
	return buf.Bytes(), nil
}

// Setup installs the formatter and caller reporting on the standard
// logrus logger. Safe to call more than once; it runs only the first
// time.
func Setup() {
	setupOnce.Do(func() {
		log.SetOutput(os.Stdout)
		log.SetReportCaller(true)
		log.SetFormatter(&Formatter{})
		log.RegisterExitHandler(closeOutputs)
	})
}

// ToFile switches the logger's output to a rotating file at path,
// keeping up to maxSizeMB per file before rotation. Passing an empty
// path reverts to stdout.
func ToFile(path string, maxSizeMB int) error {
	Setup()

	writerMu.Lock()
	defer writerMu.Unlock()

	if logWriter != nil {
		_ = logWriter.Close()
		logWriter = nil
	}

	if path == "" {
		log.SetOutput(os.Stdout)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("logging: failed to create log directory: %w", err)
	}
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	logWriter = &lumberjack.Logger{
		Filename: path,
		MaxSize:  maxSizeMB,
	}
	log.SetOutput(logWriter)
	return nil
}

func closeOutputs() {
	writerMu.Lock()
	defer writerMu.Unlock()
	if logWriter != nil {
		_ = logWriter.Close()
		logWriter = nil
	}
}

// WithClient returns a logrus entry pre-tagged with client_id, the
// field Formatter prints in place of "--------".
func WithClient(clientID string) *log.Entry {
	return log.WithField("client_id", clientID)
}
