package convert

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// logFormatter renders entries as "line:col in file: message", the
// convention spec.md §5/§7 uses for the process-wide diagnostic log.
type logFormatter struct{}

func (logFormatter) Format(e *logrus.Entry) ([]byte, error) {
	var buf bytes.Buffer
	file, _ := e.Data["file"].(string)
	line, _ := e.Data["line"].(int)
	col, _ := e.Data["col"].(int)
	if file != "" {
		fmt.Fprintf(&buf, "%d:%d in %s: %s\n", line, col, file, e.Message)
	} else {
		fmt.Fprintf(&buf, "%s: %s\n", e.Level, e.Message)
	}
	return buf.Bytes(), nil
}

var (
	logMu     sync.Mutex
	logBuffer bytes.Buffer
	logger    = newLogger()
)

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(logFormatter{})
	l.SetOutput(&lockedBuffer{})
	return l
}

// lockedBuffer routes logrus writes through logMu so concurrent Convert
// calls from separate goroutines cannot interleave or corrupt the shared
// append-only buffer (spec.md §6 "process-wide diagnostic log").
type lockedBuffer struct{}

func (lockedBuffer) Write(p []byte) (int, error) {
	logMu.Lock()
	defer logMu.Unlock()
	return logBuffer.Write(p)
}

// GetLog returns everything logged so far, the Go-native analog of
// spec.md §6's `get_log` C ABI entry point.
func GetLog() string {
	logMu.Lock()
	defer logMu.Unlock()
	return logBuffer.String()
}

// ClearLog empties the process-wide log buffer (`clear_log`).
func ClearLog() {
	logMu.Lock()
	defer logMu.Unlock()
	logBuffer.Reset()
}
