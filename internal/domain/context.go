package domain

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
)

// StatusFileName is the per-test-case status file inside the work
// directory.
const StatusFileName = ".vsp-status.json"

// Context is the per-test-case bag of paths and identifiers plus the
// log sink. It is built fresh for every run and never persisted.
type Context struct {
	TestRoot   string
	CaseID     string
	TestDir    string
	WorkRoot   string
	WorkDir    string
	StatusFile string
	Log        *LogBuffer
}

// NewContext derives all per-case paths from the roots and the case
// identifier. The work directory is deterministic so repeated
// invocations reuse the same location.
func NewContext(testRoot, workRoot, caseID string, echo io.Writer) *Context {
	workDir := filepath.Join(workRoot, filepath.FromSlash(caseID))
	return &Context{
		TestRoot:   testRoot,
		CaseID:     caseID,
		TestDir:    filepath.Join(testRoot, filepath.FromSlash(caseID)),
		WorkRoot:   workRoot,
		WorkDir:    workDir,
		StatusFile: filepath.Join(workDir, StatusFileName),
		Log:        NewLogBuffer(echo),
	}
}

// LogBuffer captures the per-test-case transcript and mirrors every
// line to a process-lifetime sink, so the console shows live progress
// while the record keeps a durable copy.
type LogBuffer struct {
	mu   sync.Mutex
	buf  bytes.Buffer
	echo io.Writer
}

// NewLogBuffer returns a buffer mirroring to echo. A nil echo disables
// mirroring.
func NewLogBuffer(echo io.Writer) *LogBuffer {
	return &LogBuffer{echo: echo}
}

// Seed preloads the buffer with the log text of a previously persisted
// record, so new lines append to the existing transcript.
func (l *LogBuffer) Seed(text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buf.Reset()
	l.buf.WriteString(text)
}

// Printf appends a formatted line to the transcript.
func (l *LogBuffer) Printf(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buf.WriteString(line)
	if l.echo != nil {
		io.WriteString(l.echo, line)
	}
}

// Write implements io.Writer so testers can use the buffer directly.
func (l *LogBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buf.Write(p)
	if l.echo != nil {
		l.echo.Write(p)
	}
	return len(p), nil
}

// String returns the accumulated transcript.
func (l *LogBuffer) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.String()
}
