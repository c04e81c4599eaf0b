package helpers

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/yosssi/gohtml"

	"sjsage522/vesselschedule/logger"
)

// DiagnosticsWriter defines the interface for failure-artifact sinks
type DiagnosticsWriter interface {
	Enabled() bool
	LogError(terminal string, err error)
	DumpHTML(terminal, html string) string
	ScreenshotPath(terminal string) string
}

// Diagnostics writes operator-facing artifacts for failed adapter runs: an
// append-only error log, formatted HTML dumps and screenshot paths. Every method is
// best-effort; a failure here is logged and never returned.
type Diagnostics struct {
	dir string
	mu  sync.Mutex
	now func() time.Time
}

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// NewDiagnostics creates a diagnostics sink rooted at dir. An empty dir disables it.
func NewDiagnostics(dir string) *Diagnostics {
	return &Diagnostics{dir: dir, now: time.Now}
}

// Enabled reports whether artifacts are written at all
func (d *Diagnostics) Enabled() bool {
	return d != nil && d.dir != ""
}

// LogError appends an error line with terminal name and timestamp
func (d *Diagnostics) LogError(terminal string, err error) {
	if !d.Enabled() || err == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if mkErr := os.MkdirAll(d.dir, 0o755); mkErr != nil {
		logger.Warn("diagnostics dir unavailable: %v", mkErr)
		return
	}
	f, fileErr := os.OpenFile(filepath.Join(d.dir, "errors.log"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if fileErr != nil {
		logger.Warn("failed to open error log: %v", fileErr)
		return
	}
	defer f.Close()

	timestamp := d.now().Format("2006-01-02 15:04:05")
	fmt.Fprintf(f, "[%s] [%s] %s\n", timestamp, terminal, strings.ReplaceAll(err.Error(), "\n", " "))
}

// DumpHTML writes an indented copy of the page source and returns its path, or ""
func (d *Diagnostics) DumpHTML(terminal, html string) string {
	if !d.Enabled() || html == "" {
		return ""
	}
	path := d.artifactPath(terminal, "html")
	if path == "" {
		return ""
	}
	if err := os.WriteFile(path, []byte(gohtml.Format(html)), 0o644); err != nil {
		logger.Warn("failed to write html dump: %v", err)
		return ""
	}
	return path
}

// ScreenshotPath returns a fresh path for a screenshot, or "" when disabled
func (d *Diagnostics) ScreenshotPath(terminal string) string {
	if !d.Enabled() {
		return ""
	}
	return d.artifactPath(terminal, "png")
}

func (d *Diagnostics) artifactPath(terminal, ext string) string {
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		logger.Warn("diagnostics dir unavailable: %v", err)
		return ""
	}
	name := fmt.Sprintf("%s_%s.%s", unsafeName.ReplaceAllString(terminal, "_"), d.now().Format("20060102_150405.000"), ext)
	return filepath.Join(d.dir, name)
}
