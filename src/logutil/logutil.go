package logutil

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
)

const (
	LogFileName  = "overlay_debug.log"
	maxSizeBytes = 10 * 1024 * 1024 // 10 MB
	maxArchives  = 3
)

// Setup enables file logging with basic size-based rotation (10MB, max 3 files)
// in the working directory. When disabled, logs are discarded.
func Setup(enableFileLogging bool) {
	SetupIn(enableFileLogging, ".")
}

// SetupIn is Setup with the log file placed in dir.
func SetupIn(enableFileLogging bool, dir string) {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if !enableFileLogging {
		log.SetOutput(io.Discard)
		return
	}
	w, err := newRotatingWriter(filepath.Join(dir, LogFileName), maxSizeBytes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		return
	}
	log.SetOutput(w)
}

// rotatingWriter appends to path and rotates it to path.1..path.3 once it
// would grow past limit.
type rotatingWriter struct {
	mu    sync.Mutex
	path  string
	limit int64
	f     *os.File
}

func newRotatingWriter(path string, limit int64) (*rotatingWriter, error) {
	w := &rotatingWriter{path: path, limit: limit}
	rotate(path, limit)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, err
	}
	w.f = f
	return w, nil
}

func (w *rotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if st, err := w.f.Stat(); err == nil && st.Size()+int64(len(p)) > w.limit {
		_ = w.f.Close()
		rotate(w.path, 0)
		nf, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return 0, err
		}
		w.f = nf
	}
	return w.f.Write(p)
}

// rotate shifts path to path.1, path.1 to path.2 and so on when path is
// larger than limit. The oldest archive is discarded.
func rotate(path string, limit int64) {
	st, err := os.Stat(path)
	if err != nil || st.Size() <= limit {
		return
	}
	_ = os.Remove(archiveName(path, maxArchives))
	for i := maxArchives - 1; i >= 1; i-- {
		_ = os.Rename(archiveName(path, i), archiveName(path, i+1))
	}
	_ = os.Rename(path, archiveName(path, 1))
}

func archiveName(path string, n int) string { return fmt.Sprintf("%s.%d", path, n) }

// RedactKey masks an API key, leaving first/last 4 chars: xxxx...yyyy
func RedactKey(k string) string {
	if len(k) <= 8 {
		return "********"
	}
	return fmt.Sprintf("%s...%s", k[:4], k[len(k)-4:])
}
