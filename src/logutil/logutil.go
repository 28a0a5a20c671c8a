package logutil

import (
	"fmt"
	"io"
	"log"
	"os"
)

const (
	LogFileName  = "zoom_follow_debug.log"
	maxSizeBytes = 10 * 1024 * 1024 // 10 MB
	maxArchives  = 3
)

// Setup routes the standard logger. With file logging enabled it writes to
// LogFileName with size-based rotation; otherwise output goes to stderr when
// verbose, or is discarded.
func Setup(enableFileLogging, verbose bool) {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if enableFileLogging {
		w, err := NewRotatingWriter(LogFileName, maxSizeBytes, maxArchives)
		if err == nil {
			log.SetOutput(w)
			return
		}
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
	}
	if verbose {
		log.SetOutput(os.Stderr)
		return
	}
	log.SetOutput(io.Discard)
}

// RotatingWriter appends to a file and rotates it to path.1..path.N once it
// would grow past maxSize.
type RotatingWriter struct {
	path     string
	maxSize  int64
	archives int
	f        *os.File
}

func NewRotatingWriter(path string, maxSize int64, archives int) (*RotatingWriter, error) {
	w := &RotatingWriter{path: path, maxSize: maxSize, archives: archives}
	w.rotateIfNeeded(0)
	if err := w.open(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *RotatingWriter) Write(p []byte) (int, error) {
	if st, err := w.f.Stat(); err == nil && st.Size()+int64(len(p)) > w.maxSize {
		_ = w.f.Close()
		w.rotateIfNeeded(int64(len(p)))
		if err := w.open(); err != nil {
			return 0, err
		}
	}
	return w.f.Write(p)
}

func (w *RotatingWriter) Close() error { return w.f.Close() }

func (w *RotatingWriter) open() error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		return err
	}
	w.f = f
	return nil
}

// rotateIfNeeded shifts path -> path.1 -> ... -> path.N, dropping the oldest,
// when the base file plus pending bytes exceeds maxSize.
func (w *RotatingWriter) rotateIfNeeded(pending int64) {
	st, err := os.Stat(w.path)
	if err != nil || st.Size()+pending <= w.maxSize {
		return
	}
	_ = os.Remove(w.archiveName(w.archives))
	for i := w.archives - 1; i >= 1; i-- {
		_ = os.Rename(w.archiveName(i), w.archiveName(i+1))
	}
	_ = os.Rename(w.path, w.archiveName(1))
}

func (w *RotatingWriter) archiveName(n int) string { return fmt.Sprintf("%s.%d", w.path, n) }
