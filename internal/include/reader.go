package include

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"unicode/utf8"

	"docshift/internal/heading"

	"go.uber.org/zap"
)

var (
	ErrNotFound    = errors.New("file not found")
	ErrInvalidUTF8 = errors.New("invalid utf-8")
)

// Status names the outcome of a read.
type Status string

const (
	StatusOK        Status = "ok"
	StatusNotFound  Status = "not_found"
	StatusReadError Status = "read_error"
)

// Result is the outcome of including one file. Err is nil only for StatusOK.
type Result struct {
	Path     string
	Status   Status
	Source   []byte // raw file bytes, nil unless the read succeeded
	Content  string // shifted content, set only for StatusOK
	Headings int
	Err      error
}

// String formats the result as the text that is embedded in the host document.
func (r Result) String() string {
	switch r.Status {
	case StatusOK:
		return fmt.Sprintf("<!-- Content included and converted from %s -->\n\n", r.Path) + r.Content
	case StatusNotFound:
		return fmt.Sprintf("<!-- Error: File %s not found -->", r.Path)
	default:
		return fmt.Sprintf("<!-- Error processing %s: %s -->", r.Path, errorMessage(r.Err))
	}
}

// Recorder receives every result a Reader produces.
type Recorder interface {
	Record(ctx context.Context, r Result) error
}

// Reader includes files. The zero value is ready to use.
type Reader struct {
	Logger   *zap.Logger
	Recorder Recorder
}

// NewReader creates a reader that logs through logger and reports results to rec.
// Either may be nil.
func NewReader(logger *zap.Logger, rec Recorder) *Reader {
	return &Reader{Logger: logger, Recorder: rec}
}

// Read loads path, shifts its headings and classifies any failure.
func (rd *Reader) Read(ctx context.Context, path string) Result {
	res := read(path)

	log := rd.logger()
	switch res.Status {
	case StatusOK:
		log.Debug("Included file", zap.String("path", path), zap.Int("headings", res.Headings), zap.Int("bytes", len(res.Source)))
	case StatusNotFound:
		log.Info("Include target not found", zap.String("path", path))
	default:
		log.Info("Include target unreadable", zap.String("path", path), zap.Error(res.Err))
	}

	if rd.Recorder != nil {
		if err := rd.Recorder.Record(ctx, res); err != nil {
			log.Warn("Failed to record inclusion", zap.String("path", path), zap.Error(err))
		}
	}
	return res
}

// IncludeAndConvert returns the embeddable text for path. It never fails;
// problems are reported as HTML comments in the returned text.
func (rd *Reader) IncludeAndConvert(ctx context.Context, path string) string {
	return rd.Read(ctx, path).String()
}

func (rd *Reader) logger() *zap.Logger {
	if rd == nil || rd.Logger == nil {
		return zap.NewNop()
	}
	return rd.Logger
}

// Read is Reader.Read on a zero Reader.
func Read(path string) Result {
	return read(path)
}

// IncludeAndConvert is Reader.IncludeAndConvert on a zero Reader.
func IncludeAndConvert(path string) string {
	return read(path).String()
}

func read(path string) Result {
	target := statPath(path)
	if _, err := os.Stat(target); err != nil {
		if isMissing(err) {
			return Result{Path: path, Status: StatusNotFound, Err: fmt.Errorf("%s: %w", path, ErrNotFound)}
		}
		return Result{Path: path, Status: StatusReadError, Err: err}
	}

	data, err := os.ReadFile(target)
	if err != nil {
		return Result{Path: path, Status: StatusReadError, Err: err}
	}
	if !utf8.Valid(data) {
		return Result{
			Path:   path,
			Status: StatusReadError,
			Err:    fmt.Errorf("%w: byte %d", ErrInvalidUTF8, invalidOffset(data)),
		}
	}

	content := string(data)
	return Result{
		Path:     path,
		Status:   StatusOK,
		Source:   data,
		Content:  heading.Shift(content),
		Headings: heading.Count(content),
	}
}

// statPath normalises path the way pathlib does before touching the disk:
// repeated separators, "." components and trailing separators drop out,
// ".." stays for the OS to resolve, and an empty path means ".".
// Markers keep the caller's spelling.
func statPath(path string) string {
	slashed := filepath.ToSlash(path)

	var kept []string
	for _, part := range strings.Split(slashed, "/") {
		if part != "" && part != "." {
			kept = append(kept, part)
		}
	}

	joined := strings.Join(kept, "/")
	if strings.HasPrefix(slashed, "/") {
		joined = "/" + joined
	}
	if joined == "" {
		return "."
	}
	return filepath.FromSlash(joined)
}

// isMissing reports whether a stat error means there is nothing at the path.
func isMissing(err error) bool {
	return errors.Is(err, fs.ErrNotExist) ||
		errors.Is(err, syscall.ENOTDIR) ||
		errors.Is(err, syscall.ELOOP)
}

func invalidOffset(data []byte) int {
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return len(data)
}

func errorMessage(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
