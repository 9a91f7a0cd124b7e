package app

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

func newAttachmentID() string { return uuid.NewString() }

// MaxAttachmentSize is the per-file ceiling for ingested attachments.
const MaxAttachmentSize = 20 << 20

// supportedMIMETypes is the fixed allow-list of attachment types the
// model backends accept.
var supportedMIMETypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
	"image/heic": true,
	"image/heif": true,

	"audio/wav":  true,
	"audio/mp3":  true,
	"audio/mpeg": true,
	"audio/aiff": true,
	"audio/aac":  true,
	"audio/ogg":  true,
	"audio/flac": true,

	"video/mp4":       true,
	"video/mpeg":      true,
	"video/mov":       true,
	"video/quicktime": true,
	"video/avi":       true,
	"video/x-flv":     true,
	"video/mpg":       true,
	"video/webm":      true,
	"video/wmv":       true,
	"video/3gpp":      true,

	"application/pdf": true,
	"application/rtf": true,
	"text/rtf":        true,
	"text/plain":      true,
	"text/csv":        true,

	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   true,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         true,
}

// SupportedMIMEType reports whether the ingestor accepts files of the
// given media type.
func SupportedMIMEType(mimeType string) bool {
	return supportedMIMETypes[strings.ToLower(strings.TrimSpace(mimeType))]
}

// File is a selected but not yet ingested file. Open must return a fresh
// reader each call; the ingestor closes what it opens.
type File struct {
	Name     string
	MIMEType string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

// FileFromPath builds a File for a path on disk, sniffing the media type
// from the extension.
func FileFromPath(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, err
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("%s is a directory", path)
	}
	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	return File{
		Name:     filepath.Base(path),
		MIMEType: strings.TrimSpace(mimeType),
		Size:     info.Size(),
		Open:     func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}

type ingestCmd struct {
	batch string
	files []File
}

// ingestor is the attachment worker. It runs as its own goroutine pair:
// a command loop plus one goroutine per in-flight file. Results come out
// of Events as reducer events tagged with the batch id. Terminate stops
// the worker for good; a fresh ingestor must be created afterwards.
type ingestor struct {
	cmds   chan ingestCmd
	events chan Event
	quit   chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
	log    *Logger
}

func newIngestor(log *Logger) *ingestor {
	w := &ingestor{
		cmds:   make(chan ingestCmd, 4),
		events: make(chan Event, 64),
		quit:   make(chan struct{}),
		log:    log,
	}
	go w.run()
	return w
}

// Events yields ingestion events until the worker is terminated, then
// closes.
func (w *ingestor) Events() <-chan Event { return w.events }

// Process enqueues a batch of files. Files are processed concurrently;
// completion order is arrival order, not selection order.
func (w *ingestor) Process(batch string, files []File) {
	select {
	case w.cmds <- ingestCmd{batch: batch, files: files}:
	case <-w.quit:
	}
}

// Terminate shuts the worker down. In-flight files are abandoned and no
// further events are delivered once Events closes.
func (w *ingestor) Terminate() {
	w.once.Do(func() { close(w.quit) })
}

func (w *ingestor) run() {
	for {
		select {
		case <-w.quit:
			w.wg.Wait()
			close(w.events)
			return
		case cmd := <-w.cmds:
			for _, f := range cmd.files {
				w.wg.Add(1)
				go func(f File) {
					defer w.wg.Done()
					w.processFile(cmd.batch, f)
				}(f)
			}
		}
	}
}

func (w *ingestor) emit(ev Event) {
	select {
	case w.events <- ev:
	case <-w.quit:
	}
}

func (w *ingestor) fail(batch string, f File, err error) {
	ierr := &IngestError{Name: f.Name, Err: err}
	w.log.Error("attachment ingestion failed", map[string]any{"file": f.Name, "error": err.Error()})
	w.emit(ingestFileFailed{Batch: batch, Name: f.Name, Msg: ierr.Error()})
}

func (w *ingestor) processFile(batch string, f File) {
	if !SupportedMIMEType(f.MIMEType) {
		w.fail(batch, f, fmt.Errorf("unsupported file type %q", f.MIMEType))
		return
	}
	if f.Size > MaxAttachmentSize {
		w.fail(batch, f, fmt.Errorf("file exceeds the %d MB limit", MaxAttachmentSize>>20))
		return
	}
	rc, err := f.Open()
	if err != nil {
		w.fail(batch, f, err)
		return
	}
	defer rc.Close()

	var buf bytes.Buffer
	chunk := make([]byte, 64<<10)
	var read int64
	for {
		n, rerr := rc.Read(chunk)
		if n > 0 {
			read += int64(n)
			if read > MaxAttachmentSize {
				w.fail(batch, f, fmt.Errorf("file exceeds the %d MB limit", MaxAttachmentSize>>20))
				return
			}
			buf.Write(chunk[:n])
			if f.Size > 0 {
				pct := int(read * 100 / f.Size)
				if pct > 99 {
					pct = 99
				}
				w.emit(ingestProgress{Batch: batch, Name: f.Name, Progress: pct})
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			w.fail(batch, f, rerr)
			return
		}
	}

	payload := encodePayload(buf.Bytes())
	w.emit(ingestProgress{Batch: batch, Name: f.Name, Progress: 100})
	w.emit(ingestFileDone{Batch: batch, Attachment: Attachment{
		ID:       newAttachmentID(),
		Name:     f.Name,
		MIMEType: f.MIMEType,
		Payload:  payload,
	}})
}

// encodePayload base64-encodes raw bytes. Input that is already a data
// URI has its header stripped instead of being double-encoded.
func encodePayload(raw []byte) string {
	if bytes.HasPrefix(raw, []byte("data:")) {
		if i := bytes.IndexByte(raw, ','); i >= 0 {
			return string(raw[i+1:])
		}
	}
	return base64.StdEncoding.EncodeToString(raw)
}
