package texture

import (
	"fmt"
	"image"
	"io/fs"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Status is the load state of a texture path.
type Status int

const (
	Unknown Status = iota
	Pending
	Ready
	Failed
)

func (s Status) String() string {
	switch s {
	case Pending:
		return "pending"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Observer is notified once per finished load, on the thread calling Poll.
type Observer func(path string, err error)

// LoaderConfig holds loader settings.
type LoaderConfig struct {
	Workers int // concurrent decodes
	MaxSize int // largest texture side; 0 keeps the source size
}

// DefaultLoaderConfig returns default loader settings.
func DefaultLoaderConfig() LoaderConfig {
	return LoaderConfig{Workers: 4, MaxSize: 8192}
}

type result struct {
	path string
	img  *image.RGBA
	err  error
}

// Loader decodes textures in the background. Request and Poll are called from
// the render thread; decoding runs on a bounded worker group.
type Loader struct {
	fsys   fs.FS
	cfg    LoaderConfig
	log    *zap.Logger
	notify Observer

	queue  chan string
	group  errgroup.Group
	done   chan struct{}
	closed bool

	mu      sync.Mutex
	status  map[string]Status
	results []result
}

// NewLoader creates a loader reading from fsys.
func NewLoader(fsys fs.FS, cfg LoaderConfig, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultLoaderConfig().Workers
	}
	l := &Loader{
		fsys:   fsys,
		cfg:    cfg,
		log:    log,
		queue:  make(chan string, 64),
		done:   make(chan struct{}),
		status: make(map[string]Status),
	}
	l.group.SetLimit(cfg.Workers)
	go l.dispatch()
	return l
}

// SetObserver installs a callback for finished loads.
func (l *Loader) SetObserver(fn Observer) {
	l.notify = fn
}

// dispatch feeds queued paths to the worker group. It is the only caller of
// group.Go, so Close can Wait once it has returned.
func (l *Loader) dispatch() {
	defer close(l.done)
	for path := range l.queue {
		l.group.Go(func() error {
			img, err := l.load(path)
			l.mu.Lock()
			l.results = append(l.results, result{path: path, img: img, err: err})
			l.mu.Unlock()
			return nil
		})
	}
}

func (l *Loader) load(path string) (*image.RGBA, error) {
	data, err := fs.ReadFile(l.fsys, path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	img, err := Decode(data, l.cfg.MaxSize)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	FlipVertical(img)
	return img, nil
}

// Request schedules path for decoding. Repeated requests are ignored.
func (l *Loader) Request(path string) {
	if path == "" {
		return
	}
	l.mu.Lock()
	if l.closed || l.status[path] != Unknown {
		l.mu.Unlock()
		return
	}
	l.status[path] = Pending
	l.mu.Unlock()

	l.log.Debug("texture requested", zap.String("path", path))
	l.queue <- path
}

// Status returns the load state of path.
func (l *Loader) Status(path string) Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status[path]
}

// Poll hands every finished decode to upload and returns how many succeeded.
// Failed loads are logged and stay on their placeholder.
func (l *Loader) Poll(upload func(path string, img *image.RGBA)) int {
	l.mu.Lock()
	finished := l.results
	l.results = nil
	l.mu.Unlock()

	ok := 0
	for _, r := range finished {
		l.mu.Lock()
		if r.err != nil {
			l.status[r.path] = Failed
		} else {
			l.status[r.path] = Ready
		}
		l.mu.Unlock()

		if r.err != nil {
			l.log.Warn("texture load failed, keeping placeholder",
				zap.String("path", r.path),
				zap.Error(r.err),
			)
		} else {
			b := r.img.Bounds()
			l.log.Debug("texture decoded",
				zap.String("path", r.path),
				zap.Int("width", b.Dx()),
				zap.Int("height", b.Dy()),
			)
			upload(r.path, r.img)
			ok++
		}
		if l.notify != nil {
			l.notify(r.path, r.err)
		}
	}
	return ok
}

// Wait blocks until every requested texture has been decoded. Only used
// after the last Request, typically in tests and at shutdown.
func (l *Loader) Wait() {
	l.stop()
	<-l.done
	_ = l.group.Wait()
}

// Close stops accepting requests and waits for in-flight decodes.
func (l *Loader) Close() error {
	l.Wait()
	l.mu.Lock()
	l.results = nil
	l.mu.Unlock()
	return nil
}

func (l *Loader) stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.closed {
		l.closed = true
		close(l.queue)
	}
}
