// Package instance keeps a single primary tiler per user session. The first
// process to claim the channel listens on a unix socket; later launches
// forward their argument line to it and exit.
package instance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/adrg/xdg"
	"github.com/gofrs/flock"
	"go.uber.org/zap"
)

// ErrForwarded is returned by Claim when another process is already primary
// and the payload was handed to it. The caller should exit successfully.
var ErrForwarded = errors.New("forwarded to running instance")

// ErrPrimaryRunning is returned by an exclusive Claim when another process
// already holds the channel. Nothing is sent to it.
var ErrPrimaryRunning = errors.New("another instance is already running")

const (
	DefaultName         = "tiler"
	DefaultProbeTimeout = 100 * time.Millisecond
	DefaultReadTimeout  = 5 * time.Second

	lockRetry   = 25 * time.Millisecond
	acceptRetry = 50 * time.Millisecond
)

// Options locate the channel and bound its I/O.
type Options struct {
	// Name is the channel name shared by every instance of the program.
	Name string
	// Dir overrides the socket directory. Empty means
	// $XDG_RUNTIME_DIR/tiler.
	Dir string
	// ProbeTimeout bounds the connect attempt used to detect a primary.
	ProbeTimeout time.Duration
	// ReadTimeout bounds how long the primary waits for one payload.
	ReadTimeout time.Duration
	// Exclusive makes Claim fail with ErrPrimaryRunning instead of
	// forwarding. A running primary is detected through the lock file, so
	// it never sees a connection.
	Exclusive bool
}

func (o Options) withDefaults() Options {
	if o.Name == "" {
		o.Name = DefaultName
	}
	if o.ProbeTimeout <= 0 {
		o.ProbeTimeout = DefaultProbeTimeout
	}
	if o.ReadTimeout <= 0 {
		o.ReadTimeout = DefaultReadTimeout
	}
	return o
}

// SocketPath returns the socket location, creating its directory.
func (o Options) SocketPath() (string, error) {
	o = o.withDefaults()
	file := o.Name + ".sock"
	if o.Dir == "" {
		path, err := xdg.RuntimeFile(filepath.Join("tiler", file))
		if err != nil {
			return "", fmt.Errorf("resolve runtime dir: %w", err)
		}
		return path, nil
	}
	if err := os.MkdirAll(o.Dir, 0o700); err != nil {
		return "", fmt.Errorf("create socket dir: %w", err)
	}
	return filepath.Join(o.Dir, file), nil
}

// Primary is the listening side of the channel.
type Primary struct {
	ln          net.Listener
	lock        *flock.Flock
	path        string
	readTimeout time.Duration
	log         *zap.Logger
	closeOnce   sync.Once
}

// Claim makes this process the primary or, if one is already listening,
// sends payload to it and returns ErrForwarded. A failed connect is the
// signal that no primary exists; any other client-side fault is returned.
func Claim(ctx context.Context, opts Options, payload string, log *zap.Logger) (*Primary, error) {
	opts = opts.withDefaults()
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("instance")

	path, err := opts.SocketPath()
	if err != nil {
		return nil, err
	}

	lock := flock.New(path + ".lock")
	if opts.Exclusive {
		locked, err := lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("lock %s: %w", lock.Path(), err)
		}
		if !locked {
			return nil, ErrPrimaryRunning
		}
		return listen(path, lock, opts, log)
	}
	for {
		if conn, ok := probe(path, opts.ProbeTimeout); ok {
			if err := forward(conn, payload, opts.ReadTimeout); err != nil {
				return nil, err
			}
			log.Debug("payload forwarded", zap.String("socket", path))
			return nil, ErrForwarded
		}

		locked, err := lock.TryLock()
		if err != nil {
			return nil, fmt.Errorf("lock %s: %w", lock.Path(), err)
		}
		if locked {
			break
		}
		// Another process holds the lock and is about to listen.
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockRetry):
		}
	}

	return listen(path, lock, opts, log)
}

// listen replaces any stale socket and starts listening. The caller holds
// lock; it is released on failure.
func listen(path string, lock *flock.Flock, opts Options, log *zap.Logger) (*Primary, error) {
	// Holding the lock means no live primary owns the socket file.
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		_ = lock.Unlock()
		return nil, fmt.Errorf("remove stale socket: %w", err)
	}
	ln, err := net.Listen("unix", path)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("listen on %s: %w", path, err)
	}
	log.Info("primary instance", zap.String("socket", path))
	return &Primary{ln: ln, lock: lock, path: path, readTimeout: opts.ReadTimeout, log: log}, nil
}

// Send forwards payload to a running primary. It fails if there is none.
func Send(opts Options, payload string) error {
	opts = opts.withDefaults()
	path, err := opts.SocketPath()
	if err != nil {
		return err
	}
	conn, ok := probe(path, opts.ProbeTimeout)
	if !ok {
		return fmt.Errorf("no running instance at %s", path)
	}
	return forward(conn, payload, opts.ReadTimeout)
}

func probe(path string, timeout time.Duration) (net.Conn, bool) {
	conn, err := net.DialTimeout("unix", path, timeout)
	if err != nil {
		return nil, false
	}
	return conn, true
}

func forward(conn net.Conn, payload string, timeout time.Duration) error {
	defer conn.Close()
	if err := conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	if _, err := io.WriteString(conn, payload); err != nil {
		return fmt.Errorf("forward to running instance: %w", err)
	}
	return nil
}

// Path is the socket path the primary listens on.
func (p *Primary) Path() string { return p.path }

// Serve accepts connections one at a time until ctx is cancelled or the
// primary is closed. Each connection is read to EOF and its payload passed
// to dispatch. Faults on a single connection are logged and skipped.
func (p *Primary) Serve(ctx context.Context, dispatch func(payload string)) error {
	stop := context.AfterFunc(ctx, func() { _ = p.ln.Close() })
	defer stop()

	for {
		conn, err := p.ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			p.log.Warn("accept failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(acceptRetry):
			}
			continue
		}
		payload, err := p.read(conn)
		if err != nil {
			p.log.Warn("dropping forwarded command", zap.Error(err))
			continue
		}
		p.log.Debug("command received", zap.String("payload", payload))
		dispatch(payload)
	}
}

func (p *Primary) read(conn net.Conn) (string, error) {
	defer conn.Close()
	if err := conn.SetReadDeadline(time.Now().Add(p.readTimeout)); err != nil {
		return "", fmt.Errorf("set read deadline: %w", err)
	}
	data, err := io.ReadAll(conn)
	if err != nil {
		return "", fmt.Errorf("read payload: %w", err)
	}
	if !utf8.Valid(data) {
		p.log.Warn("payload is not valid UTF-8, replacing invalid bytes")
		return strings.ToValidUTF8(string(data), "�"), nil
	}
	return string(data), nil
}

// Close stops listening, removes the socket and releases the lock.
func (p *Primary) Close() error {
	var err error
	p.closeOnce.Do(func() {
		if cerr := p.ln.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) {
			err = cerr
		}
		if rerr := os.Remove(p.path); rerr != nil && !errors.Is(rerr, os.ErrNotExist) && err == nil {
			err = rerr
		}
		if uerr := p.lock.Unlock(); uerr != nil && err == nil {
			err = uerr
		}
	})
	return err
}
