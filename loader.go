package patchload

import (
	"fmt"
	"io"
	"os"

	"k8s.io/klog/v2"
)

// Loader runs the whole sequence: allocate, load, patch, transfer.
type Loader struct {
	cfg Config
	in  io.Reader
	out io.Writer

	// Replaced in tests so the sequence can finish without executing
	// anything.
	transfer func(*Buffer) error
}

type Option func(*Loader)

// WithInput sets the stream replacement bytes are read from. The default is
// standard input.
func WithInput(r io.Reader) Option {
	return func(l *Loader) {
		l.in = r
	}
}

// WithOutput sets where diagnostics are written. The default is standard
// output.
func WithOutput(w io.Writer) Option {
	return func(l *Loader) {
		l.out = w
	}
}

// New returns a Loader for cfg.
func New(cfg Config, opts ...Option) (*Loader, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	l := &Loader{
		cfg:      cfg,
		in:       os.Stdin,
		out:      os.Stdout,
		transfer: Transfer,
	}
	for _, opt := range opts {
		opt(l)
	}

	return l, nil
}

// Prepare allocates the buffer, loads the payload and patches it. The
// returned offsets are the patch sites, possibly none.
func (l *Loader) Prepare() (*Buffer, []int, error) {
	buf, err := NewBuffer(l.cfg.Capacity)
	if err != nil {
		return nil, nil, err
	}

	_, err = buf.LoadFile(l.cfg.Payload)
	if err != nil {
		buf.Free()
		return nil, nil, fmt.Errorf("unable to load payload: %w", err)
	}

	p := Patcher{
		Pattern:   []byte(Placeholder),
		Policy:    l.cfg.Policy,
		Input:     l.in,
		Diag:      l.out,
		PatchAll:  l.cfg.PatchAll,
		ShortRead: l.cfg.ShortRead,
	}
	patched, err := p.Apply(buf.Bytes())
	if err != nil {
		buf.Free()
		return nil, nil, fmt.Errorf("unable to patch payload: %w", err)
	}

	if l.cfg.Seal {
		err = buf.Seal()
		if err != nil {
			buf.Free()
			return nil, nil, err
		}
	}

	return buf, patched, nil
}

// Run prepares the buffer and jumps into it. It only returns on failure.
func (l *Loader) Run() error {
	buf, patched, err := l.Prepare()
	if err != nil {
		return err
	}

	klog.V(1).Infof("Payload ready, %d bytes, %d patch site(s), policy %v", buf.Len(), len(patched), l.cfg.Policy)

	// Never freed: after a successful transfer the payload owns it.
	return l.transfer(buf)
}
