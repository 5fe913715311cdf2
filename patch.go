package patchload

import (
	"errors"
	"fmt"
	"io"

	"k8s.io/klog/v2"
)

const opcodeNOP = 0x90

// Patcher replaces placeholders in a buffer with bytes read from Input.
type Patcher struct {
	// Pattern marks the patch site. Each replacement is len(Pattern) bytes.
	Pattern []byte

	Policy Policy

	// Input supplies replacement bytes. It's read sequentially and never
	// rewound.
	Input io.Reader

	// Diag receives progress messages for the operator. May be nil.
	Diag io.Writer

	// PatchAll keeps scanning after the first match. Otherwise only the
	// leftmost placeholder is replaced.
	PatchAll bool

	ShortRead ShortRead
}

// replacementSource supplies the bytes for each patch site. The policy
// decides when the input is read, the scan doesn't care.
type replacementSource interface {
	next() ([]byte, error)
}

type eagerSource struct {
	repl []byte
}

func (s *eagerSource) next() ([]byte, error) {
	return s.repl, nil
}

type lazySource struct {
	p *Patcher
}

func (s *lazySource) next() ([]byte, error) {
	return s.p.readReplacement()
}

// Apply patches buf in place and returns the offsets that were patched in
// increasing order. Finding no placeholder is not an error.
func (p *Patcher) Apply(buf []byte) ([]int, error) {
	if len(p.Pattern) == 0 {
		return nil, fmt.Errorf("%w: empty pattern", ErrInvalidConfig)
	}

	src, err := p.source()
	if err != nil {
		return nil, err
	}

	var patched []int
	for from := 0; ; {
		offset := Find(buf, p.Pattern, from)
		if offset < 0 {
			break
		}
		p.diagf("found placeholder at offset %d\n", offset)

		repl, err := src.next()
		if err != nil {
			return patched, fmt.Errorf("replacement for offset %d: %w", offset, err)
		}

		err = patchAt(buf, offset, repl)
		if err != nil {
			return patched, err
		}
		klog.V(2).Infof("Patched % x at offset %d", repl, offset)
		patched = append(patched, offset)

		if !p.PatchAll {
			break
		}
		from = offset + 1
	}

	if len(patched) == 0 {
		klog.V(2).Infof("No placeholder %q found in %d bytes", p.Pattern, len(buf))
	}

	return patched, nil
}

func (p *Patcher) source() (replacementSource, error) {
	switch p.Policy {
	case Eager:
		repl, err := p.readReplacement()
		if err != nil {
			return nil, fmt.Errorf("replacement: %w", err)
		}
		p.diagf("replacement: % x\n", repl)
		return &eagerSource{repl: repl}, nil
	case Lazy:
		return &lazySource{p: p}, nil
	}
	return nil, fmt.Errorf("%w: unknown policy %v", ErrInvalidConfig, p.Policy)
}

// readReplacement reads one replacement from Input, blocking until it's
// complete or the input ends.
func (p *Patcher) readReplacement() ([]byte, error) {
	repl := make([]byte, len(p.Pattern))
	if p.Input == nil {
		return p.shortRead(repl, 0)
	}

	n, err := io.ReadFull(p.Input, repl)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return p.shortRead(repl, n)
		}
		return nil, err
	}

	return repl, nil
}

// shortRead resolves a replacement where only the first n bytes arrived.
func (p *Patcher) shortRead(repl []byte, n int) ([]byte, error) {
	switch p.ShortRead {
	case ShortReadZero:
		clear(repl[n:])
	case ShortReadNop:
		pad := len(repl) - n
		copy(repl[pad:], repl[:n])
		for i := 0; i < pad; i++ {
			repl[i] = opcodeNOP
		}
	default:
		return nil, fmt.Errorf("%w: got %d of %d bytes", ErrShortRead, n, len(repl))
	}

	klog.V(2).Infof("Short replacement, %d of %d bytes, filled as %v", n, len(repl), p.ShortRead)
	return repl, nil
}

func (p *Patcher) diagf(format string, args ...any) {
	if p.Diag == nil {
		return
	}
	fmt.Fprintf(p.Diag, format, args...)
}
