package patchload

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func payloadWith(size int, sites ...int) []byte {
	buf := make([]byte, size)
	for _, off := range sites {
		copy(buf[off:], Placeholder)
	}
	return buf
}

func TestPatcher_RoundTrip(t *testing.T) {
	for _, policy := range []Policy{Eager, Lazy} {
		t.Run(policy.String(), func(t *testing.T) {
			assert := assert.New(t)

			buf := payloadWith(1024, 50)
			expected := payloadWith(1024)
			copy(expected[50:], []byte{0x11, 0x22, 0x33})

			p := Patcher{
				Pattern: []byte(Placeholder),
				Policy:  policy,
				Input:   bytes.NewReader([]byte{0x11, 0x22, 0x33}),
			}
			patched, err := p.Apply(buf)
			require.NoError(t, err)
			assert.Equal([]int{50}, patched)
			assert.Equal(expected, buf)
		})
	}
}

func TestPatcher_NotFound(t *testing.T) {
	t.Run("eager still reads", func(t *testing.T) {
		in := bytes.NewReader([]byte{1, 2, 3, 4})
		var diag bytes.Buffer
		p := Patcher{Pattern: []byte(Placeholder), Policy: Eager, Input: in, Diag: &diag}

		buf := []byte("no placeholder in here")
		patched, err := p.Apply(buf)
		assert.NoError(t, err)
		assert.Empty(t, patched)
		assert.Equal(t, "no placeholder in here", string(buf))
		assert.Equal(t, 1, in.Len())
		assert.Equal(t, "replacement: 01 02 03\n", diag.String())
	})

	t.Run("lazy reads nothing", func(t *testing.T) {
		in := bytes.NewReader([]byte{1, 2, 3})
		var diag bytes.Buffer
		p := Patcher{Pattern: []byte(Placeholder), Policy: Lazy, Input: in, Diag: &diag}

		patched, err := p.Apply([]byte("no placeholder in here"))
		assert.NoError(t, err)
		assert.Empty(t, patched)
		assert.Equal(t, 3, in.Len())
		assert.Empty(t, diag.String())
	})

	t.Run("lazy with no input", func(t *testing.T) {
		p := Patcher{Pattern: []byte(Placeholder), Policy: Lazy}
		patched, err := p.Apply(make([]byte, 100))
		assert.NoError(t, err)
		assert.Empty(t, patched)
	})
}

func TestPatcher_LeftmostOnly(t *testing.T) {
	for _, policy := range []Policy{Eager, Lazy} {
		t.Run(policy.String(), func(t *testing.T) {
			assert := assert.New(t)

			buf := payloadWith(100, 10, 60)
			in := bytes.NewReader([]byte{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff})
			var diag bytes.Buffer

			p := Patcher{Pattern: []byte(Placeholder), Policy: policy, Input: in, Diag: &diag}
			patched, err := p.Apply(buf)
			require.NoError(t, err)

			assert.Equal([]int{10}, patched)
			assert.Equal([]byte{0xaa, 0xbb, 0xcc}, buf[10:13])
			assert.Equal(Placeholder, string(buf[60:63]))
			assert.Equal(3, in.Len())
			assert.Equal(1, strings.Count(diag.String(), "found placeholder"))
			assert.Contains(diag.String(), "found placeholder at offset 10\n")
		})
	}
}

func TestPatcher_PatchAll(t *testing.T) {
	t.Run("eager reuses the replacement", func(t *testing.T) {
		assert := assert.New(t)

		buf := payloadWith(100, 10, 60)
		in := bytes.NewReader([]byte{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff})
		var diag bytes.Buffer

		p := Patcher{Pattern: []byte(Placeholder), Policy: Eager, Input: in, Diag: &diag, PatchAll: true}
		patched, err := p.Apply(buf)
		require.NoError(t, err)

		assert.Equal([]int{10, 60}, patched)
		assert.Equal([]byte{0xaa, 0xbb, 0xcc}, buf[10:13])
		assert.Equal([]byte{0xaa, 0xbb, 0xcc}, buf[60:63])
		assert.Equal(3, in.Len())
		assert.Equal("replacement: aa bb cc\n"+
			"found placeholder at offset 10\n"+
			"found placeholder at offset 60\n", diag.String())
	})

	t.Run("lazy reads per match", func(t *testing.T) {
		assert := assert.New(t)

		buf := payloadWith(100, 10, 60)
		in := bytes.NewReader([]byte{0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff, 0x01})

		p := Patcher{Pattern: []byte(Placeholder), Policy: Lazy, Input: in, PatchAll: true}
		patched, err := p.Apply(buf)
		require.NoError(t, err)

		assert.Equal([]int{10, 60}, patched)
		assert.Equal([]byte{0xaa, 0xbb, 0xcc}, buf[10:13])
		assert.Equal([]byte{0xdd, 0xee, 0xff}, buf[60:63])
		assert.Equal(1, in.Len())
	})

	t.Run("lazy runs out of input", func(t *testing.T) {
		buf := payloadWith(100, 10, 60)
		in := bytes.NewReader([]byte{0xaa, 0xbb, 0xcc, 0xdd})

		p := Patcher{Pattern: []byte(Placeholder), Policy: Lazy, Input: in, PatchAll: true}
		patched, err := p.Apply(buf)
		assert.ErrorIs(t, err, ErrShortRead)
		assert.Equal(t, []int{10}, patched)
		assert.Equal(t, Placeholder, string(buf[60:63]))
	})

	t.Run("scan continues over patched bytes", func(t *testing.T) {
		buf := []byte("aXXXX")
		p := Patcher{Pattern: []byte(Placeholder), Policy: Eager, Input: strings.NewReader("bXX"), PatchAll: true}
		patched, err := p.Apply(buf)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2}, patched)
		assert.Equal(t, "abbXX", string(buf))
	})
}

func TestPatcher_ShortRead(t *testing.T) {
	cases := map[string]struct {
		mode     ShortRead
		input    []byte
		expected []byte
		err      error
	}{
		"error":          {ShortReadError, []byte{0x11}, nil, ErrShortRead},
		"error on empty": {ShortReadError, nil, nil, ErrShortRead},
		"zero":           {ShortReadZero, []byte{0x11}, []byte{0x11, 0, 0}, nil},
		"zero on empty":  {ShortReadZero, nil, []byte{0, 0, 0}, nil},
		"nop one byte":   {ShortReadNop, []byte{0xc3}, []byte{0x90, 0x90, 0xc3}, nil},
		"nop two bytes":  {ShortReadNop, []byte{0x31, 0xc0}, []byte{0x90, 0x31, 0xc0}, nil},
		"full read":      {ShortReadNop, []byte{1, 2, 3}, []byte{1, 2, 3}, nil},
	}

	for name, tc := range cases {
		for _, policy := range []Policy{Eager, Lazy} {
			t.Run(name+"/"+policy.String(), func(t *testing.T) {
				buf := payloadWith(16, 4)
				p := Patcher{
					Pattern:   []byte(Placeholder),
					Policy:    policy,
					Input:     bytes.NewReader(tc.input),
					ShortRead: tc.mode,
				}

				patched, err := p.Apply(buf)
				if tc.err != nil {
					assert.ErrorIs(t, err, tc.err)
					assert.Empty(t, patched)
					assert.Equal(t, Placeholder, string(buf[4:7]))
					return
				}

				require.NoError(t, err)
				assert.Equal(t, []int{4}, patched)
				assert.Equal(t, tc.expected, buf[4:7])
			})
		}
	}
}

func TestPatcher_InvalidSettings(t *testing.T) {
	_, err := (&Patcher{Policy: Eager}).Apply(make([]byte, 10))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = (&Patcher{Pattern: []byte(Placeholder), Policy: Policy(7)}).Apply(make([]byte, 10))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
