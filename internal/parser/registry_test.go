package parser

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerline/statement-import/internal/models"
)

// stubParser claims a fixed extension and records nothing else.
type stubParser struct {
	name string
	ext  string
}

func (s *stubParser) Name() string { return s.name }

func (s *stubParser) DefaultConfig() models.ParserConfig {
	return models.ParserConfig{
		Name:                s.name,
		SupportedExtensions: []string{s.ext},
		MimeTypes:           []string{"application/x-" + s.name},
	}
}

func (s *stubParser) CanParse(filename, mime string) bool {
	return strings.HasSuffix(strings.ToLower(filename), "."+s.ext)
}

func (s *stubParser) Parse(ctx context.Context, r io.Reader, opts Options) (*models.ParseResult, error) {
	return models.NewParseResult(), nil
}

func TestRegistrationOrderIsPriority(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&stubParser{name: "first", ext: "txt"})
	r.Register(&stubParser{name: "second", ext: "txt"})

	p := r.FindParser("statement.txt", "")
	require.NotNil(t, p)
	assert.Equal(t, "first", p.Name())
}

func TestReRegisterReplacesInPlace(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&stubParser{name: "a", ext: "aaa"})
	r.Register(&stubParser{name: "b", ext: "bbb"})
	r.Register(&stubParser{name: "a", ext: "ccc"})

	assert.Equal(t, []string{"a", "b"}, r.ListParsers())
	p := r.FindParser("f.ccc", "")
	require.NotNil(t, p)
	assert.Equal(t, "a", p.Name())
}

func TestUnregister(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&stubParser{name: "a", ext: "aaa"})

	assert.True(t, r.Unregister("a"))
	assert.False(t, r.Unregister("a"))
	assert.Nil(t, r.FindParser("f.aaa", ""))
}

func TestFindParserUnsupported(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&stubParser{name: "a", ext: "aaa"})
	assert.Nil(t, r.FindParser("statement.zzz", ""))
}

func TestSupportedUnions(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&stubParser{name: "b", ext: "bbb"})
	r.Register(&stubParser{name: "a", ext: "aaa"})

	assert.Equal(t, []string{"aaa", "bbb"}, r.SupportedExtensions())
	assert.Equal(t, []string{"application/x-a", "application/x-b"}, r.SupportedMimeTypes())
}
