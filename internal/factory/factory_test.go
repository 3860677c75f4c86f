package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerline/statement-import/internal/logging"
)

func TestDefaultRegistryOrder(t *testing.T) {
	r := NewDefaultRegistry(logging.NewMockLogger(), nil, nil)
	assert.Equal(t, []string{"ofx", "qif", "excel", "pdf", "csv"}, r.ListParsers())
}

func TestDefaultRegistryDispatch(t *testing.T) {
	r := NewDefaultRegistry(logging.NewMockLogger(), nil, nil)

	tests := map[string]string{
		"statement.ofx":  "ofx",
		"statement.qfx":  "ofx",
		"statement.qif":  "qif",
		"statement.xlsx": "excel",
		"statement.xls":  "excel",
		"statement.pdf":  "pdf",
		"statement.csv":  "csv",
	}
	for filename, want := range tests {
		p := r.FindParser(filename, "")
		require.NotNil(t, p, filename)
		assert.Equal(t, want, p.Name(), filename)
	}

	assert.Nil(t, r.FindParser("statement.docx", ""))
}
