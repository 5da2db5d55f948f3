package invoice

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lipiprint/lipiprint/internal/orders"
)

type mockOrderSource struct {
	order    *orders.Order
	attached string
}

func (m *mockOrderSource) Get(_ context.Context, id int64) (*orders.Order, error) {
	if m.order == nil || m.order.ID != id {
		return nil, orders.ErrNotFound
	}
	return m.order, nil
}

func (m *mockOrderSource) AttachInvoice(_ context.Context, _ int64, path string) error {
	m.attached = path
	return nil
}

type mockRenderer struct{}

func (mockRenderer) RenderHTML(_ context.Context, html string) ([]byte, error) {
	return []byte("%PDF " + html[:20]), nil
}

func TestGenerateWritesPDFAndAttachesPath(t *testing.T) {
	dir := t.TempDir()
	source := &mockOrderSource{order: sampleOrder()}
	svc := NewService(newTestComposer(t), source, mockRenderer{}, dir, nil, nil)

	path, err := svc.Generate(context.Background(), 42)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "LP42.pdf"), path)
	assert.Equal(t, path, source.attached)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
}

func TestGenerateUnknownOrder(t *testing.T) {
	svc := NewService(newTestComposer(t), &mockOrderSource{}, mockRenderer{}, t.TempDir(), nil, nil)

	_, err := svc.Generate(context.Background(), 99)
	assert.ErrorIs(t, err, orders.ErrNotFound)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleOrder()))

	out := buf.String()
	assert.Contains(t, out, "invoice,description")
	assert.Contains(t, out, "LP42,thesis.pdf")
	assert.Contains(t, out, "Grand Total")
	assert.Contains(t, out, "148")
}

func TestWriteCSVNilOrder(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, WriteCSV(&buf, nil), ErrNilOrder)
}
