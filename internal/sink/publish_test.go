package sink_test

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jacoelho/proligent/internal/sink"
	"github.com/jacoelho/proligent/internal/sink/memory"
)

func TestKey(t *testing.T) {
	tests := []struct {
		prefix string
		file   string
		want   string
	}{
		{"", "/out/Proligent_a.xml", "Proligent_a.xml"},
		{"line1", "/out/Proligent_a.xml", "line1/Proligent_a.xml"},
		{"/line1/", "Document_x_report.pdf", "line1/Document_x_report.pdf"},
		{"site/line1", "a.xml", "site/line1/a.xml"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, sink.Key(tt.prefix, tt.file))
		})
	}
}

func TestPublish(t *testing.T) {
	ctx := context.Background()
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/out/Proligent_a.xml", []byte("<a/>"), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/out/Document_x_report.pdf", []byte("pdf"), 0o644))

	store := memory.New()
	published, skipped, err := sink.Publish(ctx, store, fsys, "line1", "/out/Proligent_a.xml", "/out/Document_x_report.pdf")
	require.NoError(t, err)
	assert.Empty(t, skipped)
	require.Len(t, published, 2)
	assert.Equal(t, sink.ContentTypeXML, published[0].ContentType)
	assert.Equal(t, "application/octet-stream", published[1].ContentType)

	// Documents are content addressed; publishing again skips them.
	published, skipped, err = sink.Publish(ctx, store, fsys, "line1", "/out/Document_x_report.pdf")
	require.NoError(t, err)
	assert.Empty(t, published)
	assert.Equal(t, []string{"line1/Document_x_report.pdf"}, skipped)
}

func TestPublishMissingFile(t *testing.T) {
	_, _, err := sink.Publish(context.Background(), memory.New(), afero.NewMemMapFs(), "", "/out/missing.xml")
	require.Error(t, err)
}
