package ingest

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreview(t *testing.T) {
	p := newRecordingPersister()
	c := NewCoordinator(p, Options{PhotoBaseURL: "https://images.example.org/signs"}, nil)

	csv := strings.Replace(testHeader, "Overall confidence 1", "Overall confidence 1,Browser", 1) +
		"1,finished,Irvine,a.jpg,JM,Window,Serif,OPEN,80,firefox\n" +
		"\n" +
		"2,claimed,Irvine,b.jpg,,Window,Serif,OPEN,80,firefox\n" +
		"3,finished,Irvine,c.jpg,JM,Window,Serif,OPEN,80,firefox\n"

	preview, err := c.Preview(context.Background(), strings.NewReader(csv), 2)
	require.NoError(t, err)

	require.Len(t, preview.Photos, 2)
	assert.Equal(t, "a.jpg", preview.Photos[0].CustomID)
	assert.Equal(t, "https://images.example.org/signs/a.jpg", preview.Photos[0].PhotoLink)
	assert.Equal(t, "b.jpg", preview.Photos[1].CustomID)

	require.Len(t, preview.Failures, 1)
	assert.Equal(t, 1, preview.Failures[0].Row)
	assert.Equal(t, 4, preview.Failures[0].Line)
	assert.Contains(t, preview.Failures[0].Reason, "ROW002")

	assert.Equal(t, []string{"Browser"}, preview.UnrecognizedColumns)
	assert.Empty(t, p.saved, "preview never persists")
}

func TestPreview_FileErrors(t *testing.T) {
	c := NewCoordinator(newRecordingPersister(), Options{}, nil)

	_, err := c.Preview(context.Background(), strings.NewReader(""), 5)
	assert.ErrorIs(t, err, ErrEmptyFile)
}
