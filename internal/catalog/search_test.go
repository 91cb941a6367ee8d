package catalog

import (
	"context"
	"testing"

	"github.com/go-while/go-toolsite/internal/models"
	"github.com/stretchr/testify/require"
)

func TestBundledDatasets(t *testing.T) {
	static, imported, err := LoadDatasets()
	require.NoError(t, err)
	require.NotEmpty(t, static)
	require.NotEmpty(t, imported)
	for _, e := range append(static, imported...) {
		require.NotEmpty(t, e.ID)
		require.NotEmpty(t, e.Name)
		require.NotEmpty(t, e.URL)
	}
}

func TestSearch(t *testing.T) {
	entries := models.ToolCatalog{
		{ID: "mj", Name: "Midjourney", Description: "Text to image generation", Category: "image-generation"},
		{ID: "gpt", Name: "ChatGPT", Description: "Conversational assistant", Category: "chat"},
		{ID: "el", Name: "ElevenLabs", Description: "Speech synthesis", Category: "audio", Tags: []string{"voice"}},
	}

	got, err := Search(context.Background(), entries, "image", 10)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	require.Equal(t, "mj", got[0].ID)

	got, err = Search(context.Background(), entries, "voice", 10)
	require.NoError(t, err)
	require.Equal(t, []string{"el"}, got.IDs())

	got, err = Search(context.Background(), entries, "conversa", 10)
	require.NoError(t, err)
	require.Equal(t, []string{"gpt"}, got.IDs())

	got, err = Search(context.Background(), entries, "zzzzqqq", 10)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestSearchEmptyQueryReturnsInput(t *testing.T) {
	entries := models.ToolCatalog{toolA, toolB}
	got, err := Search(context.Background(), entries, "   ", 0)
	require.NoError(t, err)
	require.Equal(t, entries, got)
}

func TestSearchHandlesDuplicateIDs(t *testing.T) {
	entries := models.ToolCatalog{
		{ID: "dup", Name: "Writer one"},
		{ID: "dup", Name: "Writer two"},
	}
	got, err := Search(context.Background(), entries, "writer", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestFilterCategory(t *testing.T) {
	entries := models.ToolCatalog{
		{ID: "a", Category: "Chat"},
		{ID: "b", Category: "audio"},
		{ID: "c", Category: "chat"},
	}
	require.Equal(t, []string{"a", "c"}, FilterCategory(entries, "chat").IDs())
	require.Equal(t, entries, FilterCategory(entries, ""))
}

func TestCategories(t *testing.T) {
	entries := models.ToolCatalog{
		{ID: "a", Category: "image-generation"},
		{ID: "b", Category: "chat"},
		{ID: "c", Category: "Chat"},
		{ID: "d", Category: ""},
	}
	cats := Categories(entries)
	require.Equal(t, []models.Category{
		{Key: "image-generation", Title: "Image Generation", Count: 1},
		{Key: "chat", Title: "Chat", Count: 2},
	}, cats)
}
