package catalog

import (
	"context"
	"io/ioutil"
	"path/filepath"
	"testing"
	"time"

	"github.com/kirsrus/labsite/model"
	"github.com/kirsrus/labsite/pkg/messages"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Минимальная сигнатура PNG, достаточная для определения типа
var pngContent = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func TestStatic(t *testing.T) {
	static := NewStatic(&ConfigStatic{Messages: messages.Get(messages.LocaleRu)})
	items, err := static.Images()
	require.NoError(t, err)
	require.Len(t, items, 8)
	assert.Equal(t, model.ImageItem{URL: "https://picsum.photos/800/600?random=1", Title: "Изображение 1"}, items[0])
	assert.Equal(t, "https://picsum.photos/800/600?random=8", items[7].URL)

	// Изменение результата не меняет каталог
	items[0].Title = "изменено"
	again, _ := static.Images()
	assert.Equal(t, "Изображение 1", again[0].Title)

	_, err = static.Image("1.png")
	assert.True(t, static.IsNotFound(err))
}

func TestStaticItems(t *testing.T) {
	static := NewStatic(&ConfigStatic{Items: []model.ImageItem{{URL: "/a.png", Title: "A"}}})
	items, err := static.Images()
	require.NoError(t, err)
	assert.Equal(t, []model.ImageItem{{URL: "/a.png", Title: "A"}}, items)
}

func TestDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "b-sea.png"), pngContent, 0o644))
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "a forest.png"), pngContent, 0o644))
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "notes.txt"), []byte("не изображение"), 0o644))
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, ".hidden.png"), pngContent, 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	catalog, err := NewDir(ctx, &ConfigDir{Dir: dir})
	require.NoError(t, err)

	t.Run("список", func(t *testing.T) {
		items, err := catalog.Images()
		require.NoError(t, err)
		assert.Equal(t, []model.ImageItem{
			{URL: "/image/a%20forest.png", Title: "a forest"},
			{URL: "/image/b-sea.png", Title: "b-sea"},
		}, items)
	})

	t.Run("изображение", func(t *testing.T) {
		content, err := catalog.Image("b-sea.png")
		require.NoError(t, err)
		assert.Equal(t, pngContent, content)

		for _, name := range []string{"notes.txt", "../b-sea.png", ".hidden.png", "absent.png", ""} {
			_, err = catalog.Image(name)
			assert.True(t, catalog.IsNotFound(err), name)
		}
	})

	t.Run("новый файл сбрасывает кэш", func(t *testing.T) {
		require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "c-sky.png"), pngContent, 0o644))
		assert.Eventually(t, func() bool {
			items, err := catalog.Images()
			return err == nil && len(items) == 3
		}, 2*time.Second, 20*time.Millisecond)
	})
}

func TestNewDir(t *testing.T) {
	_, err := NewDir(context.Background(), nil)
	assert.Error(t, err)

	_, err = NewDir(context.Background(), &ConfigDir{Dir: filepath.Join(t.TempDir(), "absent")})
	assert.Error(t, err)
}
