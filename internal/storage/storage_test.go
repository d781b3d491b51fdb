package storage

import (
	"bytes"
	"context"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/grocery_shop/internal/config"
)

func fileHeader(t *testing.T, name, content string) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, err := w.CreateFormFile("image", name)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["image"][0]
}

func TestFileName(t *testing.T) {
	name, err := FileName("Photo.PNG")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".png"))

	_, err = FileName("script.sh")
	require.ErrorIs(t, err, ErrUnsupportedType)
}

func TestLocalSaveAndRemove(t *testing.T) {
	root := t.TempDir()
	d, err := NewLocal(root, "/uploads/")
	require.NoError(t, err)
	ctx := context.Background()

	url, err := SaveUpload(ctx, d, DirGroceries, fileHeader(t, "apple.jpg", "jpegbytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/groceries/"))

	p, ok := d.PathFromURL(url)
	require.True(t, ok)
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(p)))
	require.NoError(t, err)
	assert.Equal(t, "jpegbytes", string(data))

	require.NoError(t, Remove(ctx, d, url))
	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(p)))
	assert.True(t, os.IsNotExist(err))

	// deleting twice and foreign urls are both no-ops
	require.NoError(t, Remove(ctx, d, url))
	require.NoError(t, Remove(ctx, d, "/images/Fruits.png"))
}

func TestPathFromURLRejectsTraversal(t *testing.T) {
	d, err := NewLocal(t.TempDir(), "/uploads")
	require.NoError(t, err)

	_, ok := d.PathFromURL("/uploads/../etc/passwd")
	assert.False(t, ok)
	_, ok = d.PathFromURL("/uploads/")
	assert.False(t, ok)
	_, ok = d.PathFromURL("https://cdn.example.com/a.png")
	assert.False(t, ok)
}

func TestNewS3URLs(t *testing.T) {
	d, err := NewS3(context.Background(), config.Storage{
		S3Bucket:   "grocery",
		S3Region:   "us-east-1",
		S3Key:      "key",
		S3Secret:   "secret",
		S3Endpoint: "http://localhost:9000",
		S3URL:      "http://localhost:9000/grocery/",
	})
	require.NoError(t, err)

	url := d.URL("banners/a.png")
	assert.Equal(t, "http://localhost:9000/grocery/banners/a.png", url)
	p, ok := d.PathFromURL(url)
	require.True(t, ok)
	assert.Equal(t, "banners/a.png", p)

	_, err = NewS3(context.Background(), config.Storage{})
	require.Error(t, err)
}

func TestNewSelectsDisk(t *testing.T) {
	d, err := New(context.Background(), config.Storage{Disk: "local", LocalRoot: t.TempDir(), LocalURL: "/uploads"})
	require.NoError(t, err)
	assert.IsType(t, &LocalDisk{}, d)

	_, err = New(context.Background(), config.Storage{Disk: "ftp"})
	require.Error(t, err)
}
