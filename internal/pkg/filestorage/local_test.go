package filestorage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/learnway/member/internal/pkg/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDefaultImage = "/img/member/member-default.png"

func newTestStorage(t *testing.T) (*LocalStorage, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "upload", "nested")
	return NewLocalStorage(dir, "/images/", testDefaultImage), dir
}

func TestStore_EmptyUploadReturnsDefault(t *testing.T) {
	ls, dir := newTestStorage(t)

	name, err := ls.Store(nil)
	require.NoError(t, err)
	assert.Equal(t, testDefaultImage, name)

	name, err = ls.Store(FromBytes("avatar.png", nil))
	require.NoError(t, err)
	assert.Equal(t, testDefaultImage, name)

	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err), "no directory is created for empty uploads")
}

func TestStore_WritesFileWithGeneratedName(t *testing.T) {
	ls, dir := newTestStorage(t)

	name, err := ls.Store(FromBytes("my photo.JPG", []byte("jpeg-bytes")))
	require.NoError(t, err)

	assert.NotEqual(t, "my photo.JPG", name)
	assert.True(t, strings.HasSuffix(name, ".JPG"))

	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))
}

func TestStore_UniqueNames(t *testing.T) {
	ls, _ := newTestStorage(t)

	a, err := ls.Store(FromBytes("a.png", []byte("1")))
	require.NoError(t, err)
	b, err := ls.Store(FromBytes("a.png", []byte("2")))
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestStore_NoExtension(t *testing.T) {
	ls, dir := newTestStorage(t)

	name, err := ls.Store(FromBytes("README", []byte("x")))
	require.NoError(t, err)

	assert.NotContains(t, name, ".")
	assert.FileExists(t, filepath.Join(dir, name))
}

func TestStore_OpenFailureIsFileIO(t *testing.T) {
	ls, _ := newTestStorage(t)
	upload := &Upload{
		Filename: "a.png",
		Size:     3,
		open: func() (io.ReadCloser, error) {
			return nil, errors.New("disk gone")
		},
	}

	_, err := ls.Store(upload)
	assert.True(t, errors.Is(err, apperrors.ErrFileIO))
}

func TestDelete_RemovesExistingFile(t *testing.T) {
	ls, dir := newTestStorage(t)

	name, err := ls.Store(FromBytes("a.png", []byte("x")))
	require.NoError(t, err)
	require.FileExists(t, filepath.Join(dir, name))

	ls.Delete(name)
	assert.NoFileExists(t, filepath.Join(dir, name))
}

func TestDelete_MissingAndDefaultAreNoOps(t *testing.T) {
	ls, dir := newTestStorage(t)

	assert.NotPanics(t, func() {
		ls.Delete("")
		ls.Delete(testDefaultImage)
		ls.Delete("does-not-exist.png")
	})
	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestDelete_IgnoresDirectoryComponents(t *testing.T) {
	ls, dir := newTestStorage(t)
	require.NoError(t, os.MkdirAll(dir, 0o755))

	outside := filepath.Join(filepath.Dir(dir), "keep.png")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0o644))

	ls.Delete("../keep.png")
	assert.FileExists(t, outside)
}

func TestResolve(t *testing.T) {
	ls, _ := newTestStorage(t)

	assert.Equal(t, testDefaultImage, ls.Resolve(testDefaultImage))
	assert.Equal(t, testDefaultImage, ls.Resolve(""))
	assert.Equal(t, "/images/abc.png", ls.Resolve("abc.png"))
}

func TestFileExtension(t *testing.T) {
	cases := map[string]string{
		"photo.png":         "png",
		"archive.tar.gz":    "gz",
		"noext":             "",
		"trailing.":         "",
		`C:\users\me\a.jpg`: "jpg",
		"dir.v2/file":       "",
	}
	for in, want := range cases {
		assert.Equal(t, want, FileExtension(in), in)
	}
}
