package filestore_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bookcat/catalog-service/pkg/filestore"
)

func TestStore(t *testing.T) {
	t.Parallel()
	store, err := filestore.New(t.TempDir())
	require.NoError(t, err)

	require.False(t, store.Exists("a.png"))

	require.NoError(t, store.Save("a.png", strings.NewReader("payload")))
	require.True(t, store.Exists("a.png"))

	data, err := store.Read("a.png")
	require.NoError(t, err)
	require.Equal(t, "payload", string(data))

	require.NoError(t, store.Remove("a.png"))
	require.False(t, store.Exists("a.png"))

	_, err = store.Read("a.png")
	require.Error(t, err)
	require.Error(t, store.Remove("a.png"))
}

func TestStore_StripsDirectories(t *testing.T) {
	t.Parallel()
	store, err := filestore.New(t.TempDir())
	require.NoError(t, err)

	// a name with path components must stay inside the root
	require.NoError(t, store.Save("../../etc/passwd.png", strings.NewReader("x")))
	require.True(t, store.Exists("passwd.png"))
}
