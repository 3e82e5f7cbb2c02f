package blob

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/filekeeper/internal/server/blob/core"
	"github.com/dmitrijs2005/filekeeper/internal/server/blob/s3"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	st, err := Open(ctx, Options{Driver: core.DriverFilesystem, FS: afero.NewMemMapFs(), Root: "/uploads"})
	require.NoError(t, err)
	assert.Equal(t, core.DriverFilesystem, st.Driver())

	st, err = Open(ctx, Options{FS: afero.NewMemMapFs()})
	require.NoError(t, err)
	assert.Equal(t, core.DriverFilesystem, st.Driver(), "fs is the default")

	st, err = Open(ctx, Options{Driver: core.DriverMemory})
	require.NoError(t, err)
	assert.Equal(t, core.DriverMemory, st.Driver())

	st, err = Open(ctx, Options{Driver: core.DriverS3, S3: s3.Config{Bucket: "vault", AccessKeyID: "a", SecretAccessKey: "b"}})
	require.NoError(t, err)
	assert.Equal(t, core.DriverS3, st.Driver())

	_, err = Open(ctx, Options{Driver: core.DriverGridFS})
	assert.ErrorIs(t, err, ErrGridFSNeedsMongo)

	_, err = Open(ctx, Options{Driver: "ftp"})
	assert.Error(t, err)
}
