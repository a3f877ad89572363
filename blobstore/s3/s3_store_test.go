package s3

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/desigo/blobstore"
)

func TestKey(t *testing.T) {
	s := &Store{prefix: "public/edr/spectro/redux"}
	assert.Equal(t, "public/edr/spectro/redux/fuji/tiles/80605", s.key("fuji/tiles/80605"))

	s = &Store{}
	assert.Equal(t, "fuji/tiles/80605", s.key("fuji/tiles/80605"))
}

func TestTranslateNotFound(t *testing.T) {
	t.Run("HeadNotFound", func(t *testing.T) {
		err := translateNotFound("fuji/a.fits", fmt.Errorf("head: %w", &types.NotFound{}))
		require.ErrorIs(t, err, blobstore.ErrNotFound)
		assert.Contains(t, err.Error(), "fuji/a.fits")
	})

	t.Run("GetNoSuchKey", func(t *testing.T) {
		err := translateNotFound("fuji/a.fits", fmt.Errorf("get: %w", &types.NoSuchKey{}))
		require.ErrorIs(t, err, blobstore.ErrNotFound)
	})

	t.Run("OtherErrorsPassThrough", func(t *testing.T) {
		cause := errors.New("throttled")
		err := translateNotFound("fuji/a.fits", cause)
		require.ErrorIs(t, err, cause)
		assert.NotErrorIs(t, err, blobstore.ErrNotFound)
	})
}
