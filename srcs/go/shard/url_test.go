package shard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURL(t *testing.T) {
	t.Parallel()
	u, err := ParseURL(`s3://s-datasets/laion-high-resolution/{00000..17535}.tar`)
	require.NoError(t, err)
	assert.Equal(t, `s-datasets`, u.Bucket)
	assert.Equal(t, `laion-high-resolution/{00000..17535}.tar`, u.Key)
	assert.Equal(t, `s3://s-datasets/laion-high-resolution/{00000..17535}.tar`, u.String())
	assert.Equal(t, `laion-high-resolution`, u.Dir().Key)

	for _, s := range []string{``, `http://x/y`, `s3://bucket-only`, `s3:///key`} {
		_, err := ParseURL(s)
		assert.Error(t, err, "url %q", s)
	}
}

func TestURLExpand(t *testing.T) {
	t.Parallel()
	u := URL{Bucket: `b`, Key: `ds/{00..01}.tar`}
	urls, err := u.Expand()
	require.NoError(t, err)
	require.Len(t, urls, 2)
	assert.Equal(t, `ds/00.tar`, urls[0].Key)
	assert.Equal(t, `b`, urls[1].Bucket)
}

func TestPipeCommand(t *testing.T) {
	t.Parallel()
	u := URL{Bucket: `s-datasets`, Key: `laion-high-resolution/{00000..17535}.tar`}
	want := `pipe:aws s3 cp s3://s-datasets/laion-high-resolution/{00000..17535}.tar -`
	assert.Equal(t, want, PipeCommand(u))
}
