package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbelskiy/helix-swarm/internal/apierrors"
)

func TestParseURL(t *testing.T) {
	tests := []struct {
		url         string
		wantHost    string
		wantVersion string
	}{
		{"http://server/api/v9", "http://server", "9"},
		{"http://server/api/v9/", "http://server", "9"},
		{"https://swarm.example.com/api/v1.2", "https://swarm.example.com", "1.2"},
		{"http://server/swarm/api/v10", "http://server/swarm", "10"},
		{"http://server:8080//api/v1.10", "http://server:8080", "1.10"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			host, version, err := ParseURL(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.wantHost, host)
			assert.Equal(t, tt.wantVersion, version.String())
		})
	}
}

func TestParseURL_MissingVersion(t *testing.T) {
	for _, url := range []string{
		"http://server",
		"http://server/api",
		"http://server/api/vX",
		"/api/v9",
	} {
		_, _, err := ParseURL(url)
		require.Error(t, err, url)
		assert.ErrorIs(t, err, apierrors.ErrMissingVersion, url)

		var swarmErr *apierrors.Error
		assert.ErrorAs(t, err, &swarmErr, url)
	}
}

func TestVersion_Compare(t *testing.T) {
	v, err := ParseVersion("1.10")
	require.NoError(t, err)

	assert.Equal(t, "1.10", v.String())
	assert.InDelta(t, 1.1, v.Float(), 1e-9)
	assert.True(t, v.AtLeast(1))
	assert.True(t, v.AtLeast(1.1))
	assert.False(t, v.AtLeast(2))
}

func TestVersion_Require(t *testing.T) {
	v, err := ParseVersion("8")
	require.NoError(t, err)

	assert.NoError(t, v.Require(8))

	err = v.Require(9)
	require.Error(t, err)
	assert.ErrorIs(t, err, apierrors.ErrIncompatible)
	assert.EqualError(t, err, "unsupported with API v8 (needed v9+)")
}

func TestParseVersion_Invalid(t *testing.T) {
	for _, s := range []string{"", "abc", "0", "-1"} {
		_, err := ParseVersion(s)
		assert.Error(t, err, s)
	}
}
