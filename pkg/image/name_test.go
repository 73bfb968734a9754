package image

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseName(t *testing.T) {
	n := ParseName("localhost/cab-builds/demo:latest")
	require.NotNil(t, n)
	require.Equal(t, "localhost", n.Remote)
	require.Equal(t, "cab-builds", n.Repository)
	require.Equal(t, "demo", n.Name)
	require.Equal(t, "latest", n.Tag)
}

func TestParseNameNestedRepository(t *testing.T) {
	n := ParseName("localhost/cab/base/acme:v1")
	require.NotNil(t, n)
	require.Equal(t, "cab/base", n.Repository)
	require.Equal(t, "acme", n.Name)
	require.Equal(t, "v1", n.Tag)
}

func TestParseNameRoundTrip(t *testing.T) {
	for _, s := range []string{
		"localhost/cab-builds/demo:latest",
		"localhost/cab/base/acme:v1",
		"registry.example.com/cab/builder/suse:leap-15.2",
		"localhost/cab-builds/demo:20210101T120000Z-raw",
	} {
		n := ParseName(s)
		require.NotNil(t, n, s)
		require.Equal(t, s, n.String())
	}
}

func TestParseNameNoMatch(t *testing.T) {
	for _, s := range []string{
		"",
		"demo",
		"demo:latest",
		"cab-builds/demo:latest",
		"localhost/cab-builds/demo",
		"localhost/cab-builds/demo:",
		"<none>",
	} {
		require.Nil(t, ParseName(s), s)
	}
}
