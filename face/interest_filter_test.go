package face_test

import (
	"testing"

	"github.com/named-data/ndnd-client/face"
	enc "github.com/named-data/ndnd-client/std/encoding"
	tu "github.com/named-data/ndnd-client/std/utils/testutils"
	"github.com/stretchr/testify/require"
)

func mustParseName(t *testing.T, s string) enc.Name {
	n, err := enc.NameFromStr(s)
	require.NoError(t, err)
	return n
}

func TestInterestFilterRecordDoesMatch(t *testing.T) {
	tu.SetT(t)

	prefix := mustParseName(t, "/a/b")
	matching := mustParseName(t, "/a/b/c")
	nonMatching := mustParseName(t, "/a/x")

	rec := &face.InterestFilterRecord{Prefix: prefix}

	require.True(t, rec.DoesMatch(matching, face.PendingInterestOriginForwarder))
	require.False(t, rec.DoesMatch(nonMatching, face.PendingInterestOriginForwarder))
}

func TestInterestFilterRecordLoopbackGating(t *testing.T) {
	tu.SetT(t)

	prefix := mustParseName(t, "/a/b")
	name := mustParseName(t, "/a/b/c")

	restricted := &face.InterestFilterRecord{Prefix: prefix}
	require.False(t, restricted.DoesMatch(name, face.PendingInterestOriginApp),
		"an app-originated (loopback) Interest must not match unless AllowsLoopback is set")

	allowed := &face.InterestFilterRecord{Prefix: prefix, AllowsLoopback: true}
	require.True(t, allowed.DoesMatch(name, face.PendingInterestOriginApp))

	require.True(t, restricted.DoesMatch(name, face.PendingInterestOriginForwarder),
		"a forwarder-originated Interest always matches regardless of AllowsLoopback")
}
