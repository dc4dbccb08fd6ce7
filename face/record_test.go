package face_test

import (
	"testing"

	"github.com/named-data/ndnd-client/face"
	tu "github.com/named-data/ndnd-client/std/utils/testutils"
	"github.com/stretchr/testify/require"
)

func TestRecordContainerInsertGetErase(t *testing.T) {
	tu.SetT(t)

	c := face.NewRecordContainer[string]()
	require.True(t, c.Empty())

	id1 := c.Insert("a")
	id2 := c.Insert("b")
	require.NotEqual(t, id1, id2)
	require.Equal(t, 2, c.Len())

	require.Equal(t, "a", *c.Get(id1))
	require.Equal(t, "b", *c.Get(id2))
	require.Nil(t, c.Get(face.RecordId(9999)))

	c.Erase(id1)
	require.Nil(t, c.Get(id1))
	require.Equal(t, 1, c.Len())
}

func TestRecordContainerRemoveIfAndForEach(t *testing.T) {
	tu.SetT(t)

	c := face.NewRecordContainer[int]()
	for i := 0; i < 5; i++ {
		c.Insert(i)
	}
	require.Equal(t, 5, c.Len())

	var seen []int
	c.ForEach(func(_ face.RecordId, v *int) {
		seen = append(seen, *v)
	})
	require.Len(t, seen, 5)

	c.RemoveIf(func(_ face.RecordId, v *int) bool {
		return *v%2 == 0
	})
	require.Equal(t, 2, c.Len())

	c.Clear()
	require.True(t, c.Empty())
}
