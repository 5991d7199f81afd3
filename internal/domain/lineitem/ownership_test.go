// internal/domain/lineitem/ownership_test.go
package lineitem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ownedRecord(id, owner string) RemoteRecord {
	rec := RemoteRecord{ID: id, ProductRef: "p-" + id, Quantity: 1}
	if owner != "" {
		rec.OwnerRef = &owner
	}
	return rec
}

func TestFilterOwnedDropsForeignRecords(t *testing.T) {
	t.Parallel()

	records := []RemoteRecord{
		ownedRecord("r1", "alice"),
		ownedRecord("r2", "bob"),
		ownedRecord("r3", "alice"),
	}

	kept, dropped, err := FilterOwned(records, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, dropped)
	require.Len(t, kept, 2)
	assert.Equal(t, "r1", kept[0].ID)
	assert.Equal(t, "r3", kept[1].ID)
}

func TestFilterOwnedFailsClosedWhenNoRecordIsScoped(t *testing.T) {
	t.Parallel()

	records := []RemoteRecord{
		{ID: "r1", ProductRef: "p1"},
		{ID: "r2", ProductRef: "p2"},
	}

	kept, _, err := FilterOwned(records, "alice")
	require.Error(t, err)
	assert.True(t, IsUnscopedData(err))
	assert.Nil(t, kept)

	var unscoped *UnscopedDataError
	require.ErrorAs(t, err, &unscoped)
	assert.Equal(t, 2, unscoped.Records)
}

func TestFilterOwnedTreatsMissingOwnerAsForeignWhenOthersAreScoped(t *testing.T) {
	t.Parallel()

	records := []RemoteRecord{
		ownedRecord("r1", "alice"),
		{ID: "r2", ProductRef: "p2"}, // owner field missing
	}

	kept, dropped, err := FilterOwned(records, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, dropped)
	require.Len(t, kept, 1)
	assert.Equal(t, "r1", kept[0].ID)
}

func TestFilterOwnedEmptyInput(t *testing.T) {
	t.Parallel()

	kept, dropped, err := FilterOwned(nil, "alice")
	require.NoError(t, err)
	assert.Zero(t, dropped)
	assert.Empty(t, kept)
}
