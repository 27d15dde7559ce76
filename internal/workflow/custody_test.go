package workflow

import (
	"testing"
	"time"

	"epa-asset-api-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func setOf(t *testing.T, update bson.M) bson.M {
	t.Helper()
	set, ok := update["$set"].(bson.M)
	require.True(t, ok, "update must be a $set document")
	return set
}

func TestItemTouched(t *testing.T) {
	now := time.Now()
	set := setOf(t, ItemTouched(now))

	// Write khóa chỉ được đụng updatedAt, không đổi custody/availability/holder
	assert.Equal(t, bson.M{"updatedAt": now}, set)
}

func TestItemAssigned(t *testing.T) {
	now := time.Now()
	set := setOf(t, ItemAssigned(now))

	assert.Equal(t, models.CustodyAssigned, set["custody"])
	assert.Equal(t, models.AvailabilityAssigned, set["availability"])
	assert.Equal(t, now, set["updatedAt"])
}

func TestReleaseAvailability(t *testing.T) {
	// Item đang bảo trì thì trả xong vẫn ở MAINTENANCE, không tự về AVAILABLE
	assert.Equal(t, models.AvailabilityMaintenance, ReleaseAvailability(models.AvailabilityMaintenance))

	assert.Equal(t, models.AvailabilityAvailable, ReleaseAvailability(models.AvailabilityAssigned))
	assert.Equal(t, models.AvailabilityAvailable, ReleaseAvailability(models.AvailabilityAvailable))
}

func TestItemReleased(t *testing.T) {
	now := time.Now()

	set := setOf(t, ItemReleased(models.AvailabilityAssigned, now))
	assert.Equal(t, models.CustodyUnassigned, set["custody"])
	assert.Equal(t, models.AvailabilityAvailable, set["availability"])

	set = setOf(t, ItemReleased(models.AvailabilityMaintenance, now))
	assert.Equal(t, models.AvailabilityMaintenance, set["availability"])
}

func TestItemInTransit(t *testing.T) {
	set := setOf(t, ItemInTransit(time.Now()))
	assert.Equal(t, models.CustodyInTransit, set["custody"])
	assert.Equal(t, models.AvailabilityInTransit, set["availability"])
}

func TestItemHeldAtStore(t *testing.T) {
	set := setOf(t, ItemHeldAtStore("STR-abc", time.Now()))
	assert.Equal(t, models.Holder{Type: models.HolderStore, ID: "STR-abc"}, set["holder"])
	// Kho trung tâm chỉ đổi holder, availability vẫn IN_TRANSIT
	_, touched := set["availability"]
	assert.False(t, touched)
}

func TestItemArrivedAtOffice(t *testing.T) {
	set := setOf(t, ItemArrivedAtOffice("OFF-dest", time.Now()))
	assert.Equal(t, models.Holder{Type: models.HolderOffice, ID: "OFF-dest"}, set["holder"])
	assert.Equal(t, models.CustodyUnassigned, set["custody"])
	assert.Equal(t, models.AvailabilityAvailable, set["availability"])
}

func TestItemRolledBack(t *testing.T) {
	set := setOf(t, ItemRolledBack("OFF-src", time.Now()))
	assert.Equal(t, models.Holder{Type: models.HolderOffice, ID: "OFF-src"}, set["holder"])
	assert.Equal(t, models.CustodyUnassigned, set["custody"])
	assert.Equal(t, models.AvailabilityAvailable, set["availability"])
}
