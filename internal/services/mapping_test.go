package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collegecab/collegecab-backend/internal/models"
	"github.com/collegecab/collegecab-backend/internal/storage"
)

func newTestMapping(t *testing.T) (*storage.MemoryStore, *MappingService) {
	t.Helper()
	store := storage.NewMemoryStore()
	return store, NewMappingService(store)
}

func makeDriverProfile(t *testing.T, store storage.Store, phone string) *models.DriverProfile {
	t.Helper()
	user, err := store.CreateUser(&models.User{PhoneNumber: phone, IsDriver: true, IsActive: true})
	require.NoError(t, err)
	profile, err := store.CreateDriverProfile(&models.DriverProfile{UserID: user.ID, FullName: "Driver " + phone})
	require.NoError(t, err)
	return profile
}

func TestResolveAndMapIsIdempotent(t *testing.T) {
	store, svc := newTestMapping(t)
	profile := makeDriverProfile(t, store, "9000000101")

	first, err := svc.ResolveAndMap(profile.ID, "Tech U", "09:00", "17:00")
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.Equal(t, "Driver profile mapped to Tech U with shift 09:00 - 17:00.", first.Message)

	second, err := svc.ResolveAndMap(profile.ID, "Tech U", "09:00", "17:00")
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, "Driver profile mapping already exists.", second.Message)

	// Same mapping row, same college, same timing - nothing duplicated
	assert.Equal(t, first.Mapping.ID, second.Mapping.ID)
	assert.Equal(t, first.Mapping.CollegeID, second.Mapping.CollegeID)
	assert.Equal(t, first.Mapping.TimingID, second.Mapping.TimingID)
}

func TestResolveSharesCollegeAndTimingRows(t *testing.T) {
	store, svc := newTestMapping(t)
	a := makeDriverProfile(t, store, "9000000102")
	b := makeDriverProfile(t, store, "9000000103")
	c := makeDriverProfile(t, store, "9000000104")

	ra, err := svc.ResolveAndMap(a.ID, "Tech U", "09:00", "17:00")
	require.NoError(t, err)
	rb, err := svc.ResolveAndMap(b.ID, "Tech U", "09:00", "17:00")
	require.NoError(t, err)
	rc, err := svc.ResolveAndMap(c.ID, "City College", "09:00", "17:00")
	require.NoError(t, err)

	// Identical names resolve to one college; distinct names to two
	assert.Equal(t, ra.Mapping.CollegeID, rb.Mapping.CollegeID)
	assert.NotEqual(t, ra.Mapping.CollegeID, rc.Mapping.CollegeID)

	// The timing pair is shared across all three
	assert.Equal(t, ra.Mapping.TimingID, rb.Mapping.TimingID)
	assert.Equal(t, ra.Mapping.TimingID, rc.Mapping.TimingID)

	// Each driver still has their own mapping row
	assert.True(t, rb.Created)
	assert.NotEqual(t, ra.Mapping.ID, rb.Mapping.ID)
}

func TestReassignReplacesMapping(t *testing.T) {
	store, svc := newTestMapping(t)
	profile := makeDriverProfile(t, store, "9000000105")

	first, err := svc.ResolveAndMap(profile.ID, "Tech U", "09:00", "17:00")
	require.NoError(t, err)

	result, err := svc.Reassign(first.Mapping.ID, profile.ID, "City College", "08:00", "14:00")
	require.NoError(t, err)
	assert.True(t, result.Created)
	assert.NotEqual(t, first.Mapping.ID, result.Mapping.ID)

	// Old row is gone and exactly one mapping remains for the driver
	_, err = store.GetDriverMapping(first.Mapping.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	current, err := store.GetMappingByDriver(profile.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Mapping.ID, current.ID)

	college, err := store.GetCollege(current.CollegeID)
	require.NoError(t, err)
	assert.Equal(t, "City College", college.CollegeName)
}
