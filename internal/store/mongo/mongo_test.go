package mongo_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"diagnostic-portal-api/internal/model"
	"diagnostic-portal-api/internal/store"
	"diagnostic-portal-api/internal/store/mongo"
)

func setup(t *testing.T) *mongo.Store {
	t.Helper()
	_ = godotenv.Load("../../../.env")
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	st, err := mongo.Open(ctx, uri, "portal_test_"+uuid.New().String()[:8])
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close(context.Background()) })
	require.NoError(t, st.EnsureIndexes(ctx))
	return st
}

func TestUsersUnique(t *testing.T) {
	st := setup(t)
	ctx := context.Background()

	u := &model.User{ID: uuid.New().String(), Mobile: "9000000001", CreatedAt: time.Now().UTC()}
	require.NoError(t, st.CreateUser(ctx, u))
	assert.ErrorIs(t, st.CreateUser(ctx, &model.User{ID: uuid.New().String(), Mobile: "9000000001"}), store.ErrConflict)

	// two users without email do not collide on the sparse index
	require.NoError(t, st.CreateUser(ctx, &model.User{ID: uuid.New().String(), Mobile: "9000000002"}))

	got, err := st.UserByMobile(ctx, "9000000001")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestAppointmentLifecycle(t *testing.T) {
	st := setup(t)
	ctx := context.Background()

	date, _ := model.ParseDate("2024-02-10")
	a := &model.Appointment{
		ID:            uuid.New().String(),
		UserID:        "owner",
		Procedure:     "X-Ray",
		Date:          date,
		PaymentMethod: model.PayNow,
		PaymentStatus: model.PaymentPending,
		Status:        model.StatusPending,
		CreatedAt:     time.Now().UTC(),
	}
	require.NoError(t, st.Appointments.Create(ctx, a))

	_, err := st.Appointments.Get(ctx, a.ID, "intruder")
	assert.ErrorIs(t, err, store.ErrNotFound)

	paid := model.PaymentCompleted
	got, err := st.Appointments.Update(ctx, a.ID, "owner", model.AppointmentPatch{PaymentStatus: &paid})
	require.NoError(t, err)
	assert.Equal(t, model.PaymentCompleted, got.PaymentStatus)
	assert.Equal(t, model.StatusPending, got.Status)

	list, err := st.Appointments.List(ctx, "owner")
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, st.Appointments.Delete(ctx, a.ID, "owner"))
	assert.ErrorIs(t, st.Appointments.Delete(ctx, a.ID, "owner"), store.ErrNotFound)
}
