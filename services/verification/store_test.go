package verification

import (
	"context"
	"testing"
	"time"

	"github.com/nri-matrimony/matrimony/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testUser  uint = 7
	testPhone      = "+14155551234"
)

var epoch = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func setupStore(t *testing.T) (*GormStore, *gorm.DB, *testutils.Clock) {
	t.Helper()
	db := testutils.SetupTestDB(t, &Record{})
	clock := testutils.NewClock(epoch)
	return NewGormStore(db, 10*time.Minute, clock.Now), db, clock
}

func countPair(t *testing.T, db *gorm.DB, userID uint, phone string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&Record{}).Where("user_id = ? AND phone_number = ?", userID, phone).Count(&n).Error)
	return n
}

func TestCreatePending(t *testing.T) {
	store, db, _ := setupStore(t)
	ctx := context.Background()

	record, err := store.CreatePending(ctx, testUser, testPhone, "123456")
	require.NoError(t, err)

	assert.NotEmpty(t, record.ID)
	assert.Equal(t, epoch.Add(10*time.Minute), record.ExpiresAt)
	assert.False(t, record.Verified)
	assert.False(t, record.Consumed)
	assert.Equal(t, int64(1), countPair(t, db, testUser, testPhone))
}

func TestCreatePending_ReplacesPriorRecord(t *testing.T) {
	store, db, clock := setupStore(t)
	ctx := context.Background()

	first, err := store.CreatePending(ctx, testUser, testPhone, "111111")
	require.NoError(t, err)

	clock.Advance(time.Minute)
	second, err := store.CreatePending(ctx, testUser, testPhone, "222222")
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, int64(1), countPair(t, db, testUser, testPhone))

	latest, err := store.FindLatest(ctx, testUser, testPhone)
	require.NoError(t, err)
	assert.Equal(t, "222222", latest.Code)
	assert.Equal(t, second.ID, latest.ID)
	assert.Equal(t, epoch.Add(11*time.Minute), latest.ExpiresAt.UTC())

	ok, err := store.TryVerify(ctx, testUser, testPhone, "111111")
	require.NoError(t, err)
	assert.False(t, ok, "replaced code must not verify")

	ok, err = store.TryVerify(ctx, testUser, testPhone, "222222")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCreatePending_ResetsVerifiedAndConsumed(t *testing.T) {
	store, _, _ := setupStore(t)
	ctx := context.Background()

	_, err := store.CreatePending(ctx, testUser, testPhone, "111111")
	require.NoError(t, err)
	ok, err := store.TryVerify(ctx, testUser, testPhone, "111111")
	require.NoError(t, err)
	require.True(t, ok)
	consumed, err := store.Consume(ctx, testUser, testPhone)
	require.NoError(t, err)
	require.True(t, consumed)

	_, err = store.CreatePending(ctx, testUser, testPhone, "333333")
	require.NoError(t, err)

	latest, err := store.FindLatest(ctx, testUser, testPhone)
	require.NoError(t, err)
	assert.False(t, latest.Verified)
	assert.False(t, latest.Consumed)
}

func TestCreatePending_PairsAreIndependent(t *testing.T) {
	store, db, _ := setupStore(t)
	ctx := context.Background()

	_, err := store.CreatePending(ctx, testUser, testPhone, "111111")
	require.NoError(t, err)
	_, err = store.CreatePending(ctx, testUser, "+14155559999", "222222")
	require.NoError(t, err)
	_, err = store.CreatePending(ctx, testUser+1, testPhone, "333333")
	require.NoError(t, err)

	var total int64
	require.NoError(t, db.Model(&Record{}).Count(&total).Error)
	assert.Equal(t, int64(3), total)

	ok, err := store.TryVerify(ctx, testUser+1, testPhone, "111111")
	require.NoError(t, err)
	assert.False(t, ok, "codes are scoped to their own user")
}

func TestTryVerify_OnlyOnce(t *testing.T) {
	store, _, _ := setupStore(t)
	ctx := context.Background()

	_, err := store.CreatePending(ctx, testUser, testPhone, "123456")
	require.NoError(t, err)

	ok, err := store.TryVerify(ctx, testUser, testPhone, "123456")
	require.NoError(t, err)
	assert.True(t, ok)

	latest, err := store.FindLatest(ctx, testUser, testPhone)
	require.NoError(t, err)
	assert.True(t, latest.Verified)

	ok, err = store.TryVerify(ctx, testUser, testPhone, "123456")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTryVerify_Expired(t *testing.T) {
	store, _, clock := setupStore(t)
	ctx := context.Background()

	_, err := store.CreatePending(ctx, testUser, testPhone, "123456")
	require.NoError(t, err)

	clock.Advance(601 * time.Second)

	ok, err := store.TryVerify(ctx, testUser, testPhone, "123456")
	require.NoError(t, err)
	assert.False(t, ok)

	latest, err := store.FindLatest(ctx, testUser, testPhone)
	require.NoError(t, err)
	assert.False(t, latest.Verified)
	assert.Equal(t, StateExpired, latest.StateAt(clock.Now()))
}

func TestTryVerify_ExactlyAtExpiry(t *testing.T) {
	store, _, clock := setupStore(t)
	ctx := context.Background()

	_, err := store.CreatePending(ctx, testUser, testPhone, "123456")
	require.NoError(t, err)

	clock.Advance(10 * time.Minute)

	ok, err := store.TryVerify(ctx, testUser, testPhone, "123456")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTryVerify_WrongCode(t *testing.T) {
	store, _, _ := setupStore(t)
	ctx := context.Background()

	_, err := store.CreatePending(ctx, testUser, testPhone, "123456")
	require.NoError(t, err)

	for _, code := range []string{"654321", "12345", "", "1234567"} {
		ok, err := store.TryVerify(ctx, testUser, testPhone, code)
		require.NoError(t, err)
		assert.False(t, ok)
	}

	latest, err := store.FindLatest(ctx, testUser, testPhone)
	require.NoError(t, err)
	assert.False(t, latest.Verified)
	assert.False(t, latest.Consumed)

	ok, err := store.TryVerify(ctx, testUser, testPhone, "123456")
	require.NoError(t, err)
	assert.True(t, ok, "failed attempts leave the record usable")
}

func TestTryVerify_NoRecord(t *testing.T) {
	store, _, _ := setupStore(t)

	ok, err := store.TryVerify(context.Background(), testUser, testPhone, "123456")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConsume(t *testing.T) {
	store, _, _ := setupStore(t)
	ctx := context.Background()

	_, err := store.CreatePending(ctx, testUser, testPhone, "123456")
	require.NoError(t, err)

	pending, err := store.IsVerifiedUnconsumed(ctx, testUser, testPhone)
	require.NoError(t, err)
	assert.False(t, pending, "pending is not verified")

	consumed, err := store.Consume(ctx, testUser, testPhone)
	require.NoError(t, err)
	assert.False(t, consumed, "unverified records cannot be consumed")

	ok, err := store.TryVerify(ctx, testUser, testPhone, "123456")
	require.NoError(t, err)
	require.True(t, ok)

	verified, err := store.IsVerifiedUnconsumed(ctx, testUser, testPhone)
	require.NoError(t, err)
	assert.True(t, verified)

	consumed, err = store.Consume(ctx, testUser, testPhone)
	require.NoError(t, err)
	assert.True(t, consumed)

	verified, err = store.IsVerifiedUnconsumed(ctx, testUser, testPhone)
	require.NoError(t, err)
	assert.False(t, verified)

	consumed, err = store.Consume(ctx, testUser, testPhone)
	require.NoError(t, err)
	assert.False(t, consumed, "second consume is a no-op")

	latest, err := store.FindLatest(ctx, testUser, testPhone)
	require.NoError(t, err)
	assert.True(t, latest.Verified)
	assert.True(t, latest.Consumed)
	assert.Equal(t, StateConsumed, latest.StateAt(epoch))
}

func TestConsume_VerifiedStaysConsumableAfterExpiry(t *testing.T) {
	store, _, clock := setupStore(t)
	ctx := context.Background()

	_, err := store.CreatePending(ctx, testUser, testPhone, "123456")
	require.NoError(t, err)
	ok, err := store.TryVerify(ctx, testUser, testPhone, "123456")
	require.NoError(t, err)
	require.True(t, ok)

	clock.Advance(time.Hour)

	verified, err := store.IsVerifiedUnconsumed(ctx, testUser, testPhone)
	require.NoError(t, err)
	assert.True(t, verified)
}

func TestFindLatest_NotFound(t *testing.T) {
	store, _, _ := setupStore(t)

	_, err := store.FindLatest(context.Background(), testUser, testPhone)
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestWithTx_Rollback(t *testing.T) {
	store, db, _ := setupStore(t)
	ctx := context.Background()

	_, err := store.CreatePending(ctx, testUser, testPhone, "123456")
	require.NoError(t, err)
	ok, err := store.TryVerify(ctx, testUser, testPhone, "123456")
	require.NoError(t, err)
	require.True(t, ok)

	err = db.Transaction(func(tx *gorm.DB) error {
		consumed, err := store.WithTx(tx).Consume(ctx, testUser, testPhone)
		require.NoError(t, err)
		require.True(t, consumed)
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	verified, err := store.IsVerifiedUnconsumed(ctx, testUser, testPhone)
	require.NoError(t, err)
	assert.True(t, verified, "rolled back consume leaves record verified")
}

func TestRecordStateAt(t *testing.T) {
	var none *Record
	assert.Equal(t, StateNone, none.StateAt(epoch))

	r := &Record{ExpiresAt: epoch.Add(time.Minute)}
	assert.Equal(t, StatePending, r.StateAt(epoch))
	assert.Equal(t, StateExpired, r.StateAt(epoch.Add(time.Minute)))

	r.Verified = true
	assert.Equal(t, StateVerified, r.StateAt(epoch.Add(time.Hour)))

	r.Consumed = true
	assert.Equal(t, StateConsumed, r.StateAt(epoch))
}
