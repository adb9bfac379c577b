package booking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surabicare/clinic-scheduler/internal/notify"
)

func createPending(t *testing.T, f *fixture) *Booking {
	t.Helper()
	res, err := f.svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	return res.Booking
}

func TestAccept(t *testing.T) {
	f := newFixture(t, ConflictPolicy{})
	b := createPending(t, f)

	res, err := f.svc.Accept(context.Background(), b.ID)
	require.NoError(t, err)
	assert.True(t, res.StatusChanged)
	assert.NoError(t, res.NotifyErr)
	assert.Equal(t, StatusAccepted, res.Booking.Status)

	msgs := f.notifier.byKind(notify.KindConfirmed)
	require.Len(t, msgs, 1)
	assert.Equal(t, "asha@example.com", msgs[0].To.Email)
	assert.Contains(t, msgs[0].Body, "10:30 AM")
	assert.Contains(t, msgs[0].Body, "/bookings/")
	assert.Contains(t, msgs[0].Body, "token=")
	require.NotNil(t, msgs[0].Attachment)
	assert.Equal(t, "image/png", msgs[0].Attachment.ContentType)
	assertPNG(t, msgs[0].Attachment.Data)
}

func TestAcceptIdempotent(t *testing.T) {
	f := newFixture(t, ConflictPolicy{})
	b := createPending(t, f)

	_, err := f.svc.Accept(context.Background(), b.ID)
	require.NoError(t, err)

	res, err := f.svc.Accept(context.Background(), b.ID)
	require.NoError(t, err)
	assert.False(t, res.StatusChanged)

	// Repeating the action sent nothing new.
	assert.Len(t, f.notifier.byKind(notify.KindConfirmed), 1)
}

func TestRejectWithReason(t *testing.T) {
	f := newFixture(t, ConflictPolicy{})
	b := createPending(t, f)

	res, err := f.svc.Reject(context.Background(), b.ID, "doctor unavailable that day")
	require.NoError(t, err)
	assert.True(t, res.StatusChanged)
	assert.Equal(t, StatusRejected, res.Booking.Status)

	msgs := f.notifier.byKind(notify.KindRejected)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Body, "doctor unavailable that day")
}

func TestTransitionOutOfTerminal(t *testing.T) {
	f := newFixture(t, ConflictPolicy{})
	b := createPending(t, f)

	_, err := f.svc.Reject(context.Background(), b.ID, "")
	require.NoError(t, err)

	_, err = f.svc.Accept(context.Background(), b.ID)
	var terr *TransitionError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, StatusRejected, terr.From)
	assert.Equal(t, StatusAccepted, terr.To)

	got, err := f.svc.Get(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, got.Status)
}

func TestAcceptedCanCancelAndComplete(t *testing.T) {
	f := newFixture(t, ConflictPolicy{})

	b := createPending(t, f)
	_, err := f.svc.Accept(context.Background(), b.ID)
	require.NoError(t, err)
	res, err := f.svc.Cancel(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, res.Booking.Status)

	in := validInput()
	in.Time = "11:00"
	created, err := f.svc.Create(context.Background(), in)
	require.NoError(t, err)
	_, err = f.svc.Accept(context.Background(), created.Booking.ID)
	require.NoError(t, err)
	res, err = f.svc.Complete(context.Background(), created.Booking.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, res.Booking.Status)

	// Neither terminal move sends a notification.
	assert.Empty(t, f.notifier.byKind(notify.KindRejected))
	assert.Len(t, f.notifier.byKind(notify.KindConfirmed), 2)
}

func TestAcceptNotifyFailureKeepsStatus(t *testing.T) {
	f := newFixture(t, ConflictPolicy{})
	b := createPending(t, f)
	f.notifier.failKind = notify.KindConfirmed

	res, err := f.svc.Accept(context.Background(), b.ID)
	require.NoError(t, err)
	assert.True(t, res.StatusChanged)
	require.Error(t, res.NotifyErr)
	var derr *notify.DeliveryError
	assert.ErrorAs(t, res.NotifyErr, &derr)

	got, err := f.svc.Get(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, got.Status)
}

func TestTransitionUnknownBooking(t *testing.T) {
	f := newFixture(t, ConflictPolicy{})
	_, err := f.svc.Accept(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBulkAccept(t *testing.T) {
	f := newFixture(t, ConflictPolicy{})
	ctx := context.Background()

	var ids []int64
	for _, at := range []string{"10:00", "10:30", "11:00"} {
		in := validInput()
		in.Time = at
		res, err := f.svc.Create(ctx, in)
		require.NoError(t, err)
		ids = append(ids, res.Booking.ID)
	}
	// Put one booking in a terminal state so the batch has to skip it.
	_, err := f.svc.Reject(ctx, ids[2], "")
	require.NoError(t, err)

	res := f.svc.BulkAccept(ctx, append(ids, 404))
	assert.Equal(t, 2, res.Changed)
	assert.Equal(t, 2, res.Skipped)
	assert.Equal(t, 2, res.NotifySent)
	assert.Equal(t, 0, res.NotifyFailed)
}

func TestBulkRejectCountsNotifyFailures(t *testing.T) {
	f := newFixture(t, ConflictPolicy{})
	ctx := context.Background()

	var ids []int64
	for _, at := range []string{"10:00", "10:30"} {
		in := validInput()
		in.Time = at
		res, err := f.svc.Create(ctx, in)
		require.NoError(t, err)
		ids = append(ids, res.Booking.ID)
	}
	f.notifier.failKind = notify.KindRejected

	res := f.svc.BulkReject(ctx, ids, "closed for renovation")
	assert.Equal(t, 2, res.Changed)
	assert.Equal(t, 0, res.NotifySent)
	assert.Equal(t, 2, res.NotifyFailed)
}

func TestResendNotification(t *testing.T) {
	f := newFixture(t, ConflictPolicy{})
	ctx := context.Background()
	b := createPending(t, f)

	err := f.svc.ResendNotification(ctx, b.ID)
	var terr *TransitionError
	assert.ErrorAs(t, err, &terr)

	_, err = f.svc.Accept(ctx, b.ID)
	require.NoError(t, err)
	require.NoError(t, f.svc.ResendNotification(ctx, b.ID))
	assert.Len(t, f.notifier.byKind(notify.KindConfirmed), 2)
}
