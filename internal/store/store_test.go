package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), t.TempDir()+"/test.db")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seedOrgAgent(t *testing.T, db *DB) (orgID, agentID string) {
	t.Helper()
	ctx := context.Background()
	orgID, err := db.CreateOrganization(ctx, "Test Gym", "Europe/London")
	require.NoError(t, err)
	agentID, err = db.CreateAgent(ctx, Agent{
		OrganizationID: orgID,
		Name:           "Front Desk",
		SystemPrompt:   "You are the front desk assistant.",
		Temperature:    0.7,
		MaxTokens:      512,
		Enabled:        true,
	})
	require.NoError(t, err)
	return orgID, agentID
}

func TestAppendMessageMonotonicTimestamps(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	orgID, agentID := seedOrgAgent(t, db)
	convID, err := db.CreateConversation(ctx, orgID, agentID, "user-1")
	require.NoError(t, err)

	// Rapid appends land within the same wall-clock instant; timestamps must
	// still come back strictly increasing.
	for i := 0; i < 10; i++ {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		_, err := db.AppendMessage(ctx, Message{ConversationID: convID, Role: role, Content: "msg"})
		require.NoError(t, err)
	}

	msgs, err := db.RecentMessages(ctx, convID, 100)
	require.NoError(t, err)
	require.Len(t, msgs, 10)
	for i := 1; i < len(msgs); i++ {
		assert.True(t, msgs[i].CreatedAt.After(msgs[i-1].CreatedAt),
			"message %d (%v) not after message %d (%v)", i, msgs[i].CreatedAt, i-1, msgs[i-1].CreatedAt)
	}
}

func TestRecentMessagesHonorsLimit(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	orgID, agentID := seedOrgAgent(t, db)
	convID, err := db.CreateConversation(ctx, orgID, agentID, "")
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := db.AppendMessage(ctx, Message{ConversationID: convID, Role: "user", Content: string(rune('a' + i))})
		require.NoError(t, err)
	}

	msgs, err := db.RecentMessages(ctx, convID, 3)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	// Newest three, chronological order.
	assert.Equal(t, "c", msgs[0].Content)
	assert.Equal(t, "e", msgs[2].Content)
}

func TestClaimDueTasksIdempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	orgID, agentID := seedOrgAgent(t, db)

	due := time.Now().UTC().Add(-time.Minute)
	_, err := db.CreateTask(ctx, ScheduledTask{
		OrganizationID: orgID,
		AgentID:        agentID,
		Title:          "follow up with lead",
		DueAt:          due,
	})
	require.NoError(t, err)
	_, err = db.CreateTask(ctx, ScheduledTask{
		OrganizationID: orgID,
		AgentID:        agentID,
		Title:          "not due yet",
		DueAt:          time.Now().UTC().Add(time.Hour),
	})
	require.NoError(t, err)

	claimed, err := db.ClaimDueTasks(ctx, time.Now(), 10)
	require.NoError(t, err)
	require.Len(t, claimed, 1)
	assert.Equal(t, "follow up with lead", claimed[0].Title)
	assert.Equal(t, TaskQueued, claimed[0].Status)

	// Second claim must come back empty: the status guard ran the row out.
	again, err := db.ClaimDueTasks(ctx, time.Now(), 10)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestRequeueStaleTasks(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	orgID, agentID := seedOrgAgent(t, db)

	_, err := db.CreateTask(ctx, ScheduledTask{
		OrganizationID: orgID,
		AgentID:        agentID,
		Title:          "stranded",
		DueAt:          time.Now().UTC().Add(-time.Hour),
	})
	require.NoError(t, err)

	claimed, err := db.ClaimDueTasks(ctx, time.Now(), 10)
	require.NoError(t, err)
	require.Len(t, claimed, 1)

	// Nothing stale yet at a 10m threshold.
	n, err := db.RequeueStaleTasks(ctx, 10*time.Minute)
	require.NoError(t, err)
	assert.Zero(t, n)

	// With a zero threshold the queued row counts as stale immediately.
	n, err = db.RequeueStaleTasks(ctx, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	reclaimed, err := db.ClaimDueTasks(ctx, time.Now(), 10)
	require.NoError(t, err)
	require.Len(t, reclaimed, 1)
	assert.Equal(t, "stranded", reclaimed[0].Title)
}

func TestBookClassCapacityAndWaitlist(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	orgID, _ := seedOrgAgent(t, db)

	sessionID, err := db.CreateClassSession(ctx, ClassSession{
		OrganizationID: orgID,
		Name:           "Spin",
		StartsAt:       time.Now().UTC().Add(24 * time.Hour),
		Capacity:       2,
	})
	require.NoError(t, err)

	var clients []string
	for _, name := range []string{"Ann", "Ben", "Cas"} {
		id, err := db.CreateClient(ctx, Client{OrganizationID: orgID, FirstName: name, LastName: "Member", Status: "active"})
		require.NoError(t, err)
		clients = append(clients, id)
	}

	b1, err := db.BookClass(ctx, orgID, clients[0], sessionID)
	require.NoError(t, err)
	assert.Equal(t, BookingBooked, b1.Status)

	b2, err := db.BookClass(ctx, orgID, clients[1], sessionID)
	require.NoError(t, err)
	assert.Equal(t, BookingBooked, b2.Status)

	// Third booking overflows capacity and lands on the waitlist.
	b3, err := db.BookClass(ctx, orgID, clients[2], sessionID)
	require.NoError(t, err)
	assert.Equal(t, BookingWaitlist, b3.Status)

	session, err := db.GetClassSession(ctx, orgID, sessionID)
	require.NoError(t, err)
	assert.Equal(t, 2, session.Booked)
}

func TestCancelBookingIdempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	orgID, _ := seedOrgAgent(t, db)

	sessionID, err := db.CreateClassSession(ctx, ClassSession{
		OrganizationID: orgID,
		Name:           "Yoga",
		StartsAt:       time.Now().UTC().Add(time.Hour),
		Capacity:       10,
	})
	require.NoError(t, err)
	clientID, err := db.CreateClient(ctx, Client{OrganizationID: orgID, FirstName: "Dee", LastName: "Member"})
	require.NoError(t, err)

	b, err := db.BookClass(ctx, orgID, clientID, sessionID)
	require.NoError(t, err)

	changed, err := db.CancelBooking(ctx, orgID, b.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = db.CancelBooking(ctx, orgID, b.ID)
	require.NoError(t, err)
	assert.False(t, changed)

	got, err := db.GetBooking(ctx, orgID, b.ID)
	require.NoError(t, err)
	assert.Equal(t, BookingCancelled, got.Status)
}

func TestAgentLookupScopedToOrganization(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	orgA, agentA := seedOrgAgent(t, db)
	orgB, err := db.CreateOrganization(ctx, "Other Gym", "")
	require.NoError(t, err)

	got, err := db.GetAgent(ctx, orgA, agentA)
	require.NoError(t, err)
	assert.Equal(t, "Front Desk", got.Name)

	// Same agent id through the wrong org reads as missing.
	_, err = db.GetAgent(ctx, orgB, agentA)
	assert.Error(t, err)
}

func TestRevenueBetween(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	orgID, _ := seedOrgAgent(t, db)

	now := time.Now().UTC()
	for _, p := range []Payment{
		{OrganizationID: orgID, AmountCents: 5000, PaidAt: now.Add(-48 * time.Hour)},
		{OrganizationID: orgID, AmountCents: 3000, PaidAt: now.Add(-24 * time.Hour)},
		{OrganizationID: orgID, AmountCents: 9999, Status: "refunded", PaidAt: now.Add(-24 * time.Hour)},
		{OrganizationID: orgID, AmountCents: 7000, PaidAt: now.Add(-30 * 24 * time.Hour)},
	} {
		_, err := db.CreatePayment(ctx, p)
		require.NoError(t, err)
	}

	r, err := db.RevenueBetween(ctx, orgID, now.Add(-72*time.Hour), now)
	require.NoError(t, err)
	assert.EqualValues(t, 8000, r.TotalCents)
	assert.Equal(t, 2, r.PaymentCount)
	assert.Equal(t, "GBP", r.Currency)
}
