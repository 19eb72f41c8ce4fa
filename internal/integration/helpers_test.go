package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/ticket-booking-engine/internal/app"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82/webhook"
)

// Seeded catalog. Seat prices for the active showtime are 12.00 * multiplier.
const (
	activeShowtimeID   = 1
	inactiveShowtimeID = 2
	standardSeatID     = 1 // A-1, 1.00
	premiumSeatID      = 2 // A-2, 1.25
	backSeatID         = 3 // B-1, 1.50
	otherHallSeatID    = 4
)

var keysToIgnore = map[string]struct{}{
	"timestamp": {},
	"requestId": {},
	"createdAt": {},
}

func prepareRequest(method, path string, body io.Reader, headers map[string]string, cookies []*http.Cookie) *http.Request {
	req := httptest.NewRequest(method, path, body)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	for _, c := range cookies {
		req.AddCookie(c)
	}

	return req
}

func jsonBody(t testing.TB, v any) io.Reader {
	b, err := json.Marshal(v)
	require.NoError(t, err)

	return bytes.NewReader(b)
}

func compareResponse(t testing.TB, body io.Reader, expectedResponse string) {
	var actual map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&actual))

	cleanMap(actual)

	var expected map[string]any
	require.NoError(t, json.Unmarshal([]byte(expectedResponse), &expected))

	// ignore indetermistic fields while comparing
	opts := cmpopts.IgnoreMapEntries(func(k string, _ any) bool {
		_, ok := keysToIgnore[k]
		return ok
	})

	if diff := cmp.Diff(expected, actual, opts); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

func cleanMap(m map[string]any) {
	for k := range m {
		if _, ok := keysToIgnore[k]; ok {
			delete(m, k)
			continue
		}
		if nested, ok := m[k].(map[string]any); ok {
			cleanMap(nested)
		}
	}
}

func decodeResponse[T any](t testing.TB, res *http.Response) T {
	var v T
	require.NoError(t, json.NewDecoder(res.Body).Decode(&v))

	return v
}

// sessionCookie stores an authenticated session for userID and returns the
// cookie that carries it.
func sessionCookie(t testing.TB, testApp *TestApp, userID int) *http.Cookie {
	ctx, err := testApp.SessionManager.Load(context.Background(), "")
	require.NoError(t, err)

	testApp.SessionManager.Put(ctx, app.SessionKeyUserId.String(), userID)

	token, _, err := testApp.SessionManager.Commit(ctx)
	require.NoError(t, err)

	return &http.Cookie{Name: testApp.SessionManager.Cookie.Name, Value: token}
}

// signedWebhook builds a payment intent event signed with the test secret.
func signedWebhook(t testing.TB, eventID, eventType, intentID string) ([]byte, string) {
	payload := fmt.Sprintf(`{
		"id": %q,
		"object": "event",
		"type": %q,
		"api_version": "2025-03-31.basil",
		"data": {"object": {"id": %q, "object": "payment_intent"}}
	}`, eventID, eventType, intentID)

	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    webhookSecret,
		Timestamp: time.Now(),
	})

	return signed.Payload, signed.Header
}

func truncateTables(t testing.TB, db *pgxpool.Pool) {
	_, err := db.Exec(context.Background(),
		"TRUNCATE payments, tickets, seats, showtimes, halls RESTART IDENTITY CASCADE")
	require.NoError(t, err)
}

func seedCatalog(t testing.TB, db *pgxpool.Pool) {
	start := time.Now().Add(48 * time.Hour).Truncate(time.Minute)

	statements := []struct {
		query string
		args  []any
	}{
		{`INSERT INTO halls (name) VALUES ('Hall 1'), ('Hall 2')`, nil},
		{
			`INSERT INTO showtimes (hall_id, start_time, end_time, base_price, is_active)
			VALUES (1, $1, $2, 12.00, TRUE), (2, $1, $2, 9.50, FALSE)`,
			[]any{start, start.Add(2 * time.Hour)},
		},
		{
			`INSERT INTO seats (hall_id, seat_row, seat_number, price_multiplier)
			VALUES (1, 'A', 1, 1.00), (1, 'A', 2, 1.25), (1, 'B', 1, 1.50), (2, 'A', 1, 1.00)`,
			nil,
		},
	}

	for _, stmt := range statements {
		_, err := db.Exec(context.Background(), stmt.query, stmt.args...)
		require.NoError(t, err)
	}
}

func ticketStatus(t testing.TB, db *pgxpool.Pool, ticketID int) string {
	var status string
	err := db.QueryRow(context.Background(), "SELECT status FROM tickets WHERE id = $1", ticketID).Scan(&status)
	require.NoError(t, err)

	return status
}

func paymentState(t testing.TB, db *pgxpool.Pool, intentID string) (string, *int) {
	var (
		status   string
		ticketID *int
	)

	err := db.QueryRow(context.Background(),
		"SELECT status, ticket_id FROM payments WHERE provider_intent_id = $1", intentID,
	).Scan(&status, &ticketID)
	require.NoError(t, err)

	return status, ticketID
}

// ageTicket moves a ticket's creation time into the past.
func ageTicket(t testing.TB, db *pgxpool.Pool, ticketID int, age time.Duration) {
	_, err := db.Exec(context.Background(),
		"UPDATE tickets SET created_at = created_at - make_interval(secs => $1) WHERE id = $2",
		age.Seconds(), ticketID)
	require.NoError(t, err)
}
