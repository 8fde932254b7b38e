package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kirsrus/labsite/model"
	"github.com/kirsrus/labsite/service/feed"

	"github.com/gorilla/websocket"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJournal struct {
	entries []model.JournalEntry
	limit   int
	err     error
}

func (f *fakeJournal) Save(report model.TemperatureReport) (*model.JournalEntry, error) {
	return nil, errors.NotImplementedf("save")
}

func (f *fakeJournal) Last(limit int) ([]model.JournalEntry, error) {
	f.limit = limit
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.entries) {
		return f.entries[:limit], nil
	}
	return f.entries, nil
}

func (f *fakeJournal) Clean(int) error {
	return nil
}

type gqlResponse struct {
	Data struct {
		Temperatures []struct {
			ID          string  `json:"id"`
			Room        string  `json:"room"`
			Temperature float64 `json:"temperature"`
			CreatedAt   string  `json:"createdAt"`
		} `json:"temperatures"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func post(t *testing.T, srv http.Handler, query string, variables map[string]interface{}) gqlResponse {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{"query": query, "variables": variables})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/graphql", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	var resp gqlResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func TestNewResolver(t *testing.T) {
	_, err := NewResolver(nil)
	assert.Error(t, err)

	resolver, err := NewResolver(&ConfigResolver{})
	require.NoError(t, err)
	assert.Equal(t, maxLimit, resolver.maxLimit)
}

func TestSchema(t *testing.T) {
	schema := Schema()
	require.NotNil(t, schema.Query)
	require.NotNil(t, schema.Subscription)
	assert.NotNil(t, schema.Query.Fields.ForName("temperatures"))
	assert.NotNil(t, schema.Subscription.Fields.ForName("temperatureAccepted"))
}

func TestQueryTemperatures(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	entries := []model.JournalEntry{
		{ID: 3, Room: "103", Temperature: 23.5, CreatedAt: created},
		{ID: 2, Room: "102", Temperature: 22, CreatedAt: created},
		{ID: 1, Room: "101", Temperature: 21, CreatedAt: created},
	}

	tests := []struct {
		name      string
		query     string
		variables map[string]interface{}
		maxLimit  int
		limit     int
		rooms     []string
		errors    bool
	}{
		{
			name:  "лимит по умолчанию",
			query: `{ temperatures { id room temperature createdAt } }`,
			limit: defaultLimit,
			rooms: []string{"103", "102", "101"},
		},
		{
			name:  "лимит литералом",
			query: `{ temperatures(limit: 2) { room } }`,
			limit: 2,
			rooms: []string{"103", "102"},
		},
		{
			name:      "лимит переменной",
			query:     `query Last($n: Int) { temperatures(limit: $n) { room } }`,
			variables: map[string]interface{}{"n": 1},
			limit:     1,
			rooms:     []string{"103"},
		},
		{
			name:     "лимит больше наибольшего",
			query:    `{ temperatures(limit: 100) { room } }`,
			maxLimit: 2,
			limit:    2,
			rooms:    []string{"103", "102"},
		},
		{
			name:   "отрицательный лимит",
			query:  `{ temperatures(limit: -1) { room } }`,
			errors: true,
		},
		{
			name:   "неизвестное поле",
			query:  `{ temperatures { humidity } }`,
			errors: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			journal := &fakeJournal{entries: entries}
			resolver, err := NewResolver(&ConfigResolver{Journal: journal, MaxLimit: tt.maxLimit})
			require.NoError(t, err)

			resp := post(t, NewHandler(resolver), tt.query, tt.variables)
			if tt.errors {
				assert.NotEmpty(t, resp.Errors)
				return
			}
			require.Empty(t, resp.Errors)
			assert.Equal(t, tt.limit, journal.limit)
			rooms := make([]string, 0)
			for _, v := range resp.Data.Temperatures {
				rooms = append(rooms, v.Room)
			}
			assert.Equal(t, tt.rooms, rooms)
		})
	}
}

func TestQueryTemperaturesFields(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	resolver, err := NewResolver(&ConfigResolver{Journal: &fakeJournal{entries: []model.JournalEntry{
		{ID: 7, Room: "101", Temperature: 22.5, CreatedAt: created},
	}}})
	require.NoError(t, err)

	resp := post(t, NewHandler(resolver), `{ temperatures { id room temperature createdAt } }`, nil)
	require.Empty(t, resp.Errors)
	require.Len(t, resp.Data.Temperatures, 1)
	got := resp.Data.Temperatures[0]
	assert.Equal(t, "7", got.ID)
	assert.Equal(t, 22.5, got.Temperature)
	assert.Equal(t, "2026-03-01T10:00:00Z", got.CreatedAt)
}

func TestQueryTemperaturesWithoutJournal(t *testing.T) {
	resolver, err := NewResolver(&ConfigResolver{})
	require.NoError(t, err)

	resp := post(t, NewHandler(resolver), `{ temperatures { room } }`, nil)
	assert.Empty(t, resp.Errors)
	assert.Empty(t, resp.Data.Temperatures)
}

func TestQueryTemperaturesJournalError(t *testing.T) {
	resolver, err := NewResolver(&ConfigResolver{Journal: &fakeJournal{err: errors.New("база недоступна")}})
	require.NoError(t, err)

	resp := post(t, NewHandler(resolver), `{ temperatures { room } }`, nil)
	require.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0].Message, "база недоступна")
}

type wsMessage struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Чтение сообщений подписки до первого с типом kind
func readMessage(t *testing.T, conn *websocket.Conn, kind string) wsMessage {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		var msg wsMessage
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == kind {
			return msg
		}
		require.Contains(t, []string{"ka", "connection_ack"}, msg.Type, string(msg.Payload))
	}
}

func TestSubscriptionTemperatureAccepted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := feed.NewFeed(ctx, &feed.ConfigFeed{})
	require.NoError(t, err)
	resolver, err := NewResolver(&ConfigResolver{Feed: events})
	require.NoError(t, err)
	srv := httptest.NewServer(NewHandler(resolver))
	defer srv.Close()

	dialer := websocket.Dialer{Subprotocols: []string{"graphql-ws"}}
	conn, _, err := dialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	require.NoError(t, conn.WriteJSON(wsMessage{Type: "connection_init"}))
	readMessage(t, conn, "connection_ack")

	payload, err := json.Marshal(map[string]string{
		"query": `subscription { temperatureAccepted { room temperature message } }`,
	})
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(wsMessage{ID: "1", Type: "start", Payload: payload}))

	assert.Eventually(t, func() bool { return events.Count() == 1 }, 3*time.Second, 10*time.Millisecond)
	events.Broadcast(model.FeedEvent{
		Kind:        model.FeedKindTemperature,
		Room:        "101",
		Temperature: 22.5,
		Message:     "Принято: аудитория 101, температура 22.5",
	})

	msg := readMessage(t, conn, "data")
	assert.Equal(t, "1", msg.ID)
	var data struct {
		Data struct {
			TemperatureAccepted struct {
				Room        string  `json:"room"`
				Temperature float64 `json:"temperature"`
				Message     string  `json:"message"`
			} `json:"temperatureAccepted"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(msg.Payload, &data))
	assert.Equal(t, "101", data.Data.TemperatureAccepted.Room)
	assert.Equal(t, 22.5, data.Data.TemperatureAccepted.Temperature)
	assert.Equal(t, "Принято: аудитория 101, температура 22.5", data.Data.TemperatureAccepted.Message)

	require.NoError(t, conn.WriteJSON(wsMessage{ID: "1", Type: "stop"}))
	assert.Eventually(t, func() bool { return events.Count() == 0 }, 3*time.Second, 10*time.Millisecond)
}

func TestSubscriptionWithoutFeed(t *testing.T) {
	resolver, err := NewResolver(&ConfigResolver{})
	require.NoError(t, err)

	_, err = resolver.TemperatureAccepted(context.Background())
	assert.Error(t, err)
}
