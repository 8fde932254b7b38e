package feed

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kirsrus/labsite/model"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFeed(t *testing.T) {
	_, err := NewFeed(context.Background(), nil)
	assert.Error(t, err)
}

func TestFeedBroadcast(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	feed, err := NewFeed(ctx, &ConfigFeed{})
	require.NoError(t, err)
	srv := httptest.NewServer(feed)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	assert.Eventually(t, func() bool { return feed.Count() == 1 }, 2*time.Second, 10*time.Millisecond)

	sent := model.FeedEvent{
		Kind:        model.FeedKindTemperature,
		Room:        "101",
		Temperature: 22.5,
		Message:     "Принято: аудитория 101, температура 22.5",
	}
	feed.Broadcast(sent)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got model.FeedEvent
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, sent.Room, got.Room)
	assert.Equal(t, sent.Temperature, got.Temperature)
	assert.Equal(t, sent.Message, got.Message)

	_ = conn.Close()
	assert.Eventually(t, func() bool { return feed.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestFeedBroadcastWithoutSubscribers(t *testing.T) {
	feed, err := NewFeed(context.Background(), &ConfigFeed{})
	require.NoError(t, err)
	assert.NotPanics(t, func() {
		feed.Broadcast(model.FeedEvent{Room: "101"})
	})
}

func TestFeedSubscribe(t *testing.T) {
	feed, err := NewFeed(context.Background(), &ConfigFeed{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	events := feed.Subscribe(ctx)
	assert.Equal(t, 1, feed.Count())

	feed.Broadcast(model.FeedEvent{Room: "101", Temperature: 21})
	select {
	case got := <-events:
		assert.Equal(t, "101", got.Room)
	case <-time.After(2 * time.Second):
		t.Fatal("событие не получено")
	}

	cancel()
	assert.Eventually(t, func() bool { return feed.Count() == 0 }, 2*time.Second, 10*time.Millisecond)
}
