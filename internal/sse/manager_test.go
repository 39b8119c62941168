package sse

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/pinshelf/pinshelf-server/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func startManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(nil)
	done := make(chan struct{})
	go func() {
		m.Start(context.Background())
		close(done)
	}()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = m.Shutdown(ctx)
		<-done
	})
	return m
}

func receive(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case e := <-c.Events:
		return e
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func assertNothing(t *testing.T, c *Client) {
	t.Helper()
	select {
	case e := <-c.Events:
		t.Fatalf("unexpected event %s", e.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestManager_OwnerScopedEvents(t *testing.T) {
	m := startManager(t)

	alice, err := m.Connect(Subscription{UserID: "user-a"})
	require.NoError(t, err)
	bob, err := m.Connect(Subscription{UserID: "user-b"})
	require.NoError(t, err)
	assert.Equal(t, 2, m.ClientCount())

	m.Emit(NewRecipeEvent(EventRecipeUpdated, &domain.Recipe{ID: "rcp-1", UserID: "user-a"}))

	e := receive(t, alice)
	assert.Equal(t, EventRecipeUpdated, e.Type)
	data, ok := e.Data.(RecipeEventData)
	require.True(t, ok)
	assert.Equal(t, "rcp-1", data.Recipe.ID)
	assertNothing(t, bob)
}

func TestManager_CatalogEventsReachEveryone(t *testing.T) {
	m := startManager(t)

	alice, err := m.Connect(Subscription{UserID: "user-a"})
	require.NoError(t, err)
	bob, err := m.Connect(Subscription{UserID: "user-b"})
	require.NoError(t, err)

	m.Emit(NewProductEvent(EventProductUpdated, &domain.Product{ID: "prd-1"}))

	assert.Equal(t, EventProductUpdated, receive(t, alice).Type)
	assert.Equal(t, EventProductUpdated, receive(t, bob).Type)
}

func TestManager_RecipeSubscription(t *testing.T) {
	m := startManager(t)

	editor, err := m.Connect(Subscription{UserID: "user-a", RecipeID: "rcp-1"})
	require.NoError(t, err)

	m.Emit(NewPinEvent(EventPinCreated, "user-a", &domain.RecipePin{ID: "pin-9", RecipeID: "rcp-2"}))
	m.Emit(NewPinEvent(EventPinUpdated, "user-a", &domain.RecipePin{ID: "pin-1", RecipeID: "rcp-1"}))
	m.Emit(NewProductEvent(EventProductUpdated, &domain.Product{ID: "prd-1"}))

	e := receive(t, editor)
	assert.Equal(t, EventPinUpdated, e.Type)
	assert.Equal(t, "rcp-1", e.RecipeID)
	assert.Equal(t, EventProductUpdated, receive(t, editor).Type)
	assertNothing(t, editor)
}

func TestSubscription_Wants(t *testing.T) {
	tests := []struct {
		name  string
		sub   Subscription
		event Event
		want  bool
	}{
		{"own recipe event", Subscription{UserID: "u1"}, Event{UserID: "u1", RecipeID: "r1"}, true},
		{"other owner", Subscription{UserID: "u1"}, Event{UserID: "u2"}, false},
		{"catalog event", Subscription{UserID: "u1", RecipeID: "r1"}, Event{}, true},
		{"watched recipe", Subscription{UserID: "u1", RecipeID: "r1"}, Event{UserID: "u1", RecipeID: "r1"}, true},
		{"other recipe", Subscription{UserID: "u1", RecipeID: "r1"}, Event{UserID: "u1", RecipeID: "r2"}, false},
		{"owner event without recipe", Subscription{UserID: "u1", RecipeID: "r1"}, Event{UserID: "u1"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sub.wants(tt.event))
		})
	}
}

func TestManager_Disconnect(t *testing.T) {
	m := startManager(t)

	c, err := m.Connect(Subscription{UserID: "user-a"})
	require.NoError(t, err)
	m.Disconnect(c.ID)
	m.Disconnect(c.ID)

	assert.Equal(t, 0, m.ClientCount())
	_, open := <-c.Done
	assert.False(t, open)
}

func TestManager_ShutdownClosesClients(t *testing.T) {
	m := NewManager(nil)
	done := make(chan struct{})
	go func() {
		m.Start(context.Background())
		close(done)
	}()

	c, err := m.Connect(Subscription{UserID: "user-a"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, m.Shutdown(ctx))
	<-done

	_, open := <-c.Done
	assert.False(t, open)
	assert.Equal(t, 0, m.ClientCount())

	// Emitting after shutdown is a no-op.
	m.Emit(NewHeartbeatEvent())
	require.NoError(t, m.Shutdown(ctx))
}

func TestManager_ShutdownWithoutStart(t *testing.T) {
	m := NewManager(nil)
	c, err := m.Connect(Subscription{UserID: "user-a"})
	require.NoError(t, err)

	require.NoError(t, m.Shutdown(context.Background()))
	_, open := <-c.Done
	assert.False(t, open)
}
