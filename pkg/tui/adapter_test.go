package tui

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilkoid/sortbot/pkg/events"
)

func TestReceiveEventCmd(t *testing.T) {
	em := events.NewChanEmitter(1)
	em.Emit(context.Background(), events.Event{Type: events.EventSaved, Data: events.SavedData{ID: 3}})

	cmd := ReceiveEventCmd(em.Subscribe(), ToEventMsg)
	require.NotNil(t, cmd)

	msg, ok := cmd().(EventMsg)
	require.True(t, ok)
	assert.Equal(t, events.EventSaved, msg.Type)
	assert.Equal(t, int64(3), msg.Data.(events.SavedData).ID)
}

func TestReceiveEventCmd_Closed(t *testing.T) {
	em := events.NewChanEmitter(0)
	em.Close()

	cmd := WaitForEvent(em.Subscribe(), ToEventMsg)
	assert.Nil(t, cmd())
}

func TestReceiveEventCmd_NilSubscriber(t *testing.T) {
	assert.Nil(t, ReceiveEventCmd(nil, ToEventMsg))
}
