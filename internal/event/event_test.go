package event

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commitplay/rps-escrow-backend/testing/suite"
)

func TestName(t *testing.T) {
	assert.Equal(t, "GameStarted", Name(GameStarted{}))
	assert.Equal(t, "PlayerJoined", Name(PlayerJoined{}))
	assert.Equal(t, "FeePaid", Name(FeePaid{}))
	assert.Equal(t, "PlayerMoved", Name(PlayerMoved{}))
	assert.Equal(t, "GameResolved", Name(GameResolved{}))
	assert.Equal(t, "GameCanceled", Name(GameCanceled{}))
	assert.Equal(t, "SoreLoserForfeited", Name(SoreLoserForfeited{}))
	assert.Equal(t, "BalanceWithdrawn", Name(BalanceWithdrawn{}))
	assert.Equal(t, "Unknown", Name(struct{}{}))
}

func TestRedisEmitter(t *testing.T) {
	ctx, st := suite.New(t)

	emitter := NewRedisEmitter(st.Storage, st.Logger)

	subscription := st.Storage.Subscribe(ctx, Channel)
	t.Cleanup(func() {
		_ = subscription.Close()
	})

	// wait for the subscription before publishing
	_, err := subscription.Receive(ctx)
	require.NoError(t, err)

	emitter.Emit(ctx, GameStarted{
		GameID:   "abc",
		Host:     "alice",
		Deadline: time.Now().UTC(),
		Wager:    5000,
	})

	select {
	case message := <-subscription.Channel():
		var got envelope
		require.NoError(t, json.Unmarshal([]byte(message.Payload), &got))
		assert.Equal(t, "GameStarted", got.Type)

		var started GameStarted
		require.NoError(t, json.Unmarshal(got.Payload, &started))
		assert.Equal(t, "abc", started.GameID)
		assert.Equal(t, int64(5000), started.Wager)
	case <-time.After(10 * time.Second):
		t.Fatal("no event received on the channel")
	}
}
