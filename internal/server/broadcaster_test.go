package server

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBroadcaster_ExcludesSender(t *testing.T) {
	env := newTestEnv()
	alice, aliceConn := env.registered(t, "alice")
	_, bobConn := env.registered(t, "bob")
	_, carolConn := env.registered(t, "carol")

	results := env.broadcaster.Broadcast(DefaultRoom, "hello", alice, RecordMessage)

	require.Len(t, results, 2)
	for _, res := range results {
		require.Equal(t, Delivered, res.Status)
	}
	require.Empty(t, aliceConn.allRecords())

	for _, conn := range []*fakeConn{bobConn, carolConn} {
		recs := conn.allRecords()
		require.Len(t, recs, 1)
		require.Equal(t, RecordMessage, recs[0].Type)
		require.Equal(t, DefaultRoom, recs[0].Room)
		require.Equal(t, "alice", recs[0].Sender)
		require.Equal(t, "hello", recs[0].Message)
		require.NotEmpty(t, recs[0].Time)
	}
}

func TestBroadcaster_NilSenderReachesEveryoneAsServer(t *testing.T) {
	env := newTestEnv()
	_, aliceConn := env.registered(t, "alice")
	_, bobConn := env.registered(t, "bob")

	results := env.broadcaster.Broadcast(DefaultRoom, "bob joined the chat!", nil, RecordSystem)

	require.Len(t, results, 2)
	for _, conn := range []*fakeConn{aliceConn, bobConn} {
		recs := conn.allRecords()
		require.Len(t, recs, 1)
		require.Equal(t, RecordSystem, recs[0].Type)
		require.Equal(t, ServerSender, recs[0].Sender)
	}
}

func TestBroadcaster_PartialFailureDoesNotAbortBatch(t *testing.T) {
	env := newTestEnv()
	alice, _ := env.registered(t, "alice")
	bob, bobConn := env.registered(t, "bob")
	_, carolConn := env.registered(t, "carol")
	bobConn.failWrites = true

	results := env.broadcaster.Broadcast(DefaultRoom, "hi", alice, RecordMessage)

	require.Len(t, results, 2)
	byTarget := make(map[*Client]DeliveryResult, len(results))
	for _, res := range results {
		byTarget[res.Target] = res
	}
	require.Equal(t, Unreachable, byTarget[bob].Status)
	require.Error(t, byTarget[bob].Err)
	require.Len(t, carolConn.allRecords(), 1)

	// Delivery failure never deregisters the unreachable target; that is
	// its own read loop's job.
	_, ok := env.registry.UsernameOf(bob)
	require.True(t, ok)
}

func TestBroadcaster_UnknownRoomDeliversNothing(t *testing.T) {
	env := newTestEnv()
	require.Empty(t, env.broadcaster.Broadcast("nowhere", "hi", nil, RecordSystem))
}

func TestBroadcaster_SendTo(t *testing.T) {
	env := newTestEnv()
	alice, aliceConn := env.registered(t, "alice")

	res := env.broadcaster.SendTo(alice, RecordError, "Unknown command.", ServerSender)
	require.Equal(t, Delivered, res.Status)

	recs := aliceConn.allRecords()
	require.Len(t, recs, 1)
	require.Equal(t, RecordError, recs[0].Type)
	require.Empty(t, recs[0].Room)

	aliceConn.failWrites = true
	res = env.broadcaster.SendTo(alice, RecordSystem, "ping", ServerSender)
	require.Equal(t, Unreachable, res.Status)
}

func TestBroadcaster_DM(t *testing.T) {
	env := newTestEnv()
	bob, bobConn := env.registered(t, "bob")

	res := env.broadcaster.DM(bob, "alice", "hello")
	require.Equal(t, Delivered, res.Status)

	recs := bobConn.allRecords()
	require.Len(t, recs, 1)
	require.Equal(t, RecordDM, recs[0].Type)
	require.Equal(t, "alice", recs[0].Sender)
	require.Equal(t, "hello", recs[0].Message)
	require.Empty(t, recs[0].Room)
}
