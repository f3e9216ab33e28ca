// Package server implements best-effort message fan-out via the Broadcaster
// type. Deliveries are independent per target: a dead peer never blocks or
// aborts the rest of the batch, and never triggers its own deregistration —
// that is the peer's own read loop's job.
package server

import "log/slog"

// DeliveryStatus reports the outcome of one delivery attempt.
type DeliveryStatus int

const (
	// Delivered means the record was written to the target connection.
	Delivered DeliveryStatus = iota
	// Unreachable means the write failed; the target is presumed gone.
	Unreachable
)

// DeliveryResult is the per-target outcome of a broadcast or direct send.
// Failures are carried here instead of being swallowed so callers and tests
// can distinguish dead peers from programming errors.
type DeliveryResult struct {
	Target *Client
	Status DeliveryStatus
	Err    error
}

// Broadcaster fans records out to room members and delivers single-target
// records, always working from registry snapshots taken outside any send.
type Broadcaster struct {
	registry *Registry
	log      *slog.Logger
}

// NewBroadcaster creates a broadcaster over the given registry.
func NewBroadcaster(registry *Registry, log *slog.Logger) *Broadcaster {
	return &Broadcaster{registry: registry, log: log}
}

// Broadcast sends body to every current member of room except sender, when
// one is given. A nil sender attributes the record to the server and
// excludes nobody. The returned results hold one entry per attempted
// target, in snapshot order.
func (b *Broadcaster) Broadcast(room, body string, sender *Client, t RecordType) []DeliveryResult {
	senderName := ""
	if sender != nil {
		senderName, _ = b.registry.UsernameOf(sender)
	}
	rec := newRoomRecord(t, room, senderName, body)

	members := b.registry.MembersOf(room)
	results := make([]DeliveryResult, 0, len(members))
	for _, member := range members {
		if member == sender {
			continue
		}
		results = append(results, b.deliver(member, rec))
	}
	return results
}

// SendTo delivers one record to a single connection with the same
// best-effort semantics as a broadcast.
func (b *Broadcaster) SendTo(target *Client, t RecordType, body, sender string) DeliveryResult {
	return b.deliver(target, newRecord(t, sender, body))
}

// DM delivers a direct message record to target, bypassing room membership.
func (b *Broadcaster) DM(target *Client, from, body string) DeliveryResult {
	return b.deliver(target, newRecord(RecordDM, from, body))
}

func (b *Broadcaster) deliver(target *Client, rec Record) DeliveryResult {
	if err := target.conn.WriteRecord(rec); err != nil {
		b.log.Debug("record delivery failed", "target", target.Addr(), "type", rec.Type, "err", err)
		return DeliveryResult{Target: target, Status: Unreachable, Err: err}
	}
	return DeliveryResult{Target: target, Status: Delivered}
}
