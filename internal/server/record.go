// Package server defines the wire records delivered to chat clients and
// helpers for constructing them.
package server

import "time"

// RecordType classifies an outbound record.
type RecordType string

// The closed set of record types a client can receive.
const (
	RecordMessage RecordType = "message"
	RecordEcho    RecordType = "echo"
	RecordDM      RecordType = "dm"
	RecordSystem  RecordType = "system"
	RecordError   RecordType = "error"
)

// ServerSender is the sender name used for records not attributable to any user.
const ServerSender = "Server"

// Record is one server-to-client wire record. Records are serialized as
// newline-delimited JSON, one encoder write per record. Room is set only
// for records fanned out to a room.
type Record struct {
	Type    RecordType `json:"type"`
	Room    string     `json:"room,omitempty"`
	Sender  string     `json:"sender"`
	Message string     `json:"message"`
	Time    string     `json:"time"`
}

func newRecord(t RecordType, sender, message string) Record {
	if sender == "" {
		sender = ServerSender
	}
	return Record{
		Type:    t,
		Sender:  sender,
		Message: message,
		Time:    time.Now().Format("15:04"),
	}
}

func newRoomRecord(t RecordType, room, sender, message string) Record {
	rec := newRecord(t, sender, message)
	rec.Room = room
	return rec
}
