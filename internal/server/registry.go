// Package server coordinates user registration and room membership through
// the Registry type, the single source of truth for who is online and who
// is where.
package server

import (
	"sort"
	"sync"

	"github.com/samber/lo"
)

// DefaultRoom is the always-present fallback room every client starts in.
const DefaultRoom = "general"

// session is the registry's view of one registered connection.
type session struct {
	username string
	room     string
}

// RoomSummary describes one room and its current population.
type RoomSummary struct {
	Name    string
	Members int
}

// Registry maps live connections to usernames and room names to member
// sets. One mutex guards both mappings; every mutation and multi-step read
// runs under it, and reads that feed network writes return copies so the
// lock is never held during I/O. Rooms are created lazily on first join and
// persist even when empty.
type Registry struct {
	mu       sync.Mutex
	sessions map[*Client]session
	byName   map[string]*Client
	rooms    map[string]map[*Client]struct{}
}

// NewRegistry creates an empty registry seeded with the given rooms. The
// default room exists regardless of the seed list.
func NewRegistry(seedRooms ...string) *Registry {
	r := &Registry{
		sessions: make(map[*Client]session),
		byName:   make(map[string]*Client),
		rooms:    make(map[string]map[*Client]struct{}),
	}
	r.rooms[DefaultRoom] = make(map[*Client]struct{})
	for _, room := range seedRooms {
		if _, ok := r.rooms[room]; !ok {
			r.rooms[room] = make(map[*Client]struct{})
		}
	}
	return r
}

// Register claims username for c and places it in the default room, both
// under one critical section. It fails with ErrUsernameTaken if the name
// already belongs to a live connection; the caller must then close c
// without it ever joining a room.
func (r *Registry) Register(c *Client, username string) error {
	if username == "" {
		return ErrEmptyUsername
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byName[username]; taken {
		return ErrUsernameTaken
	}
	r.sessions[c] = session{username: username, room: DefaultRoom}
	r.byName[username] = c
	r.membersLocked(DefaultRoom)[c] = struct{}{}
	return nil
}

// Unregister removes c from the user map and from every room atomically.
// It reports the username and room c held, and is a no-op for connections
// that never registered or were already removed.
func (r *Registry) Unregister(c *Client) (username, room string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[c]
	if !ok {
		return "", "", false
	}
	delete(r.sessions, c)
	delete(r.byName, sess.username)
	for _, members := range r.rooms {
		delete(members, c)
	}
	return sess.username, sess.room, true
}

// Move atomically transfers c from its current room to the named room,
// creating the destination lazily. It returns the room c came from.
func (r *Registry) Move(c *Client, to string) (from string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[c]
	if !ok {
		return "", ErrNotRegistered
	}
	from = sess.room
	if members, ok := r.rooms[from]; ok {
		delete(members, c)
	}
	r.membersLocked(to)[c] = struct{}{}
	sess.room = to
	r.sessions[c] = sess
	return from, nil
}

// MembersOf returns a snapshot copy of the room's member set. The copy lets
// broadcast deliveries run without the registry lock, so one slow send
// never stalls unrelated membership changes.
func (r *Registry) MembersOf(room string) []*Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[room]
	if !ok {
		return nil
	}
	return lo.Keys(members)
}

// UsernameOf reports the username registered for c, if any.
func (r *Registry) UsernameOf(c *Client) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[c]
	return sess.username, ok
}

// RoomOf reports the room c currently occupies, if registered.
func (r *Registry) RoomOf(c *Client) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sess, ok := r.sessions[c]
	return sess.room, ok
}

// FindByUsername resolves a username to its live connection.
func (r *Registry) FindByUsername(username string) (*Client, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byName[username]
	return c, ok
}

// AllUsernames returns the usernames of every connected user, sorted for
// stable display.
func (r *Registry) AllUsernames() []string {
	r.mu.Lock()
	names := lo.Keys(r.byName)
	r.mu.Unlock()

	sort.Strings(names)
	return names
}

// RoomSummaries returns every known room with its member count, sorted by
// room name.
func (r *Registry) RoomSummaries() []RoomSummary {
	r.mu.Lock()
	summaries := make([]RoomSummary, 0, len(r.rooms))
	for name, members := range r.rooms {
		summaries = append(summaries, RoomSummary{Name: name, Members: len(members)})
	}
	r.mu.Unlock()

	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Name < summaries[j].Name })
	return summaries
}

// membersLocked returns the member set for room, creating it if absent.
// The caller must hold r.mu.
func (r *Registry) membersLocked(room string) map[*Client]struct{} {
	members, ok := r.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		r.rooms[room] = members
	}
	return members
}
