// Package server interprets client input via the CommandProcessor: slash
// commands mutate the registry and reply to the issuer, everything else is
// a chat message for the issuer's current room.
package server

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// CommandProcessor turns one line of client input into registry mutations,
// replies to the issuing connection, and room broadcasts. It holds no state
// of its own; all shared state lives in the registry.
type CommandProcessor struct {
	registry    *Registry
	broadcaster *Broadcaster
}

// NewCommandProcessor creates a processor over the given registry and
// broadcaster.
func NewCommandProcessor(registry *Registry, broadcaster *Broadcaster) *CommandProcessor {
	return &CommandProcessor{registry: registry, broadcaster: broadcaster}
}

// Process handles one trimmed, non-empty input line from c. The caller has
// already intercepted /quit; anything else starting with "/" is dispatched
// as a command, the rest is chat.
func (p *CommandProcessor) Process(c *Client, username, input string) {
	if !strings.HasPrefix(input, "/") {
		p.chat(c, input)
		return
	}

	// Only the first two tokens are split off so a DM body keeps its spaces.
	parts := strings.SplitN(input, " ", 3)
	switch strings.ToLower(parts[0]) {
	case "/rooms":
		p.rooms(c)
	case "/users":
		p.users(c)
	case "/list":
		p.list(c)
	case "/join":
		if len(parts) < 2 || strings.TrimSpace(parts[1]) == "" {
			p.unknown(c)
			return
		}
		p.join(c, username, strings.ToLower(strings.TrimSpace(parts[1])))
	case "/leave":
		p.leave(c, username)
	case "/dm":
		if len(parts) < 3 {
			p.unknown(c)
			return
		}
		p.dm(c, username, parts[1], parts[2])
	default:
		p.unknown(c)
	}
}

// chat broadcasts a plain message to the issuer's current room, sender
// excluded, then confirms with an echo record to the sender only.
func (p *CommandProcessor) chat(c *Client, body string) {
	room, ok := p.registry.RoomOf(c)
	if !ok {
		return
	}
	p.broadcaster.Broadcast(room, body, c, RecordMessage)
	p.broadcaster.SendTo(c, RecordEcho, fmt.Sprintf("[You → #%s]: %s", room, body), ServerSender)
}

func (p *CommandProcessor) rooms(c *Client) {
	entries := lo.Map(p.registry.RoomSummaries(), func(s RoomSummary, _ int) string {
		return fmt.Sprintf("#%s (%d users)", s.Name, s.Members)
	})
	p.reply(c, "Available rooms: "+strings.Join(entries, ", "))
}

func (p *CommandProcessor) users(c *Client) {
	room, ok := p.registry.RoomOf(c)
	if !ok {
		return
	}
	names := lo.FilterMap(p.registry.MembersOf(room), func(member *Client, _ int) (string, bool) {
		return p.registry.UsernameOf(member)
	})
	sort.Strings(names)
	p.reply(c, fmt.Sprintf("Users in #%s: %s", room, strings.Join(names, ", ")))
}

func (p *CommandProcessor) list(c *Client) {
	p.reply(c, "Online users: "+strings.Join(p.registry.AllUsernames(), ", "))
}

// join moves the issuer into room, creating it on first use. The old room
// hears a departure notice, the new room (issuer included) a join notice.
func (p *CommandProcessor) join(c *Client, username, room string) {
	from, err := p.registry.Move(c, room)
	if err != nil {
		return
	}
	p.broadcaster.Broadcast(from, username+" left", nil, RecordSystem)
	p.broadcaster.Broadcast(room, fmt.Sprintf("%s joined #%s", username, room), nil, RecordSystem)
	p.reply(c, "Joined #"+room)
}

// leave returns the issuer to the default room.
func (p *CommandProcessor) leave(c *Client, username string) {
	from, err := p.registry.Move(c, DefaultRoom)
	if err != nil {
		return
	}
	p.broadcaster.Broadcast(from, fmt.Sprintf("%s left #%s", username, from), nil, RecordSystem)
	p.broadcaster.Broadcast(DefaultRoom, username+" returned to #"+DefaultRoom, nil, RecordSystem)
	p.reply(c, "Returned to #"+DefaultRoom)
}

// dm delivers body to the named user's connection if one is online. Either
// an unknown name or a failed delivery looks the same to the issuer.
func (p *CommandProcessor) dm(c *Client, username, target, body string) {
	targetClient, ok := p.registry.FindByUsername(target)
	if !ok {
		p.broadcaster.SendTo(c, RecordError, fmt.Sprintf("User '%s' not found or offline.", target), ServerSender)
		return
	}
	if result := p.broadcaster.DM(targetClient, username, body); result.Status != Delivered {
		p.broadcaster.SendTo(c, RecordError, fmt.Sprintf("User '%s' not found or offline.", target), ServerSender)
		return
	}
	p.reply(c, "DM sent to "+target)
}

func (p *CommandProcessor) unknown(c *Client) {
	p.broadcaster.SendTo(c, RecordError, "Unknown command.", ServerSender)
}

func (p *CommandProcessor) reply(c *Client, body string) {
	p.broadcaster.SendTo(c, RecordSystem, body, ServerSender)
}
