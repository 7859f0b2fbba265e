package event

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypePromptUpdated  Type = "prompt_updated"
	TypePromptRestored Type = "prompt_restored"
	TypePromptReset    Type = "prompt_reset"
)

// Channel is a domain-scoped Postgres NOTIFY channel.
// All event types within a domain share one LISTEN connection.
type Channel string

const (
	ChannelPrompt Channel = "prompt"
)

var typeToChannel = map[Type]Channel{
	TypePromptUpdated:  ChannelPrompt,
	TypePromptRestored: ChannelPrompt,
	TypePromptReset:    ChannelPrompt,
}

// ChannelFor returns the domain channel for a given event type.
func ChannelFor(t Type) Channel { return typeToChannel[t] }

// Event tells subscribers which config changed and what its version is now.
// A Version of 0 means the config no longer exists (reset to default).
// Subscribers needing full state re-resolve through the resolver.
type Event struct {
	Type      Type       `json:"type"`
	ConfigID  uuid.UUID  `json:"config_id"`
	PromptKey string     `json:"prompt_key"`
	OwnerID   *uuid.UUID `json:"owner_id,omitempty"`
	Version   int        `json:"version"`
	Timestamp time.Time  `json:"timestamp"`
}

func New(eventType Type, configID uuid.UUID, promptKey string, ownerID *uuid.UUID, version int) Event {
	return Event{
		Type:      eventType,
		ConfigID:  configID,
		PromptKey: promptKey,
		OwnerID:   ownerID,
		Version:   version,
		Timestamp: time.Now().UTC(),
	}
}
