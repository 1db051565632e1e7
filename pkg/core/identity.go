package core

import (
	"math/rand/v2"
	"strings"
)

// AckSeparator sits between name and description in a heartbeat acknowledgement.
const AckSeparator = "\x0e"

const DefaultDescription = "GO"

// Identity names a server for heartbeat acknowledgement.
type Identity struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// NewIdentity fills a random 20-character name and the default description
// for empty arguments.
func NewIdentity(name, desc string) Identity {
	if strings.TrimSpace(name) == "" {
		name = randomName(20)
	}
	if strings.TrimSpace(desc) == "" {
		desc = DefaultDescription
	}
	return Identity{Name: name, Description: desc}
}

// Ack renders the acknowledgement payload "<name>\x0e<description>".
func (i Identity) Ack() string {
	return i.Name + AckSeparator + i.Description
}

// ParseAck splits an acknowledgement payload.
func ParseAck(payload string) (Identity, bool) {
	name, desc, ok := strings.Cut(payload, AckSeparator)
	if !ok {
		return Identity{}, false
	}
	return Identity{Name: name, Description: desc}, true
}

const nameAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ1234567890"

func randomName(n int) string {
	var b strings.Builder
	b.Grow(n)
	for range n {
		b.WriteByte(nameAlphabet[rand.IntN(len(nameAlphabet))])
	}
	return b.String()
}
