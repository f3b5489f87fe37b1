// Package domain contains core concepts of the chat system.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"strings"
)

type RoomID string

type RoomType string

const (
	RoomDirect RoomType = "DIRECT"
	RoomGroup  RoomType = "GROUP"
)

// Room is a persistent grouping of participants scoping a sequence of messages.
// Membership of a DIRECT room is immutable after creation.
type Room struct {
	ID           RoomID
	Type         RoomType
	Participants []string
}

func (r Room) IsParticipant(userID string) bool {
	for _, p := range r.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// PairKey normalizes an unordered participant pair into the unique key
// under which its DIRECT room is resolved. PairKey(a, b) == PairKey(b, a).
func PairKey(a, b string) string {
	if strings.Compare(a, b) > 0 {
		a, b = b, a
	}
	return a + ":" + b
}
