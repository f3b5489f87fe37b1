package domain

import "fmt"

// Channel addresses a fanout destination. Three kinds exist: the broadcast
// channel of a room, a user's personal inbox, and a user's error channel.
type Channel string

func RoomChannel(roomID RoomID) Channel {
	return Channel(fmt.Sprintf("room:%s", roomID))
}

// InboxChannel is a per-user delivery channel independent of any room, so a
// participant not currently viewing a room still receives its events.
func InboxChannel(userID string) Channel {
	return Channel(fmt.Sprintf("inbox:%s", userID))
}

// ErrorChannel carries processing failures back to one sender only.
func ErrorChannel(userID string) Channel {
	return Channel(fmt.Sprintf("errors:%s", userID))
}
