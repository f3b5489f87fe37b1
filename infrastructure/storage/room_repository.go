//go:generate go run go.uber.org/mock/mockgen -source=room_repository.go -destination=../../mocks/mock_room_repository.go -package=mocks
package storage

import (
	"chat-core/domain"
	"chat-core/errors"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

type IRoomRepository interface {
	ResolveDirectRoom(participantA, participantB string) (domain.Room, error)
	CreateGroupRoom(creatorID string, participants []string) (domain.Room, error)
	GetRoom(roomID domain.RoomID) (domain.Room, error)
	IsParticipant(roomID domain.RoomID, userID string) (bool, error)
}

// RoomRepository persists rooms and the DIRECT pair index in BadgerDB.
// Keys: "room:{id}" holds the room record, "direct:{a}:{b}" (sorted pair)
// maps an unordered participant pair to its single DIRECT room.
type RoomRepository struct {
	db  *badger.DB
	log *slog.Logger

	// mu guards pairLocks only. Resolution itself is serialized per pair so
	// unrelated pairs never contend.
	mu        sync.Mutex
	pairLocks map[string]*sync.Mutex
}

func NewRoomRepository(db *badger.DB, log *slog.Logger) *RoomRepository {
	return &RoomRepository{db: db, log: log, pairLocks: make(map[string]*sync.Mutex)}
}

type diskRoom struct {
	ID           domain.RoomID   `json:"id"`
	Type         domain.RoomType `json:"type"`
	Participants []string        `json:"participants"`
}

func roomKey(roomID domain.RoomID) []byte {
	return []byte("room:" + string(roomID))
}

func directKey(pairKey string) []byte {
	return []byte("direct:" + pairKey)
}

func (r *RoomRepository) pairLock(pairKey string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.pairLocks[pairKey]
	if !ok {
		lock = &sync.Mutex{}
		r.pairLocks[pairKey] = lock
	}
	return lock
}

// ResolveDirectRoom returns the existing DIRECT room for the unordered pair,
// creating it atomically on first contact. Concurrent first-contact sends for
// the same pair are serialized on the pair key and end up with one room.
func (r *RoomRepository) ResolveDirectRoom(participantA, participantB string) (domain.Room, error) {
	pairKey := domain.PairKey(participantA, participantB)
	lock := r.pairLock(pairKey)
	lock.Lock()
	defer lock.Unlock()

	var room domain.Room
	err := r.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(directKey(pairKey))
		if err == nil {
			roomID, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			room, err = getRoomTxn(txn, domain.RoomID(roomID))
			return err
		}
		if err != badger.ErrKeyNotFound {
			return err
		}

		room = domain.Room{
			ID:           domain.RoomID(uuid.NewString()),
			Type:         domain.RoomDirect,
			Participants: []string{participantA, participantB},
		}
		if err := setRoomTxn(txn, room); err != nil {
			return err
		}
		return txn.Set(directKey(pairKey), []byte(room.ID))
	})
	if err != nil {
		return domain.Room{}, err
	}
	return room, nil
}

func (r *RoomRepository) CreateGroupRoom(creatorID string, participants []string) (domain.Room, error) {
	room := domain.Room{
		ID:           domain.RoomID(uuid.NewString()),
		Type:         domain.RoomGroup,
		Participants: lo.Uniq(append([]string{creatorID}, participants...)),
	}
	err := r.db.Update(func(txn *badger.Txn) error {
		return setRoomTxn(txn, room)
	})
	if err != nil {
		return domain.Room{}, err
	}
	return room, nil
}

func (r *RoomRepository) GetRoom(roomID domain.RoomID) (domain.Room, error) {
	var room domain.Room
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		room, err = getRoomTxn(txn, roomID)
		return err
	})
	if err != nil {
		return domain.Room{}, err
	}
	return room, nil
}

func (r *RoomRepository) IsParticipant(roomID domain.RoomID, userID string) (bool, error) {
	room, err := r.GetRoom(roomID)
	if err != nil {
		return false, err
	}
	return room.IsParticipant(userID), nil
}

func getRoomTxn(txn *badger.Txn, roomID domain.RoomID) (domain.Room, error) {
	item, err := txn.Get(roomKey(roomID))
	if err == badger.ErrKeyNotFound {
		return domain.Room{}, errors.ErrRoomNotFound
	}
	if err != nil {
		return domain.Room{}, err
	}
	var disk diskRoom
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &disk)
	}); err != nil {
		return domain.Room{}, err
	}
	return domain.Room(disk), nil
}

func setRoomTxn(txn *badger.Txn, room domain.Room) error {
	bytes, err := json.Marshal(diskRoom(room))
	if err != nil {
		return err
	}
	return txn.Set(roomKey(room.ID), bytes)
}
