// Package store owns the room-keyed registry of live match aggregates.
// All mutable room state hangs off the single *model.Room entry, so
// destroying a room cannot leave parallel maps out of sync.
package store

import (
	"sync"

	"gridclash/internal/model"
)

// RoomStore maps room code -> live room aggregate
type RoomStore struct {
	mu    sync.RWMutex
	rooms map[string]*model.Room
}

// NewRoomStore creates an empty store
func NewRoomStore() *RoomStore {
	return &RoomStore{
		rooms: make(map[string]*model.Room),
	}
}

// Put registers a room. Returns false when the code is already taken.
func (s *RoomStore) Put(room *model.Room) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.rooms[room.Code]; exists {
		return false
	}
	s.rooms[room.Code] = room
	return true
}

// Get returns the room with the given code, or nil
func (s *RoomStore) Get(code string) *model.Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rooms[code]
}

// Delete removes and returns the room, or nil when absent. The caller is
// responsible for stopping the room's timer as part of teardown.
func (s *RoomStore) Delete(code string) *model.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	room := s.rooms[code]
	delete(s.rooms, code)
	return room
}

// Exists reports whether a room with the code is live
func (s *RoomStore) Exists(code string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.rooms[code]
	return ok
}

// Codes returns the codes of all live rooms
func (s *RoomStore) Codes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	codes := make([]string, 0, len(s.rooms))
	for code := range s.rooms {
		codes = append(codes, code)
	}
	return codes
}
