package service

import (
	"errors"
	"testing"

	"go.uber.org/zap"

	"chessd/internal/engine"
)

func newService(maxRooms int) *Service {
	return New(nil, maxRooms, zap.NewNop())
}

func TestCreateAndGetRoom(t *testing.T) {
	svc := newService(0)

	r, err := svc.CreateRoom("friendly", "")
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	if r.Name != "friendly" {
		t.Errorf("room name = %q, want friendly", r.Name)
	}
	if got := r.State().FEN(); got != engine.StartingFEN {
		t.Errorf("new room FEN = %q, want starting position", got)
	}

	fetched, err := svc.GetRoom(r.ID)
	if err != nil {
		t.Fatalf("GetRoom: %v", err)
	}
	if fetched != r {
		t.Error("GetRoom returned a different room instance")
	}
}

func TestCreateRoomFromCustomPosition(t *testing.T) {
	svc := newService(0)

	const fen = "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1"
	r, err := svc.CreateRoom("", fen)
	if err != nil {
		t.Fatalf("CreateRoom with FEN: %v", err)
	}
	if got := r.State().Status; got != engine.StatusStalemate {
		t.Errorf("loaded position status = %s, want stalemate", got)
	}

	if _, err := svc.CreateRoom("", "not a position"); err == nil {
		t.Fatal("CreateRoom accepted garbage FEN")
	}
}

func TestRoomLimit(t *testing.T) {
	svc := newService(2)

	for i := 0; i < 2; i++ {
		if _, err := svc.CreateRoom("", ""); err != nil {
			t.Fatalf("room %d: %v", i, err)
		}
	}
	if _, err := svc.CreateRoom("", ""); !errors.Is(err, ErrRoomLimit) {
		t.Fatalf("over-limit create = %v, want ErrRoomLimit", err)
	}

	// Deleting frees capacity.
	rooms := svc.ListRooms()
	if err := svc.DeleteRoom(rooms[0].ID); err != nil {
		t.Fatalf("DeleteRoom: %v", err)
	}
	if _, err := svc.CreateRoom("", ""); err != nil {
		t.Fatalf("create after delete: %v", err)
	}
}

func TestDeleteRoom(t *testing.T) {
	svc := newService(0)

	r, err := svc.CreateRoom("", "")
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	if err := svc.DeleteRoom(r.ID); err != nil {
		t.Fatalf("DeleteRoom: %v", err)
	}
	if _, err := svc.GetRoom(r.ID); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("GetRoom after delete = %v, want ErrRoomNotFound", err)
	}
	if err := svc.DeleteRoom(r.ID); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("double delete = %v, want ErrRoomNotFound", err)
	}
}

func TestListRooms(t *testing.T) {
	svc := newService(0)

	if got := svc.ListRooms(); len(got) != 0 {
		t.Fatalf("fresh service lists %d rooms", len(got))
	}
	for i := 0; i < 3; i++ {
		if _, err := svc.CreateRoom("", ""); err != nil {
			t.Fatalf("CreateRoom: %v", err)
		}
	}
	if got := svc.ListRooms(); len(got) != 3 {
		t.Fatalf("ListRooms = %d rooms, want 3", len(got))
	}
}

func TestStorageHealthWithoutArchive(t *testing.T) {
	svc := newService(0)
	if got := svc.GetStorageHealth(); got != "disabled" {
		t.Errorf("GetStorageHealth = %q, want disabled", got)
	}

	// ArchiveRoom must be a no-op without a store.
	r, err := svc.CreateRoom("", "")
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	svc.ArchiveRoom(r)
}

func TestShutdownDropsRooms(t *testing.T) {
	svc := newService(0)
	r, err := svc.CreateRoom("", "")
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	if err := svc.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if _, err := svc.GetRoom(r.ID); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("room survived shutdown: %v", err)
	}
}
