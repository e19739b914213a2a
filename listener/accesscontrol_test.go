package listener

import "testing"

func TestAccessSetAddAndAllows(t *testing.T) {
	a := NewAccessSet()
	p := peerFilledWith(0x01)

	if a.Allows(p) {
		t.Fatal("empty set should not allow anyone")
	}
	if err := a.Apply(AddPeer(p)); err != nil {
		t.Fatalf("apply add: %v", err)
	}
	if !a.Allows(p) {
		t.Fatal("expected peer to be allowed after Add")
	}
	if a.Len() != 1 {
		t.Fatalf("expected len 1, got %d", a.Len())
	}
}

func TestAccessSetAddIsIdempotent(t *testing.T) {
	a := NewAccessSet()
	p := peerFilledWith(0x02)

	if err := a.Apply(AddPeer(p)); err != nil {
		t.Fatalf("apply add: %v", err)
	}
	if err := a.Apply(AddPeer(p)); err != nil {
		t.Fatalf("apply add again: %v", err)
	}
	if a.Len() != 1 {
		t.Fatalf("expected len 1 after duplicate add, got %d", a.Len())
	}
}

func TestAccessSetRemove(t *testing.T) {
	a := NewAccessSet()
	p := peerFilledWith(0x03)
	_ = a.Apply(AddPeer(p))

	if err := a.Apply(RemovePeer(p)); err != nil {
		t.Fatalf("apply remove: %v", err)
	}
	if a.Allows(p) {
		t.Fatal("expected peer to be disallowed after Remove")
	}

	// removing a peer never in the set is a no-op, not an error.
	if err := a.Apply(RemovePeer(peerFilledWith(0x04))); err != nil {
		t.Fatalf("apply remove of absent peer: %v", err)
	}
}

func TestAccessSetClear(t *testing.T) {
	a := NewAccessSet()
	_ = a.Apply(AddPeer(peerFilledWith(0x05)))
	_ = a.Apply(AddPeer(peerFilledWith(0x06)))

	if err := a.Apply(ClearPeers()); err != nil {
		t.Fatalf("apply clear: %v", err)
	}
	if a.Len() != 0 {
		t.Fatalf("expected empty set after Clear, got len %d", a.Len())
	}
}
