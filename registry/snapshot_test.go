package registry

import "testing"

func populated(t *testing.T) *Registry {
	t.Helper()
	r := New()
	if err := r.Mint(alice, ID(1), "uri1"); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := r.Mint(alice, ID(2), "uri2"); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := r.Mint(bob, ID(3), "uri3"); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := r.Approve(alice, carol, ID(1)); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := r.SetApprovalForAll(bob, carol, true); err != nil {
		t.Fatalf("setApprovalForAll: %v", err)
	}
	return r
}

func TestSnapshot_Independence(t *testing.T) {
	r := populated(t)
	s := r.Snapshot()

	if err := r.Transfer(alice, alice, bob, ID(1)); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	// The snapshot still sees the pre-transfer world.
	if s.Owners[ID(1)] != alice {
		t.Errorf("expected snapshot owner %q, got %q", alice, s.Owners[ID(1)])
	}
	if s.Approved[ID(1)] != carol {
		t.Errorf("expected snapshot delegate %q, got %q", carol, s.Approved[ID(1)])
	}
	if s.Balances[alice] != 2 {
		t.Errorf("expected snapshot balance 2, got %d", s.Balances[alice])
	}
}

func TestSnapshot_CloneAndEqual(t *testing.T) {
	s := populated(t).Snapshot()
	c := s.Clone()

	if !s.Equal(c) {
		t.Fatal("clone differs from original")
	}

	c.Owners[ID(1)] = bob
	if s.Equal(c) {
		t.Error("mutated clone still equal to original")
	}
	if s.Owners[ID(1)] != alice {
		t.Error("clone mutation leaked into original")
	}
}

func TestSnapshot_CID(t *testing.T) {
	r1 := populated(t)
	r2 := populated(t)

	cid1 := r1.Snapshot().CID()
	cid2 := r2.Snapshot().CID()
	if cid1 == "" {
		t.Fatal("empty CID")
	}
	if cid1 != cid2 {
		t.Errorf("equal states hash differently: %s vs %s", cid1, cid2)
	}

	if err := r2.Transfer(alice, alice, bob, ID(2)); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if r2.Snapshot().CID() == cid1 {
		t.Error("state change did not change CID")
	}
}

func TestFromSnapshot(t *testing.T) {
	r := populated(t)
	s := r.Snapshot()

	restored := FromSnapshot(s)
	if !restored.Snapshot().Equal(s) {
		t.Fatal("restored registry does not match snapshot")
	}

	// The restored registry is live and fully functional.
	if err := restored.Transfer(carol, bob, alice, ID(3)); err != nil {
		t.Fatalf("transfer by operator on restored registry: %v", err)
	}
	owner, err := restored.OwnerOf(ID(3))
	if err != nil {
		t.Fatalf("ownerOf: %v", err)
	}
	if owner != alice {
		t.Errorf("expected owner %q, got %q", alice, owner)
	}

	// And it does not alias the source snapshot.
	if s.Owners[ID(3)] != bob {
		t.Error("restored registry mutation leaked into snapshot")
	}
}
