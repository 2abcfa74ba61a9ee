package registry

import (
	"math/rand"
	"testing"
)

// recount recomputes per-account balances from the ownership relation.
func recount(s *Snapshot) map[Account]uint64 {
	counts := make(map[Account]uint64)
	for _, owner := range s.Owners {
		counts[owner]++
	}
	return counts
}

func checkBalanceInvariant(t *testing.T, r *Registry, step int) {
	t.Helper()
	s := r.Snapshot()
	counts := recount(s)
	if len(counts) != len(s.Balances) {
		t.Fatalf("step %d: balance map tracks %d accounts, ownership has %d", step, len(s.Balances), len(counts))
	}
	for account, n := range counts {
		if s.Balances[account] != n {
			t.Fatalf("step %d: balance for %q is %d, ownership count is %d", step, account, s.Balances[account], n)
		}
	}
}

// TestRandomWalk_Invariants drives the registry through a long random
// operation sequence and checks two properties after every call:
//
//   - balanceOf(a) equals the number of tokens currently owned by a
//   - a failed operation leaves the state exactly as it was
func TestRandomWalk_Invariants(t *testing.T) {
	rng := rand.New(rand.NewSource(99))

	accounts := []Account{alice, bob, carol, Account("dave"), Account("erin"), NullAccount}
	pick := func() Account { return accounts[rng.Intn(len(accounts))] }
	pickID := func() TokenID { return ID(uint64(rng.Intn(20))) }

	r := New()
	const steps = 5000

	for step := 0; step < steps; step++ {
		before := r.Snapshot()

		var err error
		switch rng.Intn(4) {
		case 0:
			err = r.Mint(pick(), pickID(), "uri")
		case 1:
			err = r.Transfer(pick(), pick(), pick(), pickID())
		case 2:
			err = r.Approve(pick(), pick(), pickID())
		case 3:
			caller := pick()
			if caller.IsNull() {
				caller = alice
			}
			err = r.SetApprovalForAll(caller, pick(), rng.Intn(2) == 0)
		}

		if err != nil && !r.Snapshot().Equal(before) {
			t.Fatalf("step %d: failed operation mutated state (%v)", step, err)
		}
		checkBalanceInvariant(t, r, step)
	}

	// The walk must have produced a non-trivial amount of state.
	if len(r.Snapshot().Owners) == 0 {
		t.Fatal("random walk minted nothing; seed or generator is broken")
	}
}
