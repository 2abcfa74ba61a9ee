package registry

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// Snapshot is a deep copy of the full registry state at one point in time.
// Snapshots are plain data: they are safe to hold across registry mutations
// and to compare before and after an operation.
type Snapshot struct {
	Owners    map[TokenID]Account
	Approved  map[TokenID]Account
	Operators map[Account]map[Account]bool
	Balances  map[Account]uint64
	URIs      map[TokenID]string
}

// NewSnapshot creates an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Owners:    make(map[TokenID]Account),
		Approved:  make(map[TokenID]Account),
		Operators: make(map[Account]map[Account]bool),
		Balances:  make(map[Account]uint64),
		URIs:      make(map[TokenID]string),
	}
}

// Snapshot captures the current registry state under the read lock.
func (r *Registry) Snapshot() *Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := NewSnapshot()
	for id, owner := range r.owners {
		s.Owners[id] = owner
	}
	for id, delegate := range r.approved {
		s.Approved[id] = delegate
	}
	for owner, ops := range r.operators {
		inner := make(map[Account]bool, len(ops))
		for op, v := range ops {
			inner[op] = v
		}
		s.Operators[owner] = inner
	}
	for account, n := range r.balances {
		s.Balances[account] = n
	}
	for id, uri := range r.uris {
		s.URIs[id] = uri
	}
	return s
}

// FromSnapshot builds a live registry from a snapshot. The snapshot is
// deep-copied, so later mutations of the registry do not alias it.
func FromSnapshot(s *Snapshot) *Registry {
	r := New()
	for id, owner := range s.Owners {
		r.owners[id] = owner
	}
	for id, delegate := range s.Approved {
		r.approved[id] = delegate
	}
	for owner, ops := range s.Operators {
		inner := make(map[Account]bool, len(ops))
		for op, v := range ops {
			inner[op] = v
		}
		r.operators[owner] = inner
	}
	for account, n := range s.Balances {
		r.balances[account] = n
	}
	for id, uri := range s.URIs {
		r.uris[id] = uri
	}
	return r
}

// Clone creates a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	out := NewSnapshot()
	for id, owner := range s.Owners {
		out.Owners[id] = owner
	}
	for id, delegate := range s.Approved {
		out.Approved[id] = delegate
	}
	for owner, ops := range s.Operators {
		inner := make(map[Account]bool, len(ops))
		for op, v := range ops {
			inner[op] = v
		}
		out.Operators[owner] = inner
	}
	for account, n := range s.Balances {
		out.Balances[account] = n
	}
	for id, uri := range s.URIs {
		out.URIs[id] = uri
	}
	return out
}

// Equal reports whether two snapshots describe identical state.
func (s *Snapshot) Equal(o *Snapshot) bool {
	if len(s.Owners) != len(o.Owners) ||
		len(s.Approved) != len(o.Approved) ||
		len(s.Operators) != len(o.Operators) ||
		len(s.Balances) != len(o.Balances) ||
		len(s.URIs) != len(o.URIs) {
		return false
	}
	for id, owner := range s.Owners {
		if o.Owners[id] != owner {
			return false
		}
	}
	for id, delegate := range s.Approved {
		if o.Approved[id] != delegate {
			return false
		}
	}
	for owner, ops := range s.Operators {
		other, ok := o.Operators[owner]
		if !ok || len(other) != len(ops) {
			return false
		}
		for op, v := range ops {
			if other[op] != v {
				return false
			}
		}
	}
	for account, n := range s.Balances {
		if o.Balances[account] != n {
			return false
		}
	}
	for id, uri := range s.URIs {
		if o.URIs[id] != uri {
			return false
		}
	}
	return true
}

// normalized is the deterministically ordered wire form used for hashing.
type normalized struct {
	Owners    []tokenRow    `json:"owners"`
	Approved  []tokenRow    `json:"approved"`
	Operators []operatorRow `json:"operators"`
	Balances  []balanceRow  `json:"balances"`
	URIs      []uriRow      `json:"uris"`
}

type tokenRow struct {
	Token   string `json:"token"`
	Account string `json:"account"`
}

type operatorRow struct {
	Owner    string `json:"owner"`
	Operator string `json:"operator"`
}

type balanceRow struct {
	Account string `json:"account"`
	Count   uint64 `json:"count"`
}

type uriRow struct {
	Token string `json:"token"`
	URI   string `json:"uri"`
}

// CID computes the content-addressed identifier for the snapshot. Any
// change to the state changes the CID, and two snapshots with equal state
// always hash identically.
func (s *Snapshot) CID() string {
	data, err := json.Marshal(s.normalize())
	if err != nil {
		return ""
	}
	hash := sha256.Sum256(data)
	return "cid:" + hex.EncodeToString(hash[:])
}

// normalize flattens the snapshot maps into sorted slices.
func (s *Snapshot) normalize() *normalized {
	n := &normalized{
		Owners:    make([]tokenRow, 0, len(s.Owners)),
		Approved:  make([]tokenRow, 0, len(s.Approved)),
		Operators: make([]operatorRow, 0),
		Balances:  make([]balanceRow, 0, len(s.Balances)),
		URIs:      make([]uriRow, 0, len(s.URIs)),
	}
	for id, owner := range s.Owners {
		n.Owners = append(n.Owners, tokenRow{Token: FormatID(id), Account: string(owner)})
	}
	for id, delegate := range s.Approved {
		n.Approved = append(n.Approved, tokenRow{Token: FormatID(id), Account: string(delegate)})
	}
	for owner, ops := range s.Operators {
		for op, v := range ops {
			if v {
				n.Operators = append(n.Operators, operatorRow{Owner: string(owner), Operator: string(op)})
			}
		}
	}
	for account, count := range s.Balances {
		n.Balances = append(n.Balances, balanceRow{Account: string(account), Count: count})
	}
	for id, uri := range s.URIs {
		n.URIs = append(n.URIs, uriRow{Token: FormatID(id), URI: uri})
	}

	sort.Slice(n.Owners, func(i, j int) bool { return n.Owners[i].Token < n.Owners[j].Token })
	sort.Slice(n.Approved, func(i, j int) bool { return n.Approved[i].Token < n.Approved[j].Token })
	sort.Slice(n.Operators, func(i, j int) bool {
		if n.Operators[i].Owner != n.Operators[j].Owner {
			return n.Operators[i].Owner < n.Operators[j].Owner
		}
		return n.Operators[i].Operator < n.Operators[j].Operator
	})
	sort.Slice(n.Balances, func(i, j int) bool { return n.Balances[i].Account < n.Balances[j].Account })
	sort.Slice(n.URIs, func(i, j int) bool { return n.URIs[i].Token < n.URIs[j].Token })

	return n
}
