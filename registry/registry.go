// Package registry implements a non-fungible token ownership registry with
// delegated transfer authorization.
//
// A Registry owns three relations: token to owner, token to approved
// delegate, and (owner, operator) to approved-for-all. Every mutating
// operation takes the acting identity as an explicit caller parameter and
// either applies completely or leaves the registry untouched. Observation
// records are appended to an optional Sink in completion order.
//
// All operations are safe for concurrent use: mutations serialize behind a
// write lock, queries share a read lock.
package registry

import "sync"

// Registry is the aggregate root for token ownership state. The zero value
// is not usable; create instances with New.
type Registry struct {
	mu        sync.RWMutex
	owners    map[TokenID]Account
	approved  map[TokenID]Account
	operators map[Account]map[Account]bool
	balances  map[Account]uint64
	uris      map[TokenID]string
	sink      Sink
}

// New creates an empty registry with no sink attached.
func New() *Registry {
	return &Registry{
		owners:    make(map[TokenID]Account),
		approved:  make(map[TokenID]Account),
		operators: make(map[Account]map[Account]bool),
		balances:  make(map[Account]uint64),
		uris:      make(map[TokenID]string),
	}
}

// WithSink attaches an event sink and returns the registry for chaining.
func (r *Registry) WithSink(s Sink) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sink = s
	return r
}

// emit appends an event to the sink, if one is attached. Callers must hold
// the write lock.
func (r *Registry) emit(e Event) {
	if r.sink != nil {
		r.sink.Emit(e)
	}
}

// Mint creates a token owned by to with the given metadata URI.
// It fails with ErrInvalidRecipient if to is the null account, and with
// ErrAlreadyMinted if the id is already present.
func (r *Registry) Mint(to Account, id TokenID, uri string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if to.IsNull() {
		return ErrInvalidRecipient
	}
	if _, ok := r.owners[id]; ok {
		return ErrAlreadyMinted
	}

	r.owners[id] = to
	r.uris[id] = uri
	r.balances[to]++

	r.emit(Event{Kind: KindTransfer, From: NullAccount, To: to, TokenID: id, URI: uri})
	return nil
}

// OwnerOf returns the current owner of a token, or ErrUnknownToken.
func (r *Registry) OwnerOf(id TokenID) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	owner, ok := r.owners[id]
	if !ok {
		return NullAccount, ErrUnknownToken
	}
	return owner, nil
}

// BalanceOf returns the number of tokens owned by an account. Unknown
// accounts have balance zero. Querying the null account fails with
// ErrInvalidAccount.
func (r *Registry) BalanceOf(account Account) (uint64, error) {
	if account.IsNull() {
		return 0, ErrInvalidAccount
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.balances[account], nil
}

// TokenURI returns the metadata URI recorded at mint time, or
// ErrUnknownToken.
func (r *Registry) TokenURI(id TokenID) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	uri, ok := r.uris[id]
	if !ok {
		return "", ErrUnknownToken
	}
	return uri, nil
}

// Exists reports whether a token has been minted.
func (r *Registry) Exists(id TokenID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.owners[id]
	return ok
}

// Approve sets the single transfer delegate for a token. The delegate may
// be NullAccount to clear a previous approval. The caller must be the
// token's owner or an approved operator for the owner.
func (r *Registry) Approve(caller, delegate Account, id TokenID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	owner, ok := r.owners[id]
	if !ok {
		return ErrUnknownToken
	}
	if caller != owner && !r.operators[owner][caller] {
		return ErrNotAuthorized
	}

	if delegate.IsNull() {
		delete(r.approved, id)
	} else {
		r.approved[id] = delegate
	}

	r.emit(Event{Kind: KindApproval, From: owner, To: delegate, TokenID: id})
	return nil
}

// GetApproved returns the approved delegate for a token, or NullAccount if
// none is set. It fails with ErrUnknownToken for unminted ids.
func (r *Registry) GetApproved(id TokenID) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.owners[id]; !ok {
		return NullAccount, ErrUnknownToken
	}
	return r.approved[id], nil
}

// SetApprovalForAll grants or revokes blanket transfer rights over all of
// the caller's tokens, current and future. Approving oneself is accepted
// and has no effect on authorization, since owners may always transfer
// their own tokens.
func (r *Registry) SetApprovalForAll(caller, operator Account, approved bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if approved {
		if r.operators[caller] == nil {
			r.operators[caller] = make(map[Account]bool)
		}
		r.operators[caller][operator] = true
	} else {
		delete(r.operators[caller], operator)
		if len(r.operators[caller]) == 0 {
			delete(r.operators, caller)
		}
	}

	r.emit(Event{Kind: KindApprovalForAll, From: caller, To: operator, Approved: approved})
	return nil
}

// IsApprovedForAll reports whether operator holds blanket transfer rights
// over owner's tokens. Unseen pairs default to false.
func (r *Registry) IsApprovedForAll(owner, operator Account) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.operators[owner][operator]
}

// Transfer moves a token from one owner to another. All preconditions are
// checked before any state changes; a failed transfer leaves the registry
// unchanged.
//
// Preconditions, in check order:
//  1. the token exists (ErrUnknownToken)
//  2. from is the current owner (ErrOwnerMismatch)
//  3. from != to (ErrSelfTransfer)
//  4. to is not the null account (ErrInvalidRecipient)
//  5. caller is the owner, the approved delegate, or an approved
//     operator for the owner (ErrNotAuthorized)
//
// On success the delegate approval for the token is cleared and a Transfer
// event is emitted.
func (r *Registry) Transfer(caller, from, to Account, id TokenID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	owner, ok := r.owners[id]
	if !ok {
		return ErrUnknownToken
	}
	if from != owner {
		return ErrOwnerMismatch
	}
	if from == to {
		return ErrSelfTransfer
	}
	if to.IsNull() {
		return ErrInvalidRecipient
	}
	if caller != from && caller != r.approved[id] && !r.operators[from][caller] {
		return ErrNotAuthorized
	}

	r.balances[from]--
	if r.balances[from] == 0 {
		delete(r.balances, from)
	}
	r.balances[to]++
	r.owners[id] = to
	delete(r.approved, id)

	r.emit(Event{Kind: KindTransfer, From: from, To: to, TokenID: id})
	return nil
}
