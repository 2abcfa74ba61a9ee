package registry

// EventKind discriminates the three observation record types the registry
// emits.
type EventKind string

const (
	KindTransfer       EventKind = "Transfer"
	KindApproval       EventKind = "Approval"
	KindApprovalForAll EventKind = "ApprovalForAll"
)

// Event is a single observation record. Field meaning depends on Kind:
//
//   - Transfer: From is the previous owner (NullAccount for a mint), To is
//     the new owner, TokenID identifies the token. URI is set on mint
//     records only, so a consumer can rebuild full state from the stream.
//   - Approval: From is the token owner, To is the delegate (NullAccount
//     when the delegate is cleared), TokenID identifies the token.
//   - ApprovalForAll: From is the granting owner, To is the operator,
//     Approved carries the new flag. TokenID is unused.
type Event struct {
	Kind     EventKind
	From     Account
	To       Account
	TokenID  TokenID
	Approved bool
	URI      string
}

// Sink receives events in emission order. The registry calls Emit while
// holding its write lock, so the order seen by the sink matches operation
// completion order. Emit must not call back into the registry.
type Sink interface {
	Emit(Event)
}
