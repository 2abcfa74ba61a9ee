package registry

import "errors"

var (
	// Token lookup errors
	ErrUnknownToken  = errors.New("registry: unknown token")
	ErrAlreadyMinted = errors.New("registry: token already minted")

	// Account validation errors
	ErrInvalidRecipient = errors.New("registry: invalid recipient account")
	ErrInvalidAccount   = errors.New("registry: invalid account")

	// Transfer precondition errors
	ErrOwnerMismatch = errors.New("registry: from account is not the owner")
	ErrSelfTransfer  = errors.New("registry: transfer to self")
	ErrNotAuthorized = errors.New("registry: caller not authorized")
)
