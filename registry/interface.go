package registry

// InterfaceID is a capability identifier used for interface discovery, in
// the ERC-165 style of four-byte selectors.
type InterfaceID uint32

const (
	// InterfaceRegistry identifies the ownership-registry contract
	// (ownerOf, balanceOf, transfer, approvals).
	InterfaceRegistry InterfaceID = 0x80ac58cd

	// InterfaceMetadata identifies the metadata contract (name, symbol,
	// tokenURI).
	InterfaceMetadata InterfaceID = 0x5b5e139f
)

// SupportsInterface reports whether the registry implements the contract
// identified by id.
func (r *Registry) SupportsInterface(id InterfaceID) bool {
	switch id {
	case InterfaceRegistry, InterfaceMetadata:
		return true
	}
	return false
}
