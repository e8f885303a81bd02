// Package auth models the identity assertion produced by the external
// authentication service. This service never issues or stores credentials;
// it receives an already-verified (subject, role) pair from the JWT
// middleware and only decides what that pair is allowed to do.
package auth

// Role values match the role claim minted by the authentication service.
const (
	RoleAuctioneer = "Auctioneer"
	RoleBidder     = "Bidder"
	RoleBoth       = "Both"
)

// Identity is the opaque caller assertion extracted from a bearer token.
// A zero Identity means the request carried no valid token.
type Identity struct {
	Subject string
	Role    string
}

// Present reports whether the caller is authenticated at all.
func (i Identity) Present() bool {
	return i.Subject != ""
}

// CanSell reports whether the caller may create, update, delete or settle
// auctions.
func (i Identity) CanSell() bool {
	return i.Role == RoleAuctioneer || i.Role == RoleBoth
}

// CanBid reports whether the caller may place bids.
func (i Identity) CanBid() bool {
	return i.Role == RoleBidder || i.Role == RoleBoth
}
