package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIdentityCapabilities(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		id          Identity
		present     bool
		sell        bool
		bid         bool
	}{
		{name: "zero_identity", id: Identity{}},
		{name: "auctioneer", id: Identity{Subject: "alice", Role: RoleAuctioneer}, present: true, sell: true},
		{name: "bidder", id: Identity{Subject: "bob", Role: RoleBidder}, present: true, bid: true},
		{name: "both", id: Identity{Subject: "carol", Role: RoleBoth}, present: true, sell: true, bid: true},
		{name: "unknown_role", id: Identity{Subject: "dave", Role: "Admin"}, present: true},
		{name: "role_without_subject", id: Identity{Role: RoleBidder}, bid: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.present, tc.id.Present())
			require.Equal(t, tc.sell, tc.id.CanSell())
			require.Equal(t, tc.bid, tc.id.CanBid())
		})
	}
}
