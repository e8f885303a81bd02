// Package repository contains data access for auctions and their bid
// ledger, separated from HTTP handlers and business rules. This file
// defines the sentinel errors shared by every Store implementation so that
// higher layers can distinguish failure scenarios with errors.Is.
package repository

import "errors"

// ErrAuctionNotFound is returned when no auction exists for the requested
// id. Handlers translate this into an HTTP 404 response.
var ErrAuctionNotFound = errors.New("auction not found")

// ErrNoBids is returned when an auction's ledger is empty and a highest
// bid was requested.
var ErrNoBids = errors.New("no bids found for auction")
