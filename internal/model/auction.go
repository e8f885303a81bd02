// Package model defines the domain entities shared by the repository,
// service and handler layers. All monetary amounts are integers in minor
// currency units and all timestamps are UTC.
package model

import "time"

// Status enumerates the stored lifecycle states of an auction. There is no
// stored Ended state: an auction past its end time is closed for bidding by
// timestamp comparison alone (see Auction.Closed), and only settlement
// writes a new status.
type Status string

const (
	StatusLive    Status = "Live"
	StatusEnded   Status = "Ended"
	StatusSettled Status = "Settled"
)

// Vehicle holds the attributes of the car being auctioned. It is owned 1:1
// by its auction and shares the auction's lifecycle: created together,
// deleted together, never reassigned.
type Vehicle struct {
	Make     string `json:"make"`
	Model    string `json:"model"`
	Year     int    `json:"year"`
	Color    string `json:"color"`
	Mileage  int    `json:"mileage"`
	ImageURL string `json:"image_url,omitempty"`
}

// Auction is the record of a single vehicle listing. CurrentPrice starts at
// ReservePrice and is only ever raised by an accepted bid, so
// CurrentPrice >= ReservePrice holds for the auction's whole life.
type Auction struct {
	ID           string    `json:"id"`
	ReservePrice int64     `json:"reserve_price"`
	CurrentPrice int64     `json:"current_price"`
	Seller       string    `json:"seller"`
	Winner       string    `json:"winner,omitempty"`
	SoldAmount   *int64    `json:"sold_amount,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	EndsAt       time.Time `json:"ends_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Status       Status    `json:"status"`
	Vehicle      Vehicle   `json:"vehicle"`
}

// Closed reports whether the auction is past its end time at the given
// instant. Bidding eligibility is always derived this way rather than from
// a stored status flip, so two reads straddling the boundary may disagree
// by the clock-skew window.
func (a *Auction) Closed(now time.Time) bool {
	return now.After(a.EndsAt)
}

// EffectiveStatus returns the status a reader should display: the stored
// status, except that a live auction past its end time reads as Ended.
func (a *Auction) EffectiveStatus(now time.Time) Status {
	if a.Status == StatusLive && a.Closed(now) {
		return StatusEnded
	}
	return a.Status
}
