package models

import (
	"time"
)

// Raffle is a ticket drawing as stored in the raffles collection
type Raffle struct {
	ID         string    `bson:"_id" json:"_id" yaml:"id" db:"id"`
	Name       string    `bson:"name" json:"name" yaml:"name" db:"name"`
	Creator    string    `bson:"creator" json:"creator" yaml:"creator" db:"creator"`
	StartTime  time.Time `bson:"startTime" json:"startTime" yaml:"startTime" db:"start_time"`
	FloorPrice string    `bson:"floorPrice" json:"floorPrice" yaml:"floorPrice" db:"floor_price"` // decimal string, e.g. "1.5"
	IsDeleted  bool      `bson:"isDeleted" json:"isDeleted" yaml:"isDeleted" db:"is_deleted"`
	Prizes     []Prize   `bson:"prizes,omitempty" json:"prizes,omitempty" yaml:"prizes,omitempty" db:"-"`
}

// Prize is a token reward attached to a raffle
type Prize struct {
	ID        string  `bson:"_id,omitempty" json:"_id,omitempty" yaml:"id,omitempty"`
	TokenName string  `bson:"tokenName" json:"tokenName" yaml:"tokenName"`
	Token     string  `bson:"token" json:"token" yaml:"token"`
	TokenImg  string  `bson:"tokenImg" json:"tokenImg" yaml:"tokenImg"`
	Amount    float64 `bson:"amount" json:"amount" yaml:"amount"`
	IsClaimed bool    `bson:"isClaimed" json:"isClaimed" yaml:"isClaimed"`
}

// Buyer is one purchase record: a buyer's ticket numbers for a raffle
type Buyer struct {
	ID        string    `bson:"_id" json:"_id" yaml:"id" db:"id"`
	RaffleID  string    `bson:"raffleId" json:"raffleId" yaml:"raffleId" db:"raffle_id"`
	Buyer     string    `bson:"buyer" json:"buyer" yaml:"buyer" db:"buyer"`
	Tickets   Tickets   `bson:"tickets" json:"tickets" yaml:"tickets" db:"tickets"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt" yaml:"createdAt" db:"created_at"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt" yaml:"updatedAt" db:"updated_at"`
}

// ErrorResponse is the body returned by the JSON routes on failure
type ErrorResponse struct {
	Error string `json:"error"`
}
