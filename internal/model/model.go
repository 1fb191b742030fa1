// Package model contains domain entities and DTOs used across layers.
// I keep it lean and focused on data shapes without behavior.
package model

import "time"

// LastMatchesLen is the fixed length of PlayerData.Last.
const LastMatchesLen = 5

// Country is embedded in a player record.
type Country struct {
	Picture string `json:"picture" bson:"picture"`
	Code    string `json:"code" bson:"code"`
}

// PlayerData holds the sporting figures of a player.
// Weight is in grams, height in centimeters.
type PlayerData struct {
	Rank   int   `json:"rank" bson:"rank"`
	Points int   `json:"points" bson:"points"`
	Weight int   `json:"weight" bson:"weight"`
	Height int   `json:"height" bson:"height"`
	Age    int   `json:"age" bson:"age"`
	Last   []int `json:"last" bson:"last"` // most recent outcomes, 1 = win
}

// Player represents a tennis player as stored in the document collection.
type Player struct {
	ID        int64      `json:"id" bson:"id"`
	Firstname string     `json:"firstname" bson:"firstname"`
	Lastname  string     `json:"lastname" bson:"lastname"`
	Shortname string     `json:"shortname" bson:"shortname"`
	Sex       string     `json:"sex" bson:"sex"`
	Country   Country    `json:"country" bson:"country"`
	Picture   string     `json:"picture" bson:"picture"`
	Data      PlayerData `json:"data" bson:"data"`
	CreatedAt time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// FullName joins first and last name the way analytics responses present it.
func (p Player) FullName() string {
	return p.Firstname + " " + p.Lastname
}

// Clone returns a copy that shares no slices with p.
func (p Player) Clone() Player {
	if p.Data.Last != nil {
		last := make([]int, len(p.Data.Last))
		copy(last, p.Data.Last)
		p.Data.Last = last
	}
	return p
}

// PlayerPage is the paginated listing returned to clients.
type PlayerPage struct {
	Total      int64    `json:"total"`
	Page       int      `json:"page"`
	Limit      int      `json:"limit"`
	TotalPages int      `json:"totalPages"`
	Players    []Player `json:"players"`
}
