package model

import "encoding/json"

// CountryInput is the client-supplied shape of Country. Pointers distinguish
// "absent" from "zero".
type CountryInput struct {
	Picture *string `json:"picture"`
	Code    *string `json:"code"`
}

// DataInput is the client-supplied shape of PlayerData.
type DataInput struct {
	Rank   *int  `json:"rank"`
	Points *int  `json:"points"`
	Weight *int  `json:"weight"`
	Height *int  `json:"height"`
	Age    *int  `json:"age"`
	Last   []int `json:"last"`
}

// PlayerInput is the payload for create, replace and partial update.
//
// When decoded from JSON it remembers which top-level keys were present, even if
// their value was null, so validation can tell "missing" from "explicitly null".
type PlayerInput struct {
	ID        *int64        `json:"id"`
	Firstname *string       `json:"firstname"`
	Lastname  *string       `json:"lastname"`
	Shortname *string       `json:"shortname"`
	Sex       *string       `json:"sex"`
	Country   *CountryInput `json:"country"`
	Picture   *string       `json:"picture"`
	Data      *DataInput    `json:"data"`

	present map[string]bool
}

// UnmarshalJSON decodes the payload and records the set of keys it carried.
func (in *PlayerInput) UnmarshalJSON(b []byte) error {
	type plain PlayerInput
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(b, &keys); err != nil {
		return err
	}
	*in = PlayerInput(p)
	in.present = make(map[string]bool, len(keys))
	for k := range keys {
		in.present[k] = true
	}
	return nil
}

// Has reports whether the top-level field was supplied.
func (in *PlayerInput) Has(field string) bool {
	if in.present[field] {
		return true
	}
	switch field {
	case "id":
		return in.ID != nil
	case "firstname":
		return in.Firstname != nil
	case "lastname":
		return in.Lastname != nil
	case "shortname":
		return in.Shortname != nil
	case "sex":
		return in.Sex != nil
	case "country":
		return in.Country != nil
	case "picture":
		return in.Picture != nil
	case "data":
		return in.Data != nil
	}
	return false
}

// ToPlayer converts a fully validated input into a Player. Missing optional parts
// stay at their zero value.
func (in *PlayerInput) ToPlayer() Player {
	var p Player
	if in.ID != nil {
		p.ID = *in.ID
	}
	p.Firstname = deref(in.Firstname)
	p.Lastname = deref(in.Lastname)
	p.Shortname = deref(in.Shortname)
	p.Sex = deref(in.Sex)
	p.Picture = deref(in.Picture)
	if in.Country != nil {
		p.Country = Country{Picture: deref(in.Country.Picture), Code: deref(in.Country.Code)}
	}
	if in.Data != nil {
		p.Data = PlayerData{
			Rank:   derefInt(in.Data.Rank),
			Points: derefInt(in.Data.Points),
			Weight: derefInt(in.Data.Weight),
			Height: derefInt(in.Data.Height),
			Age:    derefInt(in.Data.Age),
		}
		if in.Data.Last != nil {
			p.Data.Last = append([]int(nil), in.Data.Last...)
		}
	}
	return p
}

// StatsUpdate carries the fields accepted by the stats-only update.
// Unknown JSON keys are dropped by the decoder.
type StatsUpdate struct {
	Points *int  `json:"points"`
	Weight *int  `json:"weight"`
	Height *int  `json:"height"`
	Age    *int  `json:"age"`
	Last   []int `json:"last"`
}

// Empty reports whether no accepted field was supplied.
func (s StatsUpdate) Empty() bool {
	return s.Points == nil && s.Weight == nil && s.Height == nil && s.Age == nil && s.Last == nil
}

// CountryPatch sets individual country sub-fields; nil leaves a field untouched.
type CountryPatch struct {
	Picture *string
	Code    *string
}

// DataPatch sets individual data sub-fields; nil leaves a field untouched.
type DataPatch struct {
	Rank   *int
	Points *int
	Weight *int
	Height *int
	Age    *int
	Last   []int
}

// Empty reports whether the patch touches nothing.
func (d *DataPatch) Empty() bool {
	return d == nil || (d.Rank == nil && d.Points == nil && d.Weight == nil && d.Height == nil && d.Age == nil && d.Last == nil)
}

// Empty reports whether the patch touches nothing.
func (c *CountryPatch) Empty() bool {
	return c == nil || (c.Picture == nil && c.Code == nil)
}

// PlayerUpdate is a field-scoped update applied by the store in one write.
type PlayerUpdate struct {
	Firstname *string
	Lastname  *string
	Shortname *string
	Sex       *string
	Picture   *string
	Country   *CountryPatch
	Data      *DataPatch
}

// Empty reports whether the update would change nothing.
func (u PlayerUpdate) Empty() bool {
	return u.Firstname == nil && u.Lastname == nil && u.Shortname == nil && u.Sex == nil &&
		u.Picture == nil && u.Country.Empty() && u.Data.Empty()
}

// Apply returns p with the update applied. Stores without field-level update
// support (the in-memory one) use it directly.
func (u PlayerUpdate) Apply(p Player) Player {
	p = p.Clone()
	setString(&p.Firstname, u.Firstname)
	setString(&p.Lastname, u.Lastname)
	setString(&p.Shortname, u.Shortname)
	setString(&p.Sex, u.Sex)
	setString(&p.Picture, u.Picture)
	if u.Country != nil {
		setString(&p.Country.Picture, u.Country.Picture)
		setString(&p.Country.Code, u.Country.Code)
	}
	if u.Data != nil {
		setInt(&p.Data.Rank, u.Data.Rank)
		setInt(&p.Data.Points, u.Data.Points)
		setInt(&p.Data.Weight, u.Data.Weight)
		setInt(&p.Data.Height, u.Data.Height)
		setInt(&p.Data.Age, u.Data.Age)
		if u.Data.Last != nil {
			p.Data.Last = append([]int(nil), u.Data.Last...)
		}
	}
	return p
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}
