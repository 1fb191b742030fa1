package service

import (
	"fmt"
	"strings"

	"github.com/maxviazov/tennis-players-service/internal/model"
)

// requiredFields are the top-level keys a full (non-partial) payload must carry.
var requiredFields = []string{"id", "firstname", "lastname", "shortname", "sex", "country", "picture", "data"}

// MsgIDNotInteger is also used by the HTTP binder for ids of the wrong JSON type.
const MsgIDNotInteger = "Player ID must be an integer"

// ValidateID checks that an id was supplied. Non-integer ids never reach this point,
// the JSON decoder rejects them with the same message.
func ValidateID(id *int64) error {
	if id == nil {
		return invalid("id", MsgIDNotInteger)
	}
	return nil
}

func ValidateSex(sex *string) error {
	if sex == nil || (*sex != "M" && *sex != "F") {
		return invalid("sex", `Sex must be "M" or "F"`)
	}
	return nil
}

// ValidateCountry checks picture and code and uppercases the code in place.
// In partial mode only the sub-fields that were sent are checked.
func ValidateCountry(c *model.CountryInput, partial bool) error {
	if c == nil {
		return invalid("country", "Country must be an object")
	}
	var ferrs []FieldError
	if !partial || c.Picture != nil {
		if c.Picture == nil || strings.TrimSpace(*c.Picture) == "" {
			ferrs = append(ferrs, FieldError{Field: "country.picture", Message: "Country.picture must be a URL string"})
		}
	}
	if !partial || c.Code != nil {
		if c.Code == nil || len([]rune(*c.Code)) != 3 {
			ferrs = append(ferrs, FieldError{Field: "country.code", Message: "Country.code must be exactly 3 letters"})
		} else {
			up := strings.ToUpper(*c.Code)
			c.Code = &up
		}
	}
	if partial && c.Picture == nil && c.Code == nil {
		ferrs = append(ferrs, FieldError{Field: "country", Message: "Country must contain picture or code"})
	}
	return newInvalidInput(ferrs)
}

// ValidateData checks the numeric ranges and the shape of the match history.
func ValidateData(d *model.DataInput, partial bool) error {
	if d == nil {
		return invalid("data", "Data must be an object")
	}
	var ferrs []FieldError
	check := func(name string, v *int, minimum int) {
		if partial && v == nil {
			return
		}
		if v == nil || *v < minimum {
			ferrs = append(ferrs, FieldError{
				Field:   "data." + name,
				Message: fmt.Sprintf("Data.%s must be an integer >= %d", name, minimum),
			})
		}
	}
	check("rank", d.Rank, 1)
	check("points", d.Points, 0)
	check("weight", d.Weight, 0)
	check("height", d.Height, 0)
	check("age", d.Age, 0)

	if !partial || d.Last != nil {
		if fe := validateLast(d.Last); fe != nil {
			ferrs = append(ferrs, *fe)
		}
	}
	if partial && d.Rank == nil && d.Points == nil && d.Weight == nil && d.Height == nil && d.Age == nil && d.Last == nil {
		ferrs = append(ferrs, FieldError{Field: "data", Message: "Data must contain at least one field"})
	}
	return newInvalidInput(ferrs)
}

func validateLast(last []int) *FieldError {
	if len(last) != model.LastMatchesLen {
		return &FieldError{Field: "data.last", Message: "Data.last must be an array of exactly 5 elements"}
	}
	for _, v := range last {
		if v != 0 && v != 1 {
			return &FieldError{Field: "data.last", Message: "Data.last elements must be 0 or 1"}
		}
	}
	return nil
}

// ValidateShortname returns the canonical (trimmed, uppercase) shortname.
func ValidateShortname(shortname *string) (string, error) {
	if shortname == nil || strings.TrimSpace(*shortname) == "" {
		return "", invalid("shortname", "Shortname must be a non-empty string")
	}
	return strings.ToUpper(strings.TrimSpace(*shortname)), nil
}

func ValidateFirstname(firstname *string) error {
	if firstname == nil || strings.TrimSpace(*firstname) == "" {
		return invalid("firstname", "Firstname is required")
	}
	return nil
}

func ValidateLastname(lastname *string) error {
	if lastname == nil || strings.TrimSpace(*lastname) == "" {
		return invalid("lastname", "Lastname is required")
	}
	return nil
}

func ValidatePicture(picture *string) error {
	if picture == nil || strings.TrimSpace(*picture) == "" {
		return invalid("picture", "Picture must be a string URL")
	}
	return nil
}

// ValidatePlayerObject validates a payload and normalizes it in place: names are
// trimmed, shortname and country code uppercased. A full payload must carry every
// required field; a partial one is checked only where fields are present.
// All offending fields are reported together.
func ValidatePlayerObject(in *model.PlayerInput, partial bool) error {
	if in == nil {
		return invalid("payload", "Payload must be an object")
	}
	var ferrs []FieldError
	if !partial {
		for _, f := range requiredFields {
			if !in.Has(f) {
				ferrs = append(ferrs, FieldError{Field: f, Message: "Missing required field: " + f})
			}
		}
		if len(ferrs) > 0 {
			return newInvalidInput(ferrs)
		}
	}

	collect := func(err error) {
		ferrs = append(ferrs, FieldErrors(err)...)
	}
	if in.Has("id") {
		collect(ValidateID(in.ID))
	}
	if in.Has("sex") {
		collect(ValidateSex(in.Sex))
	}
	if in.Has("country") {
		collect(ValidateCountry(in.Country, partial))
	}
	if in.Has("data") {
		collect(ValidateData(in.Data, partial))
	}
	if in.Has("shortname") {
		s, err := ValidateShortname(in.Shortname)
		if err != nil {
			collect(err)
		} else {
			in.Shortname = &s
		}
	}
	if in.Has("firstname") {
		if err := ValidateFirstname(in.Firstname); err != nil {
			collect(err)
		} else {
			in.Firstname = trimmed(in.Firstname)
		}
	}
	if in.Has("lastname") {
		if err := ValidateLastname(in.Lastname); err != nil {
			collect(err)
		} else {
			in.Lastname = trimmed(in.Lastname)
		}
	}
	if in.Has("picture") {
		collect(ValidatePicture(in.Picture))
	}
	return newInvalidInput(ferrs)
}

// ValidatePlayers validates a non-empty batch. Field paths are prefixed with the
// element index, e.g. "[2].data.rank".
func ValidatePlayers(ins []model.PlayerInput) error {
	if len(ins) == 0 {
		return invalid("payload", "Payload must be a non-empty array of players")
	}
	var ferrs []FieldError
	for i := range ins {
		for _, fe := range FieldErrors(ValidatePlayerObject(&ins[i], false)) {
			ferrs = append(ferrs, FieldError{Field: fmt.Sprintf("[%d].%s", i, fe.Field), Message: fe.Message})
		}
	}
	return newInvalidInput(ferrs)
}

func trimmed(s *string) *string {
	t := strings.TrimSpace(*s)
	return &t
}
