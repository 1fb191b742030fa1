package model

// CountryRatio is the aggregated win ratio of all players sharing a country code.
type CountryRatio struct {
	Code     string  `json:"code"`
	WinRatio float64 `json:"winRatio"`
}

// CountryReport lists every country tied for the best and for the worst ratio.
// Both are nil when no player had a usable country code.
type CountryReport struct {
	Best  []CountryRatio `json:"best"`
	Worst []CountryRatio `json:"worst"`
}

// PlayerBMI is one row of the BMI analysis.
type PlayerBMI struct {
	ID   int64   `json:"id"`
	Name string  `json:"name"`
	BMI  float64 `json:"bmi"`
}

// BMIReport holds the BMI of every player with a valid height, highest first.
type BMIReport struct {
	Average float64     `json:"average"`
	Players []PlayerBMI `json:"players"`
}

// HeightStats are descriptive statistics over player heights, in centimeters.
type HeightStats struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Average float64 `json:"average"`
	Median  float64 `json:"median"`
}

// DeleteResult confirms a hard delete.
type DeleteResult struct {
	Message string `json:"message"`
}
