package model

// PlayerStats is the presentation-layer contract: one player with per-game
// averages. Field names and units are fixed — clients depend on them.
type PlayerStats struct {
	PlayerID             int          `json:"playerId"`
	Player               PlayerDetail `json:"player"`
	Season               int          `json:"season"`
	GamesPlayed          int          `json:"gamesPlayed"`
	PointsPerGame        float64      `json:"pointsPerGame"`
	Rebounds             float64      `json:"rebounds"`
	Assists              float64      `json:"assists"`
	FieldGoalPercentage  float64      `json:"fieldGoalPercentage"`
	ThreePointPercentage float64      `json:"threePointPercentage"`
	FreeThrowPercentage  float64      `json:"freeThrowPercentage"`
	MinutesPlayed        float64      `json:"minutesPlayed"`
	Steals               float64      `json:"steals"`
	Blocks               float64      `json:"blocks"`
	Turnovers            float64      `json:"turnovers"`
}

// PlayerDetail is the nested identity block inside PlayerStats.
type PlayerDetail struct {
	ID           int     `json:"id"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	Position     string  `json:"position"`
	JerseyNumber *string `json:"jersey_number,omitempty"`
	Height       *string `json:"height,omitempty"`
	Weight       *string `json:"weight,omitempty"`
}

// GamesSummary is the aggregate block of the recent-games response.
type GamesSummary struct {
	Record     string  `json:"record"` // "W-L", e.g. "7-3"
	AvgFor     float64 `json:"avgFor"`
	AvgAgainst float64 `json:"avgAgainst"`
	AvgDiff    float64 `json:"avgDiff"`
}
