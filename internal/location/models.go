package location

import "time"

type Location struct {
	ID          string    `json:"id"`
	Country     string    `json:"country"`
	Region      string    `json:"region"`
	City        string    `json:"city"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Input is the natural key of a location. Values are matched exactly; no
// trimming or case folding is applied.
type Input struct {
	Country     string `json:"country"`
	Region      string `json:"region"`
	City        string `json:"city"`
	Description string `json:"description"`
}

type Patch struct {
	Country     *string `json:"country"`
	Region      *string `json:"region"`
	City        *string `json:"city"`
	Description *string `json:"description"`
}
