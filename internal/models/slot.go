package models

// Gap describes a run of free numbers strictly between two taken boundaries
// of a slot's 0–999 number space.
type Gap struct {
	Start int `json:"start"`
	End   int `json:"end"`
	Size  int `json:"size"`
}

// SlotSnapshot is a read-only view of one slot's occupancy.
type SlotSnapshot struct {
	Slot           int      `json:"slot"`
	TakenNumbers   []string `json:"takenNumbers"`
	TotalTaken     int      `json:"totalTaken"`
	TotalAvailable int      `json:"totalAvailable"`
	LargestGaps    []Gap    `json:"largestGaps"`
}

// AutoPickSuggestion is an advisory (slot, number) pair. It does not reserve
// the number — reservation only happens through pick creation.
type AutoPickSuggestion struct {
	Slot       int    `json:"slot"`
	PickNumber string `json:"pickNumber"`
}
