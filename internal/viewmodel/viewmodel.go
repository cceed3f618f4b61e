package viewmodel

// Board holds data for the scoreboard fragment.
type Board struct {
	SessionID       string
	Name            string
	CurrentRound    int
	TotalRounds     int
	GameOver        bool
	Rounds          []BoardRound
	Roles           []KPIRow
	Team            KPIRow
	CompletedRounds int
	OnTimeRounds    int
}

// BoardRound is one round's block of rows. Event is blank for rounds not yet reached.
type BoardRound struct {
	Number     int
	Status     string
	Current    bool
	Event      string
	Rows       []BoardRow
	GroundTime string
	Fine       string
	OnTime     bool
	Decided    bool
}

// BoardRow is one role's line within a round.
type BoardRow struct {
	Role       string
	Choice     string
	Span       string
	DirectCost string
	FineShare  string
	Note       string
}

// KPIRow is a cumulative line in the totals table.
type KPIRow struct {
	Label      string
	Minutes    string
	DirectCost string
	Fines      string
	Total      string
}
