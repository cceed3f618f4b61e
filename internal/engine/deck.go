package engine

// EventCard is a disruption drawn once per round.
type EventCard struct {
	Description  string
	DelayMinutes int
}

// DefaultDeck is the fixed classroom deck.
func DefaultDeck() []EventCard {
	return []EventCard{
		{Description: "Clear skies, smooth ramp", DelayMinutes: 0},
		{Description: "Late inbound baggage transfer", DelayMinutes: 5},
		{Description: "Catering truck stuck at the barrier", DelayMinutes: 6},
		{Description: "Runway congestion on arrival", DelayMinutes: 7},
		{Description: "Fuel truck delayed", DelayMinutes: 8},
		{Description: "Passenger needs medical assistance", DelayMinutes: 10},
		{Description: "Thunderstorm closes the ramp", DelayMinutes: 12},
		{Description: "Security re-screening of cabin bags", DelayMinutes: 9},
	}
}

// drawEvents deals n cards from deck without replacement using a partial
// Fisher-Yates shuffle over a copy of the deck.
func drawEvents(rnd RandomSource, deck []EventCard, n int) []EventCard {
	pool := make([]EventCard, len(deck))
	copy(pool, deck)
	for i := 0; i < n && i < len(pool); i++ {
		j := i + rnd.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	if n > len(pool) {
		n = len(pool)
	}
	out := make([]EventCard, n)
	copy(out, pool[:n])
	return out
}
