package components

import "turnaround/internal/viewmodel"

//go:generate templ generate

func roundClass(round viewmodel.BoardRound) string {
	if round.Current {
		return "round round-current"
	}
	return "round"
}

func onTimeLabel(onTime bool) string {
	if onTime {
		return "on time"
	}
	return "late"
}
