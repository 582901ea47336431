package cli

import (
	"sort"
	"strings"

	"github.com/pfrederiksen/hsv-vvk/internal/match"
)

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortByPage     SortOrder = "page"
	SortByPreSale  SortOrder = "presale"
	SortByOpponent SortOrder = "opponent"
)

func (o SortOrder) valid() bool {
	switch o {
	case SortByPage, SortByPreSale, SortByOpponent:
		return true
	}
	return false
}

// sortEvents sorts events in place. Page order is the order of the source table.
func sortEvents(events []*match.Event, order SortOrder) {
	switch order {
	case SortByPreSale:
		sort.SliceStable(events, func(i, j int) bool {
			return events[i].Start.Before(events[j].Start)
		})
	case SortByOpponent:
		sort.SliceStable(events, func(i, j int) bool {
			oi, oj := strings.ToLower(opponent(events[i])), strings.ToLower(opponent(events[j]))
			if oi != oj {
				return oi < oj
			}
			return events[i].Start.Before(events[j].Start)
		})
	}
}

func opponent(evt *match.Event) string {
	if evt.IsHome {
		return evt.Away
	}
	return evt.Home
}
