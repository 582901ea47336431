package match

import (
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
)

// Defaults for the HSV ticket overview
const (
	DefaultTeam          = "HSV"
	DefaultPreSaleHour   = 10
	DefaultPreSaleMinute = 0
	EventDuration        = time.Hour
	uidDomain            = "hsv-vvk"
)

// DefaultExclusions are status phrases for fixtures without a member pre-sale:
// sold out, booking already open, details still pending.
var DefaultExclusions = []string{"Ausverkauft", "Hier buchen", "Infos folgen"}

// Berlin is the zone all source dates are interpreted in.
var Berlin = mustLoadLocation("Europe/Berlin")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic("loading time zone " + name + ": " + err.Error())
	}
	return loc
}

// Row is the named-column view of one fixture row
type Row struct {
	DateText string
	Home     string
	Away     string
	Status   string
}

// Event is a member pre-sale window ready to be published as a calendar entry.
type Event struct {
	UID         string    `json:"uid"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	Home        string    `json:"home"`
	Away        string    `json:"away"`
	IsHome      bool      `json:"is_home"`
	Kickoff     DateExpr  `json:"kickoff"`
}

// Rules controls which rows become events and how their dates are read.
type Rules struct {
	Team          string
	Exclusions    []string
	Location      *time.Location
	PreSaleHour   int
	PreSaleMinute int
}

// DefaultRules returns the rules for HSV fixtures in Europe/Berlin
func DefaultRules() Rules {
	return Rules{
		Team:          DefaultTeam,
		Exclusions:    append([]string(nil), DefaultExclusions...),
		Location:      Berlin,
		PreSaleHour:   DefaultPreSaleHour,
		PreSaleMinute: DefaultPreSaleMinute,
	}
}

func (r Rules) location() *time.Location {
	if r.Location == nil {
		return Berlin
	}
	return r.Location
}

// Accept reports whether a row involves the tracked team and its status text
// does not carry one of the exclusion phrases.
func (r Rules) Accept(row Row) bool {
	if !strings.Contains(row.Home, r.Team) && !strings.Contains(row.Away, r.Team) {
		return false
	}
	for _, phrase := range r.Exclusions {
		if phrase != "" && strings.Contains(row.Status, phrase) {
			return false
		}
	}
	return true
}

// Build runs the whole row pipeline. It returns false when the row is filtered
// out, has no usable kickoff date, or carries no valid member pre-sale date.
func (r Rules) Build(row Row) (*Event, bool) {
	if !r.Accept(row) {
		return nil, false
	}

	home := strings.TrimSpace(row.Home)
	away := CleanAway(row.Away)

	kickoff := ParseDateExpr(row.DateText, r.location())
	if kickoff.Kind == Single && !kickoff.HasDate {
		return nil, false
	}

	start, ok := r.ParsePreSale(row.Status)
	if !ok {
		return nil, false
	}

	isHome := strings.Contains(home, r.Team)
	opponent := home
	if isHome {
		opponent = away
	}

	evt := &Event{
		Start:       start,
		End:         start.Add(EventDuration),
		Summary:     Summary(home, away),
		Description: Describe(opponent, isHome, kickoff),
		Home:        home,
		Away:        away,
		IsHome:      isHome,
		Kickoff:     kickoff,
	}
	evt.UID = EventUID(evt)
	return evt, true
}

// EventUID derives a stable identifier from summary and pre-sale start, so a
// refreshed feed keeps the same UID for an unchanged pre-sale.
func EventUID(evt *Event) string {
	key := evt.Summary + "|" + evt.Start.UTC().Format(time.RFC3339)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String() + "@" + uidDomain
}

// NormalizeSpace trims s and collapses every whitespace run to a single space.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// CleanAway strips the "Ticketinfos" link label from the away team cell.
func CleanAway(s string) string {
	return strings.TrimSpace(strings.Replace(strings.TrimSpace(s), "Ticketinfos", "", 1))
}
