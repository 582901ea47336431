// Package calendar serializes pre-sale events into an iCalendar feed.
package calendar

import (
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/pfrederiksen/hsv-vvk/internal/match"
)

const (
	ProductID   = "-//hsv-vvk//Vorverkauf Feed//DE"
	ContentType = "text/calendar; charset=utf-8"
	timezone    = "Europe/Berlin"
)

// Generate renders events as a VCALENDAR document. An empty event list still
// produces a valid calendar so subscribers never see a broken download.
func Generate(name string, events []*match.Event) string {
	return generate(name, events, time.Now())
}

func generate(name string, events []*match.Event, stamp time.Time) string {
	cal := ics.NewCalendar()
	cal.SetProductId(ProductID)
	cal.SetMethod(ics.MethodPublish)
	cal.SetXWRTimezone(timezone)
	if name != "" {
		cal.SetName(name)
	}

	for _, evt := range events {
		uid := evt.UID
		if uid == "" {
			uid = match.EventUID(evt)
		}

		vevent := cal.AddEvent(uid)
		vevent.SetDtStampTime(stamp)
		vevent.SetStartAt(evt.Start)
		vevent.SetEndAt(evt.End)
		vevent.SetSummary(evt.Summary)
		vevent.SetDescription(evt.Description)
	}

	return cal.Serialize()
}

// Filename is the attachment name offered for download, e.g. "HSV_Vorverkauf.ics".
func Filename(team string) string {
	name := strings.Join(strings.Fields(team), "_")
	if name == "" {
		name = match.DefaultTeam
	}
	return name + "_Vorverkauf.ics"
}
