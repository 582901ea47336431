// Package match turns rows of the HSV ticket overview into pre-sale calendar events.
//
// The match package holds the extraction rules for one table row: deciding whether a
// fixture involves the tracked team and is still purchasable, classifying the kickoff
// cell as a single date or a sale period, reading the member pre-sale date
// ("Mitgl.-VVK"), and composing the German summary and description lines used in the
// published feed. Every function is pure; rows are processed independently.
package match
