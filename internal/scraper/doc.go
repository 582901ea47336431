// Package scraper fetches the HSV ticket overview and extracts pre-sale events from it.
//
// The page lists fixtures as rows of "table tbody tr". Cells are read by fixed
// position through Columns; rows that are too short for that layout are counted as
// structural mismatches and reported with a warning, so a redesign of the source page
// shows up in the logs instead of silently producing an empty feed. Fetch and parse
// failures degrade to an empty Result.
package scraper
