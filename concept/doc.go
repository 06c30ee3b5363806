// Package concept selects the study excerpt shown on a given day.
//
// Split cuts a document into blocks at separator lines made of three or more
// hyphens. Index maps a calendar day to a block so that every run of seven
// blocks is shown for two consecutive weeks before the rotation moves on:
//
//	days := DaysBetween(start, today)
//	base := floorDiv(floorDiv(days, 7), 2) * 7
//	index := floorMod(base+floorMod(days, 7), n)
//
// Both functions are pure and safe for concurrent use.
package concept
