// Package domain models traffic-crash records and the filtering and
// aggregation rules that turn them into dashboard views.
//
// # Data Source
//
// Crash records come from a district crash export published as delimited
// text with one header row. Column names are exact and case-sensitive:
//
//	DATE, WARD, LATITUDE, LONGITUDE, ADDRESS
//	FATAL_DRIVER, FATAL_PEDESTRIAN, FATAL_BICYCLIST
//	MAJORINJURIES_DRIVER, MAJORINJURIES_PEDESTRIAN, MAJORINJURIES_BICYCLIST
//	MINORINJURIES_DRIVER, MINORINJURIES_PEDESTRIAN, MINORINJURIES_BICYCLIST
//	TOTAL_PEDESTRIANS, TOTAL_BICYCLES
//
// Any other columns are carried through untouched for popups and export.
//
// # Conventions
//
// Year:
//
//	Derived from the first four characters of DATE ("2023-05-14..." -> "2023").
//	Rows with a shorter DATE fall back to their own "year" column, else "".
//	A record with an empty year never lands in a trend bucket or a
//	year-over-year comparison.
//
// Partial years:
//
//	2018 is only partially covered by the export and is dropped at load
//	time, before any filter runs. See [PartialYear].
//
// Counters:
//
//	Counters are lenient. Blank, malformed or negative values count as 0,
//	so bad cells shrink a count instead of failing the load.
//
// Coordinates:
//
//	LATITUDE and LONGITUDE must both parse as finite numbers for a record
//	to be placed on the map. Unplaced records still count everywhere else.
//
// Wards:
//
//	Matched exactly as written. "unknown" and "null" (any case) are kept on
//	the record but left out of the selectable ward list.
//
// # Severity
//
// Two related but different rules exist and both are intentional:
//
//	Tier (donut):      Fatal > Major > Minor > None, first match wins.
//	Injury filter:     high = major>0
//	                   low  = major==0 && minor>0
//	                   none = major==0 && minor==0
//
// A fatal-only crash is tier Fatal yet passes the "none" injury filter.
package domain
