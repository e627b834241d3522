// Package domain models the yearly climate data behind the dashboard:
// catastrophe events, per-region statistics, the administrative hierarchy
// and the electoral districts used to slice them.
//
// # Data Source
//
// Each year is published as one JSON document:
//
//	{
//	  "catastrophes": [ {"id": "...", "location": [lng, lat], "city": "...",
//	                     "type": "FLOOD", "date": "2019-04-20", "severity": 3,
//	                     "district": 412, "approximate": false}, ... ],
//	  "statistics":   { "0": {"avg_temp": 4.7, "avg_prec": 1012, ...},
//	                    "7": {"avg_temp": null, ...}, ... }
//	}
//
// Coordinates arrive in GeoJSON order (longitude first) and are swapped to
// (lat, lng) during parsing. Statistics are keyed by region or district id;
// key 0 is the province-wide aggregate.
//
// # Sparse Statistics
//
// Every statistic may be null. Absence is kept as a nil pointer and is never
// turned into zero, with one exception: the temperature delta against the
// reference year (1990) is always a number. When either the current or the
// reference average temperature is missing the delta is 0, so a gap in the
// data can never trigger a threshold crossing.
//
// # Severity
//
//	0 unknown < 1 minor < 2 moderate < 3 important < 4 extreme
//
// The order is total and drives the min/max severity of catastrophe groups.
//
// # Threshold Crossing
//
// A region's crossing year is the first year of the timeline, in timeline
// order, whose delta is at least 1.5°C. The timeline mixes observed years
// (1990–2035) with modeled years (2050, 2100) and need not be contiguous.
// The first crossing wins; regions that never cross have no entry.
package domain
