package resolve

import "strings"

// stateNames maps postal abbreviations to full lowercase names: the 50
// states, DC, and the five territories that elect delegates.
var stateNames = map[string]string{
	"AL": "alabama",
	"AK": "alaska",
	"AZ": "arizona",
	"AR": "arkansas",
	"CA": "california",
	"CO": "colorado",
	"CT": "connecticut",
	"DE": "delaware",
	"FL": "florida",
	"GA": "georgia",
	"HI": "hawaii",
	"ID": "idaho",
	"IL": "illinois",
	"IN": "indiana",
	"IA": "iowa",
	"KS": "kansas",
	"KY": "kentucky",
	"LA": "louisiana",
	"ME": "maine",
	"MD": "maryland",
	"MA": "massachusetts",
	"MI": "michigan",
	"MN": "minnesota",
	"MS": "mississippi",
	"MO": "missouri",
	"MT": "montana",
	"NE": "nebraska",
	"NV": "nevada",
	"NH": "new hampshire",
	"NJ": "new jersey",
	"NM": "new mexico",
	"NY": "new york",
	"NC": "north carolina",
	"ND": "north dakota",
	"OH": "ohio",
	"OK": "oklahoma",
	"OR": "oregon",
	"PA": "pennsylvania",
	"RI": "rhode island",
	"SC": "south carolina",
	"SD": "south dakota",
	"TN": "tennessee",
	"TX": "texas",
	"UT": "utah",
	"VT": "vermont",
	"VA": "virginia",
	"WA": "washington",
	"WV": "west virginia",
	"WI": "wisconsin",
	"WY": "wyoming",
	"DC": "district of columbia",
	"AS": "american samoa",
	"GU": "guam",
	"MP": "northern mariana islands",
	"PR": "puerto rico",
	"VI": "virgin islands",
}

// fullNames holds the canonical full names for pass-through matching.
var fullNames = func() map[string]bool {
	m := make(map[string]bool, len(stateNames))
	for _, name := range stateNames {
		m[name] = true
	}
	return m
}()

// CanonicalState maps a postal abbreviation or a full state name to the full
// lowercase name. Unrecognized input returns ok=false and the caller skips
// the record; there is no silent default.
func CanonicalState(abbrOrName string) (string, bool) {
	s := strings.TrimSpace(abbrOrName)
	if s == "" {
		return "", false
	}
	if full, ok := stateNames[strings.ToUpper(s)]; ok {
		return full, true
	}
	lower := strings.ToLower(s)
	if fullNames[lower] {
		return lower, true
	}
	return "", false
}
