package covid19

// LocationUS is the national location code.
const LocationUS = "US"

// stateFIPS are the two-digit FIPS codes of the states, DC and the territories.
var stateFIPS = []string{
	"01", "02", "04", "05", "06", "08", "09", "10", "11", "12", "13", "15", "16", "17", "18", "19",
	"20", "21", "22", "23", "24", "25", "26", "27", "28", "29", "30", "31", "32", "33", "34", "35",
	"36", "37", "38", "39", "40", "41", "42", "44", "45", "46", "47", "48", "49", "50", "51", "53",
	"54", "55", "56", "60", "66", "69", "72", "74", "78",
}

var stateSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(stateFIPS))
	for _, c := range stateFIPS {
		m[c] = struct{}{}
	}
	return m
}()

// StateLocations returns "US" followed by every state-level FIPS code.
func StateLocations() []string {
	return append([]string{LocationUS}, stateFIPS...)
}

// IsStateLocation reports whether loc is "US" or a state-level FIPS code.
func IsStateLocation(loc string) bool {
	if loc == LocationUS {
		return true
	}
	_, ok := stateSet[loc]
	return ok
}

// IsCountyLocation reports whether loc is a five-digit county FIPS code inside a known state.
// Only the state prefix is checked against the code list.
func IsCountyLocation(loc string) bool {
	if len(loc) != 5 {
		return false
	}
	for i := 0; i < len(loc); i++ {
		if loc[i] < '0' || loc[i] > '9' {
			return false
		}
	}
	if loc[2:] == "000" {
		return false
	}
	_, ok := stateSet[loc[:2]]
	return ok
}
