package rto

import "slices"

// AllowedStates is the display order of the state selector.
var AllowedStates = []string{
	"Bihar",
	"Delhi",
	"Karnataka",
	"Madhya Pradesh",
	"Maharashtra",
	"Rajasthan",
	"Uttar Pradesh",
	"Uttarakhand",
}

// districtsByState must only be read through DistrictsFor so callers never
// hold a slice that aliases the table.
var districtsByState = map[string][]string{
	"Bihar": {
		"Aurangabad", "Bhagalpur", "Darbhanga", "Gaya", "Muzaffarpur", "Patna", "Purnia",
	},
	"Delhi": {
		"Central Delhi", "East Delhi", "New Delhi", "North Delhi", "South Delhi", "West Delhi",
	},
	"Karnataka": {
		"Bengaluru Urban", "Belagavi", "Dakshina Kannada", "Dharwad", "Kalaburagi", "Mysuru",
	},
	"Madhya Pradesh": {
		"Bhopal", "Gwalior", "Indore", "Jabalpur", "Rewa", "Sagar", "Ujjain",
	},
	"Maharashtra": {
		"Aurangabad", "Mumbai City", "Mumbai Suburban", "Nagpur", "Nashik", "Pune", "Thane",
	},
	"Rajasthan": {
		"Ajmer", "Bikaner", "Jaipur", "Jodhpur", "Kota", "Pratapgarh", "Udaipur",
	},
	"Uttar Pradesh": {
		"Agra", "Ghaziabad", "Gautam Buddha Nagar", "Gorakhpur", "Kanpur Nagar",
		"Lucknow", "Meerut", "Pratapgarh", "Prayagraj", "Varanasi",
	},
	"Uttarakhand": {
		"Almora", "Dehradun", "Haridwar", "Nainital", "Udham Singh Nagar",
	},
}

// DistrictsFor returns the districts mapped to state. An unknown or empty
// state yields an empty slice.
func DistrictsFor(state string) []string {
	districts, ok := districtsByState[state]
	if !ok {
		return []string{}
	}
	return slices.Clone(districts)
}

func IsAllowedState(state string) bool {
	return slices.Contains(AllowedStates, state)
}

// DistrictInState reports whether district is one of state's districts.
func DistrictInState(state, district string) bool {
	return district != "" && slices.Contains(districtsByState[state], district)
}
