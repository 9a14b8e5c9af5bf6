package entity

import "edgarqa/internal/catalog"

// countryAliases maps case-folded user-visible strings to canonical
// country names. Seeded with a representative slice of the EDGAR
// country coverage plus the alias forms a user is likely to type.
var countryAliases = map[string]string{
	"usa":                         "United States of America",
	"us":                          "United States of America",
	"u.s.":                        "United States of America",
	"u.s.a.":                      "United States of America",
	"united states":               "United States of America",
	"united states of america":    "United States of America",
	"america":                     "United States of America",
	"uk":                          "United Kingdom",
	"u.k.":                        "United Kingdom",
	"united kingdom":              "United Kingdom",
	"great britain":               "United Kingdom",
	"britain":                     "United Kingdom",
	"germany":                     "Germany",
	"deutschland":                 "Germany",
	"france":                      "France",
	"china":                       "China",
	"prc":                         "China",
	"peoples republic of china":   "China",
	"india":                       "India",
	"japan":                       "Japan",
	"brazil":                      "Brazil",
	"brasil":                      "Brazil",
	"russia":                      "Russian Federation",
	"russian federation":          "Russian Federation",
	"canada":                      "Canada",
	"australia":                   "Australia",
	"south korea":                 "Republic of Korea",
	"korea":                       "Republic of Korea",
	"republic of korea":           "Republic of Korea",
	"mexico":                      "Mexico",
	"indonesia":                   "Indonesia",
	"south africa":                "South Africa",
	"italy":                       "Italy",
	"spain":                       "Spain",
	"netherlands":                 "Netherlands",
	"the netherlands":             "Netherlands",
	"holland":                     "Netherlands",
	"poland":                      "Poland",
	"turkey":                      "Turkey",
	"turkiye":                     "Turkey",
	"saudi arabia":                "Saudi Arabia",
	"nigeria":                     "Nigeria",
	"egypt":                       "Egypt",
	"argentina":                   "Argentina",
	"sweden":                      "Sweden",
	"norway":                      "Norway",
	"switzerland":                 "Switzerland",
}

// countryISO3 maps canonical country names to ISO3 codes.
var countryISO3 = map[string]string{
	"United States of America": "USA",
	"United Kingdom":           "GBR",
	"Germany":                  "DEU",
	"France":                   "FRA",
	"China":                    "CHN",
	"India":                    "IND",
	"Japan":                    "JPN",
	"Brazil":                   "BRA",
	"Russian Federation":       "RUS",
	"Canada":                   "CAN",
	"Australia":                "AUS",
	"Republic of Korea":        "KOR",
	"Mexico":                   "MEX",
	"Indonesia":                "IDN",
	"South Africa":             "ZAF",
	"Italy":                    "ITA",
	"Spain":                    "ESP",
	"Netherlands":              "NLD",
	"Poland":                   "POL",
	"Turkey":                   "TUR",
	"Saudi Arabia":             "SAU",
	"Nigeria":                  "NGA",
	"Egypt":                    "EGY",
	"Argentina":                "ARG",
	"Sweden":                   "SWE",
	"Norway":                   "NOR",
	"Switzerland":              "CHE",
}

// admin1Aliases maps case-folded sub-national region names to their
// canonical form. Representative slice, not exhaustive.
var admin1Aliases = map[string]string{
	"california":    "California",
	"texas":         "Texas",
	"bavaria":       "Bavaria",
	"bayern":        "Bavaria",
	"north rhine-westphalia": "North Rhine-Westphalia",
	"ontario":       "Ontario",
	"new south wales": "New South Wales",
	"sao paulo state": "São Paulo",
	"maharashtra":   "Maharashtra",
	"guangdong":     "Guangdong",
	"ile-de-france": "Île-de-France",
}

// cityAliases maps case-folded city names to their canonical form.
var cityAliases = map[string]string{
	"nyc":            "New York City",
	"new york":       "New York City",
	"new york city":  "New York City",
	"la":             "Los Angeles",
	"los angeles":    "Los Angeles",
	"london":         "London",
	"berlin":         "Berlin",
	"munich":         "Munich",
	"münchen":        "Munich",
	"paris":          "Paris",
	"tokyo":          "Tokyo",
	"shanghai":       "Shanghai",
	"beijing":        "Beijing",
	"sao paulo":      "São Paulo",
	"são paulo":      "São Paulo",
	"mumbai":         "Mumbai",
	"delhi":          "Delhi",
	"sydney":         "Sydney",
	"toronto":        "Toronto",
}

// canonicalNames returns the deduplicated set of canonical names for
// a level, used as the fuzzy-match candidate pool.
func canonicalNames(aliases map[string]string) []string {
	seen := make(map[string]bool, len(aliases))
	out := make([]string, 0, len(aliases))
	for _, canon := range aliases {
		if !seen[canon] {
			seen[canon] = true
			out = append(out, canon)
		}
	}
	return out
}

func aliasTableFor(level catalog.Level) map[string]string {
	switch level {
	case catalog.LevelCountry:
		return countryAliases
	case catalog.LevelAdmin1:
		return admin1Aliases
	case catalog.LevelCity:
		return cityAliases
	default:
		return nil
	}
}
