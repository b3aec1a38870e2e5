package dict

// English returns the built-in English tables with empty in-memory
// coreference dictionary, signatures and vectors.
func English() *Dictionaries {
	d := &Dictionaries{
		FirstPersonPronouns: NewSet("i", "me", "myself", "mine", "my", "we", "us", "ourself",
			"ourselves", "ours", "our"),
		SecondPersonPronouns: NewSet("you", "yourself", "yours", "your", "yourselves"),
		ThirdPersonPronouns: NewSet("he", "him", "himself", "his", "she", "her", "herself", "hers",
			"it", "its", "itself", "they", "them", "themselves", "their", "theirs", "'em"),
		ReflexivePronouns: NewSet("myself", "yourself", "yourselves", "himself", "herself", "itself",
			"ourselves", "ourself", "themselves", "oneself"),
		RelativePronouns:   NewSet("that", "who", "which", "whom", "where", "whose"),
		PossessivePronouns: NewSet("my", "your", "his", "her", "its", "our", "their", "whose"),
		IndefinitePronouns: NewSet("another", "anybody", "anyone", "anything", "each", "either",
			"enough", "everybody", "everyone", "everything", "less", "little", "much", "neither",
			"no one", "nobody", "nothing", "one", "other", "plenty", "somebody", "someone",
			"something", "both", "few", "fewer", "many", "others", "several", "all", "any", "more",
			"most", "none", "some", "such"),
		NotOrganizationPRP: NewSet("i", "me", "myself", "mine", "my", "yourself", "he", "him",
			"himself", "his", "she", "her", "herself", "hers", "here"),
		StatesAbbreviation: map[string]string{
			"AL": "Alabama", "AK": "Alaska", "AZ": "Arizona", "AR": "Arkansas", "CA": "California",
			"CO": "Colorado", "CT": "Connecticut", "DE": "Delaware", "FL": "Florida", "GA": "Georgia",
			"HI": "Hawaii", "ID": "Idaho", "IL": "Illinois", "IN": "Indiana", "IA": "Iowa",
			"KS": "Kansas", "KY": "Kentucky", "LA": "Louisiana", "ME": "Maine", "MD": "Maryland",
			"MA": "Massachusetts", "MI": "Michigan", "MN": "Minnesota", "MS": "Mississippi",
			"MO": "Missouri", "MT": "Montana", "NE": "Nebraska", "NV": "Nevada", "NH": "New Hampshire",
			"NJ": "New Jersey", "NM": "New Mexico", "NY": "New York", "NC": "North Carolina",
			"ND": "North Dakota", "OH": "Ohio", "OK": "Oklahoma", "OR": "Oregon", "PA": "Pennsylvania",
			"RI": "Rhode Island", "SC": "South Carolina", "SD": "South Dakota", "TN": "Tennessee",
			"TX": "Texas", "UT": "Utah", "VT": "Vermont", "VA": "Virginia", "WA": "Washington",
			"WV": "West Virginia", "WI": "Wisconsin", "WY": "Wyoming",
		},
		PersonTitles: NewSet("mr.", "mrs.", "ms.", "miss", "dr.", "prof.", "sir", "president",
			"senator", "sen.", "governor", "gov.", "mayor", "minister", "prime", "chairman",
			"secretary", "general", "gen.", "judge", "king", "queen", "prince", "princess", "pope",
			"rep.", "representative", "chancellor", "lord", "lady"),
		CorefDict:  NewMemoryPairCounts(),
		Signatures: NewMemorySignatures(),
		Vectors:    NewMemoryVectors(),
	}

	d.AllPronouns = make(Set)
	for _, s := range []Set{d.FirstPersonPronouns, d.SecondPersonPronouns, d.ThirdPersonPronouns} {
		for w := range s {
			d.AllPronouns.Add(w)
		}
	}

	for place, dems := range map[string][]string{
		"america":        {"american", "americans"},
		"united states":  {"american", "americans"},
		"britain":        {"british", "briton", "britons"},
		"united kingdom": {"british", "briton", "britons"},
		"england":        {"english", "englishman", "englishmen"},
		"france":         {"french", "frenchman", "frenchmen"},
		"germany":        {"german", "germans"},
		"china":          {"chinese"},
		"japan":          {"japanese"},
		"russia":         {"russian", "russians"},
		"italy":          {"italian", "italians"},
		"spain":          {"spanish", "spaniard", "spaniards"},
		"canada":         {"canadian", "canadians"},
		"mexico":         {"mexican", "mexicans"},
		"india":          {"indian", "indians"},
		"israel":         {"israeli", "israelis"},
		"iraq":           {"iraqi", "iraqis"},
		"iran":           {"iranian", "iranians"},
		"egypt":          {"egyptian", "egyptians"},
		"korea":          {"korean", "koreans"},
		"taiwan":         {"taiwanese"},
		"palestine":      {"palestinian", "palestinians"},
		"afghanistan":    {"afghan", "afghans"},
		"pakistan":       {"pakistani", "pakistanis"},
		"australia":      {"australian", "australians"},
		"brazil":         {"brazilian", "brazilians"},
		"europe":         {"european", "europeans"},
		"africa":         {"african", "africans"},
		"asia":           {"asian", "asians"},
	} {
		d.AddDemonym(place, dems...)
	}
	return d
}
