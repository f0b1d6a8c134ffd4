package analyses

var founderFields = []SubField{
	{Name: "name", Types: []string{"string"}, Example: NotProvided},
	{Name: "title", Types: []string{"string"}, Example: NotProvided},
	{Name: "educational_background", Types: []string{"string"}, Example: NotProvided},
	{Name: "previous_experience", Types: []string{"string"}, Example: NotProvided},
	{Name: "previous_startups", Types: []string{"string"}, Example: NotProvided},
	{Name: "key_achievements", Types: []string{"string"}, Example: NotProvided},
	{Name: "linkedin_mentioned", Types: []string{"string", "boolean"}, Example: NotProvided},
	{Name: "years_of_experience", Types: []string{"string", "number"}, Example: NotProvided},
}

var teamFields = []SubField{
	{Name: "team_size", Types: []string{"string", "number"}, Example: NotProvided},
	{Name: "technical_founders", Types: []string{"string", "number"}, Example: NotProvided},
	{Name: "business_founders", Types: []string{"string", "number"}, Example: NotProvided},
	{Name: "domain_expertise", Types: []string{"string"}, Example: NotProvided},
	{Name: "key_gaps", Types: []string{"string", "array"}, Example: NotProvided},
}

func init() {
	fields := make([]Field, 0, len(v1Fields)+2)
	// Founder details sit next to the flat founder summary.
	for _, f := range v1Fields {
		fields = append(fields, f)
		if f.Name == "Founder(s)" {
			fields = append(fields,
				Field{Name: "Founder Details", Kind: KindFounders},
				Field{Name: "Team Composition", Kind: KindTeam},
			)
		}
	}
	register(Schema{
		Version:       "v2",
		Fields:        fields,
		ScoreField:    "Overall Score",
		ScoreMax:      10,
		ScoreExample:  5,
		FounderFields: founderFields,
		TeamFields:    teamFields,
	})
}
