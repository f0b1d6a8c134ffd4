package analyses

var v1Fields = []Field{
	{Name: "Company Name", Kind: KindString},
	{Name: "Founder(s)", Kind: KindString},
	{Name: "Problem Statement", Kind: KindString},
	{Name: "Solution Overview", Kind: KindString},
	{Name: "Market Size", Kind: KindString},
	{Name: "Business Model", Kind: KindString},
	{Name: "Traction", Kind: KindString},
	{Name: "Funding Ask", Kind: KindString},
	{Name: "Key Risks/Red Flags", Kind: KindString},
	{Name: "1-Sentence Investment Summary", Kind: KindString},
	{Name: "Overall Score", Kind: KindScore},
}

func init() {
	register(Schema{
		Version:      "v1",
		Fields:       v1Fields,
		ScoreField:   "Overall Score",
		ScoreMax:     10,
		ScoreExample: 5,
	})
}
