package scoring

// Field names the part of a job a keyword rule is matched against.
type Field string

const (
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
)

// Signal adds Weight to the score when any keyword occurs in Field.
// Negative weights are penalties.
type Signal struct {
	Name     string
	Field    Field
	Weight   int
	Keywords []string
}

// Exclusion drops a job before scoring when any keyword occurs in Field.
type Exclusion struct {
	Name     string
	Field    Field
	Keywords []string
}

// AgeBand awards Weight when a job has been open more than OverDays days.
// Bands are checked in order and only the first match counts.
type AgeBand struct {
	OverDays int
	Weight   int
}

// Rules is the complete, data-driven scoring configuration.
type Rules struct {
	Base       int
	AgeBands   []AgeBand
	Signals    []Signal
	Exclusions []Exclusion

	// ApplicationsOver/ApplicationsWeight reward postings with a high
	// application count. A zero weight disables the rule.
	ApplicationsOver   int
	ApplicationsWeight int
}

// DefaultRules reproduces the production scoring heuristic.
//
// The age bands award +15 above 60 days but +20 between 31 and 60 days. The
// inversion is deliberate until product confirms otherwise.
func DefaultRules() Rules {
	return Rules{
		Base: 50,
		AgeBands: []AgeBand{
			{OverDays: 60, Weight: 15},
			{OverDays: 30, Weight: 20},
		},
		Signals: []Signal{
			{
				Name:     "seniority",
				Field:    FieldTitle,
				Weight:   10,
				Keywords: []string{"senior", "lead", "principal", "sr.", "sr ", "leitend", "erfahren"},
			},
			{
				Name:     "technical_complexity",
				Field:    FieldDescription,
				Weight:   10,
				Keywords: []string{"sap", "security", "cybersecurity", "cyber security", "cloud", "enterprise", "it-sicherheit"},
			},
			{
				Name:     "sales_complexity",
				Field:    FieldDescription,
				Weight:   10,
				Keywords: []string{"consultative", "enterprise", "b2b", "solution", "lösungsvertrieb"},
			},
			{
				Name:     "inside_sales",
				Field:    FieldDescription,
				Weight:   -30,
				Keywords: []string{"inside sales"},
			},
		},
		Exclusions: []Exclusion{
			{
				Name:     "junior",
				Field:    FieldTitle,
				Keywords: []string{"junior", "trainee", "intern", "entry", "praktikant", "werkstudent"},
			},
			{
				Name:     "sdr_bdr",
				Field:    FieldTitle,
				Keywords: []string{"sdr", "bdr", "business development rep"},
			},
		},
		ApplicationsOver:   100,
		ApplicationsWeight: 10,
	}
}

// B2CExclusion is the optional retail/consumer rule set. It is not part of
// DefaultRules and is appended when enabled in configuration.
func B2CExclusion() Exclusion {
	return Exclusion{
		Name:     "b2c",
		Field:    FieldDescription,
		Keywords: []string{"b2c", "retail", "call center", "door-to-door"},
	}
}
