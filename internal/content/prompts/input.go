package prompts

// Input is a superset of all fields any prompt might need.
// Missing fields render empty strings (templates use missingkey=zero).
type Input struct {
	// Scenario generation
	Framework  string
	Difficulty string
	Topic      string

	// Learner profile
	CompletedScenarios int
	SuccessRate        int
	StrengthsCSV       string
	WeaknessesCSV      string

	// One "Step N: Decision M (P points)" line per recorded decision.
	DecisionsText string

	// Continuation
	ScenarioTitle string
	Situation     string
	DecisionID    int
	Points        int
}
