package prompts

type PromptName string

const (
	PromptScenarioGenerate PromptName = "scenario_generate"
	PromptCoachingFeedback PromptName = "coaching_feedback"
	PromptScenarioNextStep PromptName = "scenario_next_step"
)
