package prompts

// RegisterAll registers every prompt. Build calls it once on first use.
func RegisterAll() {
	RegisterSpec(Spec{
		Name:        PromptScenarioGenerate,
		Version:     1,
		SchemaName:  "generated_scenario",
		Schema:      ScenarioSchema,
		Temperature: 0.8,
		System: `
You are an expert Agile coach and project management trainer. Generate realistic, educational scenarios that help project managers develop practical skills.`,
		User: `
Generate a realistic Agile project management scenario for {{.Framework}} framework at {{.Difficulty}} level{{if .Topic}} focused on {{.Topic}}{{end}}.

The scenario should address real-world challenges that project managers face, including:
- Stakeholder conflicts and competing priorities
- Time pressure and decision-making under uncertainty
- Team dynamics and communication challenges
- Technical constraints and resource limitations

Include:
1. A compelling title and description
2. Estimated duration (10-30 minutes)
3. 2-3 learning objectives
4. At least one detailed step with:
   - Realistic situation description
   - 2-3 key characters with names, roles, and personality traits
   - 4 decision options with different point values (10-25 points)
   - Specific feedback for each decision explaining why it's effective or not

Make characters diverse and realistic. Decisions should reflect different approaches to Agile leadership and project management.

Respond with a JSON object with keys:
title, description, framework, difficulty, duration (minutes, integer), learningObjectives (array of strings),
content: { steps: [ { id, title, situation, characters: [ { name, role, personality, avatar } ],
decisions: [ { id, text, description, points, feedback } ] } ] }.`,
		Validators: []Validator{
			RequireNonEmpty("Framework", func(in Input) string { return in.Framework }),
			RequireNonEmpty("Difficulty", func(in Input) string { return in.Difficulty }),
		},
	})

	RegisterSpec(Spec{
		Name:        PromptCoachingFeedback,
		Version:     1,
		SchemaName:  "coaching_feedback",
		Schema:      FeedbackSchema,
		Temperature: 0.7,
		System: `
You are an experienced Agile coach providing personalized feedback to help project managers improve their skills. Be specific, constructive, and encouraging.`,
		User: `
Analyze the user's performance in an Agile scenario and provide personalized coaching feedback.
{{if .ScenarioTitle}}
Scenario: {{.ScenarioTitle}}
{{end}}
User Profile:
- Completed scenarios: {{.CompletedScenarios}}
- Success rate: {{.SuccessRate}}%
- Known strengths: {{if .StrengthsCSV}}{{.StrengthsCSV}}{{else}}None identified{{end}}
- Areas for improvement: {{if .WeaknessesCSV}}{{.WeaknessesCSV}}{{else}}None identified{{end}}

User Decisions:
{{.DecisionsText}}

Provide 2-3 specific, actionable insights focusing on:
1. What they did well (strengths to reinforce)
2. Areas for improvement with specific suggestions
3. Personalized recommendations based on their profile

Each insight should be 1-2 sentences and directly applicable to real project management situations.

Respond with a JSON object: { "feedback": [ { "type": "insight|strength|improvement|recommendation", "title": "...", "description": "...", "priority": "low|medium|high" } ] }.`,
		Validators: []Validator{
			RequireNonEmpty("DecisionsText", func(in Input) string { return in.DecisionsText }),
		},
	})

	RegisterSpec(Spec{
		Name:        PromptScenarioNextStep,
		Version:     1,
		SchemaName:  "scenario_step",
		Schema:      StepSchema,
		Temperature: 0.8,
		System: `
You are creating an educational Agile simulation. Make the scenario progression feel realistic and challenging while maintaining educational value.`,
		User: `
Continue an Agile scenario based on the user's decision.

Current Scenario: {{.ScenarioTitle}} ({{.Framework}}, {{.Difficulty}})

Previous Step:
- Situation: {{.Situation}}
- User chose decision {{.DecisionID}} ({{.Points}} points)

Generate the next logical step that:
1. Builds on the consequences of their decision
2. Introduces new challenges or complications
3. Maintains realistic project management dynamics
4. Provides 4 new decision options with varying effectiveness

The step should feel like a natural continuation of the story while presenting new learning opportunities.

Respond with a JSON object: { id, title, situation, characters: [ { name, role, personality, avatar } ], decisions: [ { id, text, description, points (10-25), feedback } ] }.`,
		Validators: []Validator{
			RequireNonEmpty("Situation", func(in Input) string { return in.Situation }),
			RequirePositive("DecisionID", func(in Input) int { return in.DecisionID }),
		},
	})
}
