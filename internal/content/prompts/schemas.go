package prompts

// Schemas are checked locally after the provider returns, so optional
// fields stay optional and normalization fills the gaps.

func StringArraySchema() map[string]any {
	return map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
}

func EnumSchema(values ...string) map[string]any {
	return map[string]any{"type": "string", "enum": values}
}

func CharacterSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":        map[string]any{"type": "string"},
			"role":        map[string]any{"type": "string"},
			"personality": map[string]any{"type": "string"},
			"avatar":      map[string]any{"type": "string"},
		},
		"required": []string{"name", "role"},
	}
}

func DecisionSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":          map[string]any{"type": "integer"},
			"text":        map[string]any{"type": "string", "minLength": 1},
			"description": map[string]any{"type": "string"},
			"points":      map[string]any{"type": "integer"},
			"feedback":    map[string]any{"type": "string"},
		},
		"required": []string{"text", "points"},
	}
}

func StepSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":         map[string]any{"type": "integer"},
			"title":      map[string]any{"type": "string"},
			"situation":  map[string]any{"type": "string", "minLength": 1},
			"characters": map[string]any{"type": "array", "items": CharacterSchema()},
			"decisions":  map[string]any{"type": "array", "items": DecisionSchema(), "minItems": 1},
		},
		"required": []string{"situation", "decisions"},
	}
}

func ScenarioSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title":              map[string]any{"type": "string", "minLength": 1},
			"description":        map[string]any{"type": "string"},
			"framework":          map[string]any{"type": "string"},
			"difficulty":         map[string]any{"type": "string"},
			"duration":           map[string]any{"type": "integer"},
			"learningObjectives": StringArraySchema(),
			"content": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"steps": map[string]any{"type": "array", "items": StepSchema(), "minItems": 1},
				},
				"required": []string{"steps"},
			},
		},
		"required": []string{"title", "content"},
	}
}

func FeedbackSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"feedback": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"type":        EnumSchema("insight", "strength", "improvement", "recommendation"),
						"title":       map[string]any{"type": "string"},
						"description": map[string]any{"type": "string"},
						"priority":    map[string]any{"type": "string"},
					},
					"required": []string{"type", "title", "description"},
				},
			},
		},
		"required": []string{"feedback"},
	}
}
