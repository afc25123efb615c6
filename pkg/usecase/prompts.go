package usecase

import (
	_ "embed"
	"text/template"
)

//go:embed prompt/extract_system.md
var extractSystemPrompt string

//go:embed prompt/plan_system.md
var planSystemPromptTmpl string

var planSystemPrompt = template.Must(template.New("plan_system").Parse(planSystemPromptTmpl))

//go:embed prompt/score_system.md
var scoreSystemPrompt string

//go:embed prompt/advice_system.md
var adviceSystemPrompt string
