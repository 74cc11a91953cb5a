package workers

import (
	"bytes"
	"text/template"
)

// System instructions for the LLM calls made by the handlers.
const (
	mistakeAnalysisSystemPrompt = `You are an experienced tutor analyzing a student's wrongly-answered question.
Respond with a single JSON object and nothing else, using exactly these keys:
"knowledge_points" (array of strings naming the concepts tested),
"error_analysis" (string explaining the likely cause of the mistake),
"suggestion" (string with one concrete study recommendation).`

	questionVariantSystemPrompt = `You are an experienced teacher writing practice questions.
Given a source question, produce variants that test the same concepts with
different surface details. Respond with a JSON array and nothing else; each
element is an object with keys "question", "options" (array of strings, may
be empty for free-response), "answer" and "explanation".`
)

var mistakeAnalysisPrompt = template.Must(template.New("mistake_analysis").Parse(
	`Subject: {{.Subject}}

Question:
{{.Question}}

{{if .Answer}}Student's answer:
{{.Answer}}

{{end}}Analyze this mistake.`))

var questionVariantPrompt = template.Must(template.New("question_variants").Parse(
	`Subject: {{.Subject}}

Source question (JSON):
{{.Content}}

Generate {{.Count}} variant questions.`))

// renderPrompt executes a prompt template with the given data.
func renderPrompt(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
