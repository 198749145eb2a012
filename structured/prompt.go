package structured

import "strings"

// RetryPrompt turns a list of missing-field descriptors into a corrective
// instruction for the model. Descriptors are reproduced verbatim, one bullet
// each, so cardinality explanations embedded in them survive intact.
func RetryPrompt(missing []string) string {
	var sb strings.Builder
	sb.WriteString("Your previous response was missing required information. Please provide a complete response including the following fields:\n")
	for _, m := range missing {
		sb.WriteString("- ")
		sb.WriteString(m)
		sb.WriteString("\n")
	}
	sb.WriteString("Keep all the correct information you already provided.")
	return sb.String()
}
