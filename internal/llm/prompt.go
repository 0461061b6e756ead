package llm

import (
	"fmt"
	"strings"

	"github.com/Veraticus/facet-flow/internal/model"
)

// candidatesPerAxis bounds how many ranked labels reach the prompt.
const candidatesPerAxis = 3

const systemPrompt = `You are an e-commerce copywriter for a fashion catalog. Write accurate product copy from the attributes provided. Never invent materials, colors or features that are not listed. Respond only with a JSON object of the form:
{"title": "...", "description": "...", "bullet_points": ["..."], "keywords": ["..."]}
The title is at most 80 characters. The description is two or three sentences. Give three to five bullet points and up to twenty lowercase keywords.`

// buildPrompt lists the product info and the top image candidates per axis.
// Identical inputs yield identical prompts.
func buildPrompt(product model.ProductInfo, image model.ImageAttributes) string {
	var b strings.Builder
	b.WriteString("Product information:\n")
	writeLine(&b, "Brand", product.Brand)
	writeLine(&b, "Gender", product.Gender)
	writeLine(&b, "Size", product.Size)

	b.WriteString("\nObserved attributes:\n")
	wrote := false
	for _, axis := range model.Axes {
		candidates := image.Candidates(axis)
		if len(candidates) == 0 {
			continue
		}
		if len(candidates) > candidatesPerAxis {
			candidates = candidates[:candidatesPerAxis]
		}
		labels := make([]string, len(candidates))
		for i, c := range candidates {
			if c.Confidence > 0 {
				labels[i] = fmt.Sprintf("%s (%.2f)", c.Name, c.Confidence)
			} else {
				labels[i] = c.Name
			}
		}
		fmt.Fprintf(&b, "- %s: %s\n", axis, strings.Join(labels, ", "))
		wrote = true
	}
	if !wrote {
		b.WriteString("- none\n")
	}

	b.WriteString("\nWrite the copy for this product.")
	return b.String()
}

func writeLine(b *strings.Builder, label, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		value = "unknown"
	}
	fmt.Fprintf(b, "- %s: %s\n", label, value)
}
