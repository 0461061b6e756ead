// Package llm writes product copy with hosted language models. Responses are
// cached by prompt, rate limited, and retried; the deterministic template
// generator covers providers that fail.
package llm
