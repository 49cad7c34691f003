package provider

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ZaguanLabs/pugtl"
)

// buildSystemPrompt returns the instructions shared by the LLM backends.
func buildSystemPrompt(req TranslateRequest) string {
	sourceName := pugtl.GetLanguageName(orDefault(req.SourceLang, pugtl.SourceLang))
	targetName := pugtl.GetLanguageName(orDefault(req.TargetLang, pugtl.TargetLang))

	contextText := "The content is user interface text from a website's Pug templates."
	if req.Context != "" {
		contextText = fmt.Sprintf("The content is for: %s. Adapt the tone to be appropriate for this context.", req.Context)
	}

	prompt := fmt.Sprintf(`# Role
You are an expert translator of website interfaces from %s to %s.

# Context
%s

# Task
Translate each provided string from %s into natural, concise %s as it would appear on a website.

# Style Guide
- **Natural Flow**: Avoid literal translations. Use the wording a native speaker expects on buttons, labels and headings.
- **Length**: Keep labels short. Do not add explanations, quotes or punctuation that is not in the source.
- **HTML/Code Safety**: Do NOT translate HTML tags, class names, IDs, attributes, URLs or email addresses.
- **Interpolation**: Do NOT translate or alter placeholders such as #{name}, !{html}, #[strong text] or ${value}.
- **Formatting**: Preserve leading and trailing whitespace and HTML entities exactly.
- **Already English**: Return strings that are already in %s unchanged.
- **Context Hints**: Items may carry a "context" field describing where the text appears. Use it to choose wording; never include it in the output.`,
		sourceName, targetName, contextText, sourceName, targetName, targetName)

	prompt += `

# Format
Return a valid JSON object with a single key "translations" containing an array of strings in the exact same order as the input.
Example: { "translations": ["translated string 1", "translated string 2"] }
- Do NOT wrap in Markdown code blocks.`

	if len(req.ExcludedTerms) > 0 {
		terms := strings.Join(req.ExcludedTerms, "\n- ")
		prompt += fmt.Sprintf("\n\n# Exclusions\nDo NOT translate the following terms. Keep them exactly as they appear in the source:\n- %s", terms)
	}

	return prompt
}

// buildUserMessage encodes the texts as a JSON array, or as items with
// per-text context when any is present.
func buildUserMessage(req TranslateRequest) string {
	hasContexts := false
	for _, ctx := range req.TextContexts {
		if ctx != "" {
			hasContexts = true
			break
		}
	}

	if !hasContexts {
		data, _ := json.Marshal(req.Texts)
		return string(data)
	}

	type item struct {
		Text    string `json:"text"`
		Context string `json:"context,omitempty"`
	}

	items := make([]item, len(req.Texts))
	for i, text := range req.Texts {
		items[i].Text = text
		if i < len(req.TextContexts) {
			items[i].Context = req.TextContexts[i]
		}
	}

	data, _ := json.Marshal(map[string][]item{"items": items})
	return string(data)
}

// parseResponse extracts the translations array from a model reply.
func parseResponse(provider, content string, expectedCount int) ([]string, error) {
	content = stripCodeFence(content)

	// Try parsing as object first
	var objResult map[string]interface{}
	if err := json.Unmarshal([]byte(content), &objResult); err == nil {
		if translations, ok := objResult["translations"]; ok {
			if arr, ok := translations.([]interface{}); ok {
				return toStringSlice(arr, expectedCount)
			}
		}

		// Fallback: find first array value
		for _, v := range objResult {
			if arr, ok := v.([]interface{}); ok {
				return toStringSlice(arr, expectedCount)
			}
		}
	}

	var arrResult []interface{}
	if err := json.Unmarshal([]byte(content), &arrResult); err == nil {
		return toStringSlice(arrResult, expectedCount)
	}

	return nil, &pugtl.ProviderError{
		Provider:  provider,
		Message:   "invalid response format",
		Retryable: false,
	}
}

// stripCodeFence removes a ```json fence some models add despite being told
// not to.
func stripCodeFence(content string) string {
	t := strings.TrimSpace(content)
	if !strings.HasPrefix(t, "```") {
		return content
	}
	t = strings.TrimPrefix(t, "```")
	t = strings.TrimPrefix(t, "json")
	return strings.TrimSuffix(strings.TrimSpace(t), "```")
}

func toStringSlice(arr []interface{}, expectedCount int) ([]string, error) {
	result := make([]string, len(arr))
	for i, v := range arr {
		if s, ok := v.(string); ok {
			result[i] = s
		} else {
			result[i] = fmt.Sprintf("%v", v)
		}
	}

	if len(result) != expectedCount {
		return nil, &pugtl.CountMismatchError{
			Expected: expectedCount,
			Got:      len(result),
		}
	}

	return result, nil
}

func isRetryableError(err error) bool {
	errStr := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"rate limit",
		"timeout",
		"connection refused",
		"connection reset",
		"temporary",
		"unavailable",
		"resource_exhausted",
		"503",
		"502",
		"429",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
