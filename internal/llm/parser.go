package llm

import (
	"fmt"
	"sort"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/Veraticus/facet-flow/internal/common"
	"github.com/Veraticus/facet-flow/internal/model"
)

const (
	maxBulletPoints = 5
	maxKeywords     = 20
)

var copyJSON = jsoniter.ConfigCompatibleWithStandardLibrary

type copyResponse struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	BulletPoints []string `json:"bullet_points"`
	Keywords     []string `json:"keywords"`
}

// parseCopy extracts the JSON object from a model reply. Code fences and
// surrounding prose are ignored.
func parseCopy(raw string) (model.GeneratedText, error) {
	body := stripFences(raw)
	start := strings.Index(body, "{")
	end := strings.LastIndex(body, "}")
	if start < 0 || end < start {
		return model.GeneratedText{}, common.Permanent(fmt.Errorf("%w: no JSON object in reply", ErrMalformedCopy))
	}

	var resp copyResponse
	if err := copyJSON.UnmarshalFromString(body[start:end+1], &resp); err != nil {
		return model.GeneratedText{}, common.Permanent(fmt.Errorf("%w: %w", ErrMalformedCopy, err))
	}

	text := model.GeneratedText{
		Title:        strings.TrimSpace(resp.Title),
		Description:  strings.TrimSpace(resp.Description),
		BulletPoints: cleanBullets(resp.BulletPoints),
		Keywords:     cleanKeywords(resp.Keywords),
	}
	if text.Title == "" || text.Description == "" {
		return model.GeneratedText{}, common.Permanent(fmt.Errorf("%w: title and description are required", ErrMalformedCopy))
	}
	return text, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	return strings.TrimSuffix(strings.TrimSpace(s), "```")
}

func cleanBullets(in []string) []string {
	var out []string
	for _, b := range in {
		b = strings.TrimSpace(strings.TrimLeft(b, "-•* "))
		if b == "" {
			continue
		}
		out = append(out, b)
		if len(out) == maxBulletPoints {
			break
		}
	}
	return out
}

func cleanKeywords(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, k := range in {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	if len(out) > maxKeywords {
		out = out[:maxKeywords]
	}
	return out
}
