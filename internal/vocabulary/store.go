// Package vocabulary holds the controlled vocabulary and validates field values against it.
package vocabulary

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/Veraticus/facet-flow/internal/model"
	"github.com/Veraticus/facet-flow/internal/pattern"
)

// ValidationContext carries the parent levels needed to validate
// hierarchical fields. Empty strings mean absent.
type ValidationContext struct {
	ItemType string
	Category string
}

// MatchPolicy tunes fuzzy matching.
type MatchPolicy struct {
	FuzzyCutoff      float64
	SuggestionCutoff float64
	SuggestionLimit  int
	MaxSuggestions   int
}

// DefaultMatchPolicy returns the stock cutoffs.
func DefaultMatchPolicy() MatchPolicy {
	return MatchPolicy{
		FuzzyCutoff:      0.6,
		SuggestionCutoff: 0.5,
		SuggestionLimit:  5,
		MaxSuggestions:   3,
	}
}

// Store serves one vocabulary document plus an in-memory overlay of custom terms.
// The document is immutable after construction; only the overlay changes.
type Store struct {
	doc      *Document
	logger   *slog.Logger
	custom   map[string][]string
	itemTree Tree
	policy   MatchPolicy
	mu       sync.RWMutex
}

// Option configures a Store.
type Option func(*Store)

// WithPolicy overrides the fuzzy matching policy.
func WithPolicy(p MatchPolicy) Option {
	return func(s *Store) {
		defaults := DefaultMatchPolicy()
		if p.FuzzyCutoff <= 0 {
			p.FuzzyCutoff = defaults.FuzzyCutoff
		}
		if p.SuggestionCutoff <= 0 {
			p.SuggestionCutoff = defaults.SuggestionCutoff
		}
		if p.SuggestionLimit <= 0 {
			p.SuggestionLimit = defaults.SuggestionLimit
		}
		if p.MaxSuggestions <= 0 {
			p.MaxSuggestions = defaults.MaxSuggestions
		}
		s.policy = p
	}
}

// WithLogger sets the logger used for load warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New builds a store over doc. A nil doc yields the built-in vocabulary.
func New(doc *Document, opts ...Option) *Store {
	if doc == nil {
		doc = DefaultDocument()
	}
	s := &Store{
		doc:    doc,
		logger: slog.Default(),
		custom: make(map[string][]string),
		policy: DefaultMatchPolicy(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.itemTree = buildItemTree(doc)
	return s
}

// Load reads the vocabulary at path. A missing or malformed document falls back
// to the built-in vocabulary; Load never fails.
func Load(path string, opts ...Option) *Store {
	s := New(DefaultDocument(), opts...)
	if path == "" {
		return s
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug("vocabulary file not found, using built-in vocabulary", "path", path)
		} else {
			s.logger.Warn("failed to read vocabulary, using built-in vocabulary", "path", path, "error", err)
		}
		return s
	}

	doc, err := ParseDocument(data, FormatForPath(path))
	if err != nil {
		s.logger.Warn("malformed vocabulary, using built-in vocabulary", "path", path, "error", err)
		return s
	}

	s.doc = doc
	s.itemTree = buildItemTree(doc)
	s.logger.Debug("loaded vocabulary", "path", path, "version", doc.Version)
	return s
}

func buildItemTree(doc *Document) Tree {
	var tree Tree
	for _, itemType := range doc.ItemType {
		var branches Branches
		categories, _ := doc.Categories.Get(itemType)
		productTypes, _ := doc.ProductTypes.Get(itemType)
		for _, category := range categories {
			types, _ := productTypes.Get(category)
			branches.Set(category, types)
		}
		tree.Set(itemType, branches)
	}
	return tree
}

// Version returns the document version.
func (s *Store) Version() string {
	return s.doc.Version
}

// Document returns the underlying document. Callers must not modify it.
func (s *Store) Document() *Document {
	return s.doc
}

// Policy returns the active matching policy.
func (s *Store) Policy() MatchPolicy {
	return s.policy
}

// vocabularyList returns the configured terms for field, resolved through vctx
// for hierarchical fields. An empty result means the field is free-form.
func (s *Store) vocabularyList(field string, vctx ValidationContext) []string {
	switch field {
	case model.FieldNameGender:
		return s.doc.Gender
	case model.FieldNameItemType:
		return s.doc.ItemType
	case model.FieldNameSize:
		return s.doc.Size
	case model.FieldNameCategory:
		if vctx.ItemType == "" {
			return nil
		}
		categories, _ := s.doc.Categories.Get(vctx.ItemType)
		return categories
	case model.FieldNameProductType:
		if vctx.ItemType == "" || vctx.Category == "" {
			return nil
		}
		branches, _ := s.doc.ProductTypes.Get(vctx.ItemType)
		types, _ := branches.Get(vctx.Category)
		return types
	case model.FieldNameColor:
		return s.doc.Colors
	case model.FieldNameMaterial:
		return s.doc.Materials
	case model.FieldNamePattern:
		return s.doc.Patterns
	case model.FieldNameUsage:
		return s.doc.Usages
	case model.FieldNameBrand:
		return s.doc.Brands
	default:
		return nil
	}
}

// acceptedTerms is the vocabulary list plus custom terms for the field.
func (s *Store) acceptedTerms(field string, list []string) []string {
	custom := s.CustomTerms(field)
	if len(custom) == 0 {
		return list
	}
	out := make([]string, 0, len(list)+len(custom))
	out = append(out, list...)
	return append(out, custom...)
}

// Validate checks value against the vocabulary for field.
func (s *Store) Validate(field, value string, vctx ValidationContext) model.ValidationResult {
	value = strings.TrimSpace(value)
	if value == "" {
		return model.ValidationResult{}
	}

	normalized := Normalize(value)
	list := s.vocabularyList(field, vctx)
	if len(list) == 0 {
		return model.ValidationResult{Valid: true, Normalized: normalized}
	}

	terms := s.acceptedTerms(field, list)
	for _, term := range terms {
		if strings.EqualFold(term, normalized) {
			return model.ValidationResult{Valid: true, Normalized: term}
		}
	}

	return model.ValidationResult{
		Valid:       false,
		Normalized:  normalized,
		Suggestions: s.suggest(field, normalized, terms, s.policy.MaxSuggestions, s.policy.FuzzyCutoff),
	}
}

// Suggestions returns looser matches for value, for pick lists. A limit of
// zero uses the policy default.
func (s *Store) Suggestions(field, value string, vctx ValidationContext, limit int) []string {
	list := s.vocabularyList(field, vctx)
	if len(list) == 0 {
		return nil
	}
	if limit <= 0 {
		limit = s.policy.SuggestionLimit
	}
	return s.suggest(field, Normalize(value), s.acceptedTerms(field, list), limit, s.policy.SuggestionCutoff)
}

// suggest offers synonym hits from the field's keyword table first, then
// fuzzy matches, deduplicated and capped at n.
func (s *Store) suggest(field, normalized string, terms []string, n int, cutoff float64) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(term string) {
		if len(out) < n && !seen[term] {
			seen[term] = true
			out = append(out, term)
		}
	}

	if table := s.keywordTable(field); len(table) > 0 {
		for _, match := range pattern.NewMatcher(table).MatchAll(normalized) {
			if term, ok := findFold(terms, match.Term); ok {
				add(term)
			}
		}
	}

	for _, term := range closeMatches(normalized, terms, n, cutoff) {
		add(term)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

func findFold(terms []string, want string) (string, bool) {
	for _, t := range terms {
		if strings.EqualFold(t, want) {
			return t, true
		}
	}
	return "", false
}

func (s *Store) keywordTable(field string) pattern.Table {
	switch field {
	case model.FieldNameColor:
		return s.ColorKeywordMappings()
	case model.FieldNameMaterial:
		return s.MaterialKeywordMappings()
	case model.FieldNamePattern:
		return s.PatternKeywordMappings()
	case model.FieldNameCategory, model.FieldNameProductType:
		return s.CategoryKeywordMappings()
	default:
		return nil
	}
}

// ValidateHierarchy checks that the three levels form a path in the vocabulary.
func (s *Store) ValidateHierarchy(itemType, category, productType string) (bool, string) {
	if !contains(s.doc.ItemType, itemType) {
		return false, fmt.Sprintf("Invalid item_type: %s", itemType)
	}

	categories, _ := s.doc.Categories.Get(itemType)
	if !contains(categories, category) {
		return false, fmt.Sprintf("Category '%s' not valid for item_type '%s'", category, itemType)
	}

	if productType != "" {
		branches, _ := s.doc.ProductTypes.Get(itemType)
		types, _ := branches.Get(category)
		if !contains(types, productType) {
			return false, fmt.Sprintf("Product type '%s' not valid for category '%s'", productType, category)
		}
	}

	return true, ""
}

// HasProductTypes reports whether the vocabulary lists level-3 entries for category.
func (s *Store) HasProductTypes(itemType, category string) bool {
	branches, _ := s.doc.ProductTypes.Get(itemType)
	types, _ := branches.Get(category)
	return len(types) > 0
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// ValidOptions returns the sorted, deduplicated vocabulary and custom terms for field.
func (s *Store) ValidOptions(field string, vctx ValidationContext) []string {
	set := make(map[string]struct{})
	for _, term := range s.vocabularyList(field, vctx) {
		set[term] = struct{}{}
	}
	for _, term := range s.CustomTerms(field) {
		set[term] = struct{}{}
	}

	out := make([]string, 0, len(set))
	for term := range set {
		out = append(out, term)
	}
	sort.Strings(out)
	return out
}

// AddCustomTerm normalizes value and adds it to the overlay for field. Adding
// an existing term is a no-op. The normalized term is returned.
func (s *Store) AddCustomTerm(field, value string) string {
	normalized := Normalize(value)
	if normalized == "" {
		return ""
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !contains(s.custom[field], normalized) {
		s.custom[field] = append(s.custom[field], normalized)
	}
	return normalized
}

// CustomTerms returns the overlay terms for field in insertion order.
func (s *Store) CustomTerms(field string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.custom[field]...)
}

// CategoryKeywordMappings returns the category keyword rules.
func (s *Store) CategoryKeywordMappings() pattern.Table {
	return toTable(s.doc.CategoryKeywordMapping)
}

// ColorKeywordMappings returns the color keyword rules.
func (s *Store) ColorKeywordMappings() pattern.Table {
	return toTable(s.doc.ColorKeywordMapping)
}

// MaterialKeywordMappings returns the material keyword rules.
func (s *Store) MaterialKeywordMappings() pattern.Table {
	return toTable(s.doc.MaterialKeywordMapping)
}

// PatternKeywordMappings returns the pattern keyword rules.
func (s *Store) PatternKeywordMappings() pattern.Table {
	return toTable(s.doc.PatternKeywordMapping)
}

func toTable(m OrderedMap[[]string]) pattern.Table {
	table := make(pattern.Table, 0, m.Len())
	for _, term := range m.Keys() {
		keywords, _ := m.Get(term)
		table = append(table, pattern.Rule{Term: term, Keywords: keywords})
	}
	return table
}

// ItemTypeHierarchy returns item_type -> category -> product types, in
// document order.
func (s *Store) ItemTypeHierarchy() Tree {
	return s.itemTree
}

// StyleHierarchy returns the document's style hierarchy, or the built-in one
// when the document has none.
func (s *Store) StyleHierarchy() Tree {
	if s.doc.StyleHierarchy.Len() == 0 {
		return DefaultStyleHierarchy()
	}
	return s.doc.StyleHierarchy
}
