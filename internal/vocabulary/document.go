package vocabulary

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default_vocabulary.yaml
var defaultVocabularyYAML []byte

// Document is the on-disk vocabulary.
type Document struct {
	Version                string               `json:"version,omitempty" yaml:"version,omitempty"`
	Gender                 []string             `json:"gender" yaml:"gender"`
	ItemType               []string             `json:"item_type" yaml:"item_type"`
	Size                   []string             `json:"size" yaml:"size"`
	Categories             OrderedMap[[]string] `json:"categories" yaml:"categories"`
	ProductTypes           OrderedMap[Branches] `json:"product_types" yaml:"product_types"`
	Colors                 []string             `json:"colors" yaml:"colors"`
	Materials              []string             `json:"materials" yaml:"materials"`
	Patterns               []string             `json:"patterns" yaml:"patterns"`
	Usages                 []string             `json:"usages" yaml:"usages"`
	Brands                 []string             `json:"brands" yaml:"brands"`
	StyleHierarchy         Tree                 `json:"style_hierarchy" yaml:"style_hierarchy"`
	CategoryKeywordMapping OrderedMap[[]string] `json:"category_keyword_mapping" yaml:"category_keyword_mapping"`
	ColorKeywordMapping    OrderedMap[[]string] `json:"color_keyword_mapping" yaml:"color_keyword_mapping"`
	MaterialKeywordMapping OrderedMap[[]string] `json:"material_keyword_mapping" yaml:"material_keyword_mapping"`
	PatternKeywordMapping  OrderedMap[[]string] `json:"pattern_keyword_mapping" yaml:"pattern_keyword_mapping"`
}

// DefaultDocument returns a fresh copy of the built-in vocabulary.
func DefaultDocument() *Document {
	doc, err := ParseDocument(defaultVocabularyYAML, FormatYAML)
	if err != nil {
		panic(fmt.Sprintf("built-in vocabulary is malformed: %v", err))
	}
	return doc
}

// DefaultStyleHierarchy returns the built-in style hierarchy.
func DefaultStyleHierarchy() Tree {
	return DefaultDocument().StyleHierarchy
}

// Format is a vocabulary document encoding.
type Format string

// Supported encodings.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatForPath picks the encoding from a file extension, defaulting to JSON.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ParseDocument decodes a vocabulary document.
func ParseDocument(data []byte, format Format) (*Document, error) {
	var doc Document
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse vocabulary yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("failed to parse vocabulary json: %w", err)
		}
	}
	return &doc, nil
}

// Encode serializes the document.
func (d *Document) Encode(format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		data, err := yaml.Marshal(d)
		if err != nil {
			return nil, fmt.Errorf("failed to encode vocabulary yaml: %w", err)
		}
		return data, nil
	default:
		data, err := json.MarshalIndent(d, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode vocabulary json: %w", err)
		}
		return append(data, '\n'), nil
	}
}
