package vocabulary

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/Veraticus/facet-flow/internal/model"
)

// ErrLocked is returned when another process holds the vocabulary lock.
var ErrLocked = errors.New("vocabulary is locked by another process")

// mergeable lists the flat fields whose custom terms are folded into the document on save.
var mergeable = []string{
	model.FieldNameGender, model.FieldNameItemType, model.FieldNameSize,
	model.FieldNameColor, model.FieldNameMaterial, model.FieldNamePattern,
	model.FieldNameUsage, model.FieldNameBrand,
}

// MergedDocument returns a copy of the document with flat-field custom terms
// appended to their lists.
func (s *Store) MergedDocument() *Document {
	merged := *s.doc
	lists := map[string]*[]string{
		model.FieldNameGender:   &merged.Gender,
		model.FieldNameItemType: &merged.ItemType,
		model.FieldNameSize:     &merged.Size,
		model.FieldNameColor:    &merged.Colors,
		model.FieldNameMaterial: &merged.Materials,
		model.FieldNamePattern:  &merged.Patterns,
		model.FieldNameUsage:    &merged.Usages,
		model.FieldNameBrand:    &merged.Brands,
	}

	for _, field := range mergeable {
		list := lists[field]
		out := append([]string(nil), (*list)...)
		for _, term := range s.CustomTerms(field) {
			if !contains(out, term) {
				out = append(out, term)
			}
		}
		*list = out
	}

	for _, field := range []string{model.FieldNameCategory, model.FieldNameProductType} {
		if terms := s.CustomTerms(field); len(terms) > 0 {
			s.logger.Warn("custom hierarchy terms are not merged on save", "field", field, "terms", terms)
		}
	}

	return &merged
}

// Save writes the merged document to path, encoded by extension, holding an
// exclusive lock on path+".lock" for the duration.
func (s *Store) Save(path string) error {
	if path == "" {
		return fmt.Errorf("vocabulary save: empty path")
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to lock vocabulary: %w", err)
	}
	if !locked {
		return fmt.Errorf("%w: %s", ErrLocked, path)
	}
	defer func() {
		if unlockErr := lock.Unlock(); unlockErr != nil {
			s.logger.Warn("failed to release vocabulary lock", "path", path, "error", unlockErr)
		}
	}()

	data, err := s.MergedDocument().Encode(FormatForPath(path))
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp vocabulary file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write vocabulary: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close vocabulary: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace vocabulary: %w", err)
	}

	s.logger.Info("saved vocabulary", "path", path)
	return nil
}
