package tui

import "github.com/Veraticus/facet-flow/internal/model"

type recordsLoadedMsg struct {
	err     error
	records []*model.MetadataRecord
}

type recordApprovedMsg struct {
	err    error
	record *model.MetadataRecord
	id     string
}
