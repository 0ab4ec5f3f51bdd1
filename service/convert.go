package service

import (
	"github.com/gm2211/hudson-dashboard/board"
	"github.com/gm2211/hudson-dashboard/models"
)

func statusToItem(r models.StatusRow) board.StatusItem {
	return board.StatusItem{
		ID:                r.ID,
		Name:              r.Name,
		Status:            r.Status,
		Notes:             r.Notes,
		LastChecked:       r.LastChecked.UTC(),
		DisplayOrder:      r.DisplayOrder,
		MarkedForDeletion: r.MarkedForDeletion,
	}
}

func statusToRow(it board.StatusItem) models.StatusRow {
	return models.StatusRow{
		ID:                it.ID,
		Name:              it.Name,
		Status:            it.Status,
		Notes:             it.Notes,
		LastChecked:       it.LastChecked.UTC(),
		DisplayOrder:      it.DisplayOrder,
		MarkedForDeletion: it.MarkedForDeletion,
	}
}

func announcementToItem(r models.AnnouncementCard) board.AnnouncementItem {
	details := r.Details
	if details == nil {
		details = []string{}
	}
	return board.AnnouncementItem{
		ID:                r.ID,
		Title:             r.Title,
		Subtitle:          r.Subtitle,
		Details:           details,
		ImageRef:          r.ImageRef,
		AccentColor:       r.AccentColor,
		DisplayOrder:      r.DisplayOrder,
		MarkedForDeletion: r.MarkedForDeletion,
	}
}

func announcementToRow(it board.AnnouncementItem) models.AnnouncementCard {
	details := it.Details
	if details == nil {
		details = []string{}
	}
	return models.AnnouncementCard{
		ID:                it.ID,
		Title:             it.Title,
		Subtitle:          it.Subtitle,
		Details:           details,
		ImageRef:          it.ImageRef,
		AccentColor:       it.AccentColor,
		DisplayOrder:      it.DisplayOrder,
		MarkedForDeletion: it.MarkedForDeletion,
	}
}

func advisoryToItem(r models.Advisory) board.AdvisoryItem {
	return board.AdvisoryItem{
		ID:                r.ID,
		Label:             r.Label,
		Message:           r.Message,
		Active:            r.Active,
		MarkedForDeletion: r.MarkedForDeletion,
	}
}

func advisoryToRow(it board.AdvisoryItem) models.Advisory {
	return models.Advisory{
		ID:                it.ID,
		Label:             it.Label,
		Message:           it.Message,
		Active:            it.Active,
		MarkedForDeletion: it.MarkedForDeletion,
	}
}

func configToBoard(c *models.BoardConfig) *board.Config {
	if c == nil {
		return nil
	}
	return &board.Config{
		BuildingNumber:            c.BuildingNumber,
		BuildingName:              c.BuildingName,
		Subtitle:                  c.Subtitle,
		AnnouncementScrollSeconds: c.AnnouncementScrollSeconds,
		AdvisoryTickerSeconds:     c.AdvisoryTickerSeconds,
		StatusPageSeconds:         c.StatusPageSeconds,
	}
}

func mapSlice[A, B any](in []A, f func(A) B) []B {
	out := make([]B, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}
