// Package aggregate reconstructs import processes from denormalized,
// append-only source rows. Everything here is a pure function of its inputs:
// no storage, no clocks, no shared state, so two concurrent reads can never
// corrupt each other's result.
package aggregate

import (
	"log"
	"sort"

	"github.com/comexware/importdesk/internal/models"
)

// Merge groups line items by business key and folds each group into one
// ImportProcess. Resolution rules:
//
//   - scalar header fields come from the newest row in the group
//     (later rows are corrections for the same process)
//   - monetary fields are summed across the whole group
//     (they are per-line amounts, not corrections)
//   - when transit records exist for a key, the newest one overwrites
//     status, estimated arrival and arrival date (logistics data is the
//     authoritative source for those three once it exists)
//
// "Newest" is decided by CreatedAt with ID as tiebreak, never by backend
// return order; the REST path gives no ordering guarantee. Rows with a
// missing or non-positive business key cannot be grouped; they are dropped
// with a log line, not surfaced as an error. A key present only in transit
// records produces no entity.
func Merge(items []models.ImportLineItem, transit []models.TransitRecord) []models.ImportProcess {
	groups := make(map[int64][]models.ImportLineItem)
	dropped := 0
	for _, item := range items {
		if item.BusinessKey <= 0 {
			dropped++
			continue
		}
		groups[item.BusinessKey] = append(groups[item.BusinessKey], item)
	}
	if dropped > 0 {
		log.Printf("[aggregate] dropped %d line item(s) without a usable business key", dropped)
	}

	transitByKey := make(map[int64][]models.TransitRecord)
	for _, tr := range transit {
		if tr.BusinessKey <= 0 {
			continue
		}
		transitByKey[tr.BusinessKey] = append(transitByKey[tr.BusinessKey], tr)
	}

	out := make([]models.ImportProcess, 0, len(groups))
	for key, group := range groups {
		sortLineItems(group)
		last := group[len(group)-1]

		entity := models.ImportProcess{
			BusinessKey:       key,
			Supplier:          last.Supplier,
			ReferenceDocument: last.ReferenceDocument,
			StatusLabel:       last.StatusLabel,
			OrderDate:         last.OrderDate,
			EstimatedArrival:  last.EstimatedArrival,
			LineItemCount:     len(group),
		}
		for _, item := range group {
			entity.TotalForeign += item.TotalForeign
			entity.FreightForeign += item.FreightForeign
		}

		if trGroup := transitByKey[key]; len(trGroup) > 0 {
			sortTransit(trGroup)
			latest := trGroup[len(trGroup)-1]
			entity.StatusLabel = latest.StatusLabel
			entity.EstimatedArrival = latest.EstimatedArrival
			entity.ArrivalDate = latest.ArrivalDate
		}

		out = append(out, entity)
	}

	// Newest processes first
	sort.Slice(out, func(i, j int) bool {
		return out[i].BusinessKey > out[j].BusinessKey
	})
	return out
}

// Children reprojects the line items of one business key as detail rows, in
// creation order. Unknown keys yield an empty slice, not an error. No merge
// logic applies at this level.
func Children(items []models.ImportLineItem, key int64) []models.ChildProduct {
	group := make([]models.ImportLineItem, 0)
	for _, item := range items {
		if item.BusinessKey == key {
			group = append(group, item)
		}
	}
	sortLineItems(group)

	out := make([]models.ChildProduct, 0, len(group))
	for _, item := range group {
		out = append(out, models.ChildProduct{
			LineItemID:       item.ID,
			BusinessKey:      item.BusinessKey,
			ProductCode:      item.ProductCode,
			Description:      item.Description,
			Quantity:         item.Quantity,
			UnitPriceForeign: item.UnitPriceForeign,
			UnitPriceLocal:   item.UnitPriceLocal,
			TotalForeign:     item.TotalForeign,
			OrderDate:        item.OrderDate,
			CreatedAt:        item.CreatedAt,
		})
	}
	return out
}

// Newest returns the most recent line item for a key, or false when the key
// has no rows. This is what the header update path targets.
func Newest(items []models.ImportLineItem, key int64) (models.ImportLineItem, bool) {
	group := make([]models.ImportLineItem, 0)
	for _, item := range items {
		if item.BusinessKey == key {
			group = append(group, item)
		}
	}
	if len(group) == 0 {
		return models.ImportLineItem{}, false
	}
	sortLineItems(group)
	return group[len(group)-1], true
}

func sortLineItems(group []models.ImportLineItem) {
	sort.SliceStable(group, func(i, j int) bool {
		if group[i].CreatedAt.Equal(group[j].CreatedAt) {
			return group[i].ID < group[j].ID
		}
		return group[i].CreatedAt.Before(group[j].CreatedAt)
	})
}

func sortTransit(group []models.TransitRecord) {
	sort.SliceStable(group, func(i, j int) bool {
		if group[i].CreatedAt.Equal(group[j].CreatedAt) {
			return group[i].ID < group[j].ID
		}
		return group[i].CreatedAt.Before(group[j].CreatedAt)
	})
}
