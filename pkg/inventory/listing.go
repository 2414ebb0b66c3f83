package inventory

import (
	"crypto/sha1"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/RigelNana/gazotheque/pkg/models"
)

const DefaultPageSize = 25

// PageSizeOptions are the page sizes a user can pick.
var PageSizeOptions = []int{25, 50, 100, 150, 200, 250}

func validPageSize(size int) bool {
	for _, s := range PageSizeOptions {
		if s == size {
			return true
		}
	}
	return false
}

// MatchesText reports whether term is a case-insensitive substring of any
// identifying field. An empty term matches everything.
func MatchesText(m *models.Material, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, v := range []string{m.Title, m.Team, m.OwnerFirst(), m.OwnerLast(), m.CodeBarres, m.CodeCommande} {
		if v != "" && strings.Contains(strings.ToLower(v), term) {
			return true
		}
	}
	return false
}

// MatchesTags reports whether m carries every tag. No tags matches everything.
func MatchesTags(m *models.Material, tags []string) bool {
	for _, t := range tags {
		if !m.HasTag(t) {
			return false
		}
	}
	return true
}

// FilterMaterials keeps the materials matching both the text term and every
// tag, preserving collection order. It never mutates items.
func FilterMaterials(items []models.Material, term string, tags []string) []models.Material {
	out := make([]models.Material, 0, len(items))
	for i := range items {
		if MatchesText(&items[i], term) && MatchesTags(&items[i], tags) {
			out = append(out, items[i])
		}
	}
	return out
}

// Row is a listing line. Consigned rows are shown shaded and read-only but
// still link to the detail view.
type Row struct {
	models.Material
	Consigned bool   `json:"consigned"`
	Editable  bool   `json:"editable"`
	Link      string `json:"link"`
}

func NewRow(m models.Material) Row {
	consigned := m.Consigned()
	return Row{
		Material:  m,
		Consigned: consigned,
		Editable:  !consigned,
		Link:      DetailPath(m.MaterialID),
	}
}

type Page struct {
	Rows            []Row  `json:"rows"`
	Page            int    `json:"page"`
	PageSize        int    `json:"page_size"`
	Total           int    `json:"total"`
	PageSizeOptions []int  `json:"page_size_options"`
	FilterKey       string `json:"filter_key"`
}

// Paginate cuts the zero-based page out of items. Unknown page sizes fall back
// to the default and out of range pages yield no rows.
func Paginate(items []models.Material, page, size int) Page {
	if !validPageSize(size) {
		size = DefaultPageSize
	}
	if page < 0 {
		page = 0
	}
	p := Page{
		Rows:            []Row{},
		Page:            page,
		PageSize:        size,
		Total:           len(items),
		PageSizeOptions: PageSizeOptions,
	}
	start := page * size
	if start >= len(items) {
		return p
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	for _, m := range items[start:end] {
		p.Rows = append(p.Rows, NewRow(m))
	}
	return p
}

// FilterKey identifies a filter predicate. Tag order does not matter.
func FilterKey(term string, tags []string) string {
	sorted := append([]string(nil), tags...)
	sort.Strings(sorted)
	h := sha1.New()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(term))))
	for _, t := range sorted {
		h.Write([]byte{0})
		h.Write([]byte(t))
	}
	return hex.EncodeToString(h.Sum(nil))[:12]
}

// Listing is the state of the list view over an in-memory collection.
type Listing struct {
	items    []models.Material
	term     string
	tags     []string
	page     int
	pageSize int
}

func NewListing(items []models.Material) *Listing {
	return &Listing{items: items, pageSize: DefaultPageSize}
}

// SetSearch changes the text term; a changed predicate goes back to page 0.
func (l *Listing) SetSearch(term string) {
	if FilterKey(term, l.tags) != FilterKey(l.term, l.tags) {
		l.page = 0
	}
	l.term = term
}

// SetTags replaces the selected tags; a changed predicate goes back to page 0.
func (l *Listing) SetTags(tags []string) {
	if FilterKey(l.term, tags) != FilterKey(l.term, l.tags) {
		l.page = 0
	}
	l.tags = append([]string(nil), tags...)
}

func (l *Listing) SetPage(page int) {
	if page < 0 {
		page = 0
	}
	l.page = page
}

// SetPageSize picks a size from PageSizeOptions and goes back to page 0.
func (l *Listing) SetPageSize(size int) {
	if !validPageSize(size) {
		size = DefaultPageSize
	}
	if size != l.pageSize {
		l.page = 0
	}
	l.pageSize = size
}

// Current is the page the view shows now.
func (l *Listing) Current() Page {
	p := Paginate(FilterMaterials(l.items, l.term, l.tags), l.page, l.pageSize)
	p.FilterKey = FilterKey(l.term, l.tags)
	return p
}
