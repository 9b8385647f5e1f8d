package mockserver

import (
	"cmp"
	"encoding/base64"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

const (
	defaultLimit = 20
	maxLimit     = 100
	cursorPrefix = "offset:"
)

// Version is reported by the _Diagnostics root field.
const Version = "mock-1"

type resolver struct {
	store *Store
}

type pageArgs struct {
	locale     *[]*string
	searchTerm *string
	skip       *int32
	limit      *int32
	cursor     *string
}

type contentOrderBy struct {
	Name *string
}

type contentArgs struct {
	Locale     *[]*string
	Where      *contentWhere
	SearchTerm *string
	OrderBy    *contentOrderBy
	Skip       *int32
	Limit      *int32
	Cursor     *string
}

func (a contentArgs) page() pageArgs {
	return pageArgs{a.Locale, a.SearchTerm, a.Skip, a.Limit, a.Cursor}
}

type articleOrderBy struct {
	Title     *string
	Published *string
	Rating    *string
}

type articleArgs struct {
	Locale     *[]*string
	Where      *articleWhere
	SearchTerm *string
	OrderBy    *articleOrderBy
	Skip       *int32
	Limit      *int32
	Cursor     *string
}

func (a articleArgs) page() pageArgs {
	return pageArgs{a.Locale, a.SearchTerm, a.Skip, a.Limit, a.Cursor}
}

func (r *resolver) Content(args contentArgs) (*contentOutput, error) {
	p := args.page()
	var matched []contentEntry
	for _, e := range r.store.contents() {
		if p.inLocale(e.locale) && p.searched(e.name) && args.Where.match(e) {
			matched = append(matched, e)
		}
	}
	if args.OrderBy != nil && args.OrderBy.Name != nil {
		dir := direction(*args.OrderBy.Name)
		slices.SortStableFunc(matched, func(a, b contentEntry) int {
			return dir * cmp.Compare(a.name, b.name)
		})
	}

	page, next, err := p.paginate(len(matched))
	if err != nil {
		return nil, err
	}
	items := make([]*contentItem, 0, page.len())
	for _, e := range matched[page.from:page.to] {
		items = append(items, &contentItem{entry: e})
	}
	return &contentOutput{total: int32(len(matched)), cursor: next, items: items}, nil
}

func (r *resolver) ArticlePage(args articleArgs) (*articleOutput, error) {
	p := args.page()
	var matched []Article
	for _, a := range r.store.Articles {
		if !p.inLocale(a.Locale) || !args.Where.match(a) {
			continue
		}
		if p.searched(append([]string{a.Title, a.Category}, a.Tags...)...) {
			matched = append(matched, a)
		}
	}
	if o := args.OrderBy; o != nil {
		slices.SortStableFunc(matched, func(a, b Article) int {
			if o.Title != nil {
				if c := direction(*o.Title) * cmp.Compare(a.Title, b.Title); c != 0 {
					return c
				}
			}
			if o.Published != nil {
				if c := direction(*o.Published) * cmp.Compare(a.Published, b.Published); c != 0 {
					return c
				}
			}
			if o.Rating != nil {
				return direction(*o.Rating) * cmp.Compare(deref(a.Rating), deref(b.Rating))
			}
			return 0
		})
	}

	page, next, err := p.paginate(len(matched))
	if err != nil {
		return nil, err
	}
	items := make([]*articleItem, 0, page.len())
	for _, a := range matched[page.from:page.to] {
		items = append(items, &articleItem{article: a})
	}
	return &articleOutput{
		total:    int32(len(matched)),
		cursor:   next,
		items:    items,
		category: facetsOf(matched, func(a Article) []string { return present(a.Category) }),
		tags:     facetsOf(matched, func(a Article) []string { return a.Tags }),
	}, nil
}

func (r *resolver) Diagnostics() *diagnostics {
	return &diagnostics{count: int32(r.store.itemCount())}
}

func (a pageArgs) inLocale(locale string) bool {
	if a.locale == nil || len(*a.locale) == 0 {
		return true
	}
	return containsPtr(*a.locale, "ALL") || containsPtr(*a.locale, locale)
}

func (a pageArgs) searched(texts ...string) bool {
	if a.searchTerm == nil || *a.searchTerm == "" {
		return true
	}
	term := strings.ToLower(*a.searchTerm)
	return slices.ContainsFunc(texts, func(s string) bool {
		return strings.Contains(strings.ToLower(s), term)
	})
}

type window struct{ from, to int }

func (w window) len() int { return w.to - w.from }

// paginate selects the requested window of total items. A cursor overrides
// skip; next is set while items remain after the window.
func (a pageArgs) paginate(total int) (window, *string, error) {
	offset := 0
	if a.skip != nil && *a.skip > 0 {
		offset = int(*a.skip)
	}
	if a.cursor != nil && *a.cursor != "" {
		n, err := decodeCursor(*a.cursor)
		if err != nil {
			return window{}, nil, err
		}
		offset = n
	}
	limit := defaultLimit
	if a.limit != nil {
		limit = min(max(int(*a.limit), 0), maxLimit)
	}

	from := min(offset, total)
	to := min(from+limit, total)
	var next *string
	if to < total {
		c := encodeCursor(to)
		next = &c
	}
	return window{from, to}, next, nil
}

func encodeCursor(offset int) string {
	return base64.StdEncoding.EncodeToString([]byte(cursorPrefix + strconv.Itoa(offset)))
}

func decodeCursor(cursor string) (int, error) {
	raw, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		return 0, fmt.Errorf("invalid cursor %q", cursor)
	}
	n, err := strconv.Atoi(strings.TrimPrefix(string(raw), cursorPrefix))
	if err != nil || n < 0 || !strings.HasPrefix(string(raw), cursorPrefix) {
		return 0, fmt.Errorf("invalid cursor %q", cursor)
	}
	return n, nil
}

func direction(order string) int {
	if order == "DESC" {
		return -1
	}
	return 1
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

// facetsOf counts values across items, most frequent first.
func facetsOf(items []Article, values func(Article) []string) []*facet {
	counts := map[string]int32{}
	for _, a := range items {
		for _, v := range values(a) {
			counts[v]++
		}
	}
	facets := make([]*facet, 0, len(counts))
	for name, count := range counts {
		facets = append(facets, &facet{name: name, count: count})
	}
	slices.SortFunc(facets, func(a, b *facet) int {
		if c := cmp.Compare(b.count, a.count); c != 0 {
			return c
		}
		return cmp.Compare(a.name, b.name)
	})
	return facets
}

type contentOutput struct {
	total  int32
	cursor *string
	items  []*contentItem
}

func (o *contentOutput) Total() int32          { return o.total }
func (o *contentOutput) Cursor() *string       { return o.cursor }
func (o *contentOutput) Items() []*contentItem { return o.items }

type articleOutput struct {
	total    int32
	cursor   *string
	items    []*articleItem
	category []*facet
	tags     []*facet
}

func (o *articleOutput) Total() int32            { return o.total }
func (o *articleOutput) Cursor() *string         { return o.cursor }
func (o *articleOutput) Items() []*articleItem   { return o.items }
func (o *articleOutput) CategoryFacet() []*facet { return o.category }
func (o *articleOutput) TagsFacet() []*facet     { return o.tags }

type metadata struct {
	key         string
	displayName string
	contentType string
	locale      string
}

func (m *metadata) Key() string         { return m.key }
func (m *metadata) DisplayName() string { return m.displayName }
func (m *metadata) Types() []string     { return []string{m.contentType, "Content"} }
func (m *metadata) Locale() string      { return m.locale }

type contentItem struct {
	entry contentEntry
}

func (c *contentItem) Metadata() *metadata {
	return &metadata{key: c.entry.key, displayName: c.entry.name, contentType: c.entry.contentType, locale: c.entry.locale}
}
func (c *contentItem) ContentType() string { return c.entry.contentType }
func (c *contentItem) Name() string        { return c.entry.name }

type articleItem struct {
	article Article
}

func (a *articleItem) Metadata() *metadata {
	return &metadata{key: a.article.Key, displayName: a.article.Title, contentType: "ArticlePage", locale: a.article.Locale}
}
func (a *articleItem) Title() string { return a.article.Title }
func (a *articleItem) URL() *string  { return optional(a.article.URL) }
func (a *articleItem) Category() *string {
	return optional(a.article.Category)
}
func (a *articleItem) Tags() *[]string {
	if len(a.article.Tags) == 0 {
		return nil
	}
	return &a.article.Tags
}
func (a *articleItem) Rating() *int32     { return a.article.Rating }
func (a *articleItem) Featured() *bool    { return a.article.Featured }
func (a *articleItem) Published() *string { return optional(a.article.Published) }
func (a *articleItem) Author() *author {
	if a.article.Author == "" {
		return nil
	}
	return &author{name: a.article.Author}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

type author struct{ name string }

func (a *author) Name() string { return a.name }

type facet struct {
	name  string
	count int32
}

func (f *facet) Name() string { return f.name }
func (f *facet) Count() int32 { return f.count }

type diagnostics struct{ count int32 }

func (d *diagnostics) Version() string  { return Version }
func (d *diagnostics) ItemCount() int32 { return d.count }
