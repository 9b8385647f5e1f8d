package mockserver

// Article is one ArticlePage item.
type Article struct {
	Key       string
	Locale    string
	Title     string
	URL       string
	Category  string
	Tags      []string
	Rating    *int32
	Featured  *bool
	Published string
	Author    string
}

// Page is a Content item that is not an article.
type Page struct {
	Key    string
	Locale string
	Name   string
}

// Store is the fixed content served by the mock API.
type Store struct {
	Articles []Article
	Pages    []Page
}

func ptr[T any](v T) *T { return &v }

// DefaultStore returns a small multilingual sample catalogue.
func DefaultStore() *Store {
	return &Store{
		Articles: []Article{
			{
				Key: "a1", Locale: "en", Title: "Release notes 2.0", URL: "/en/news/release-2",
				Category: "News", Tags: []string{"go", "graphql"}, Rating: ptr[int32](5),
				Featured: ptr(true), Published: "2024-03-01", Author: "Ada",
			},
			{
				Key: "a2", Locale: "en", Title: "Getting started", URL: "/en/docs/start",
				Category: "Docs", Tags: []string{"intro"}, Rating: ptr[int32](4),
				Published: "2023-11-12", Author: "Linus",
			},
			{
				Key: "a3", Locale: "en", Title: "Schema design", URL: "/en/docs/schema",
				Category: "Docs", Tags: []string{"graphql", "design"}, Rating: ptr[int32](3),
				Featured: ptr(false), Published: "2024-01-20", Author: "Ada",
			},
			{
				Key: "a4", Locale: "sv", Title: "Versionsnyheter 2.0", URL: "/sv/nyheter/version-2",
				Category: "News", Tags: []string{"go"}, Published: "2024-03-02", Author: "Astrid",
			},
			{
				Key: "a5", Locale: "en", Title: "Caching \"done right\"", URL: "/en/blog/caching",
				Category: "Blog", Rating: ptr[int32](2), Published: "2022-06-30",
			},
		},
		Pages: []Page{
			{Key: "p1", Locale: "en", Name: "Home"},
			{Key: "p2", Locale: "sv", Name: "Start"},
			{Key: "p3", Locale: "en", Name: "Contact"},
		},
	}
}

// contents lists every item as a Content entry, pages first.
func (s *Store) contents() []contentEntry {
	entries := make([]contentEntry, 0, len(s.Pages)+len(s.Articles))
	for _, p := range s.Pages {
		entries = append(entries, contentEntry{key: p.Key, locale: p.Locale, contentType: "Page", name: p.Name})
	}
	for _, a := range s.Articles {
		entries = append(entries, contentEntry{key: a.Key, locale: a.Locale, contentType: "ArticlePage", name: a.Title})
	}
	return entries
}

type contentEntry struct {
	key         string
	locale      string
	contentType string
	name        string
}

func (s *Store) itemCount() int {
	return len(s.Pages) + len(s.Articles)
}
