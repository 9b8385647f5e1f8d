package mockserver

// schemaSDL mimics the shape of a content delivery schema: one root field per
// content type taking locale/where/searchTerm/orderBy/skip/limit/cursor, an
// Output wrapper with total, cursor, items and facets, and a reserved
// _Diagnostics root field.
const schemaSDL = `
schema {
	query: Query
}

type Query {
	Content(
		locale: [Locales]
		where: ContentWhereInput
		searchTerm: String
		orderBy: ContentOrderByInput
		skip: Int
		limit: Int
		cursor: String
	): ContentOutput
	ArticlePage(
		locale: [Locales]
		where: ArticlePageWhereInput
		searchTerm: String
		orderBy: ArticlePageOrderByInput
		skip: Int
		limit: Int
		cursor: String
	): ArticlePageOutput
	_Diagnostics: _Diagnostics!
}

enum Locales {
	ALL
	en
	sv
}

enum OrderBy {
	ASC
	DESC
}

input StringFilterInput {
	eq: String
	notEq: String
	like: String
	startsWith: String
	endsWith: String
	in: [String]
	notIn: [String]
	exist: Boolean
	boost: Float
	synonyms: String
}

input IntFilterInput {
	eq: Int
	notEq: Int
	gt: Int
	gte: Int
	lt: Int
	lte: Int
	in: [Int]
	notIn: [Int]
	exist: Boolean
	boost: Float
}

input BooleanFilterInput {
	eq: Boolean
	exist: Boolean
	boost: Float
}

input ContentWhereInput {
	ContentType: StringFilterInput
	Name: StringFilterInput
	_or: [ContentWhereInput]
}

input ArticlePageWhereInput {
	Title: StringFilterInput
	Category: StringFilterInput
	Tags: StringFilterInput
	Rating: IntFilterInput
	Featured: BooleanFilterInput
	_or: [ArticlePageWhereInput]
}

input ContentOrderByInput {
	Name: OrderBy
}

input ArticlePageOrderByInput {
	Title: OrderBy
	Published: OrderBy
	Rating: OrderBy
}

interface IContent {
	_metadata: ContentMetadata
}

type ContentMetadata {
	key: String!
	displayName: String!
	types: [String!]!
	locale: String!
}

type Content implements IContent {
	_metadata: ContentMetadata
	ContentType: String!
	Name: String!
}

type ArticlePage implements IContent {
	_metadata: ContentMetadata
	Title: String!
	Url: String
	Category: String
	Tags: [String!]
	Rating: Int
	Featured: Boolean
	Published: String
	Author: Author
}

type Author {
	Name: String!
}

type StringFacet {
	name: String!
	count: Int!
}

type ContentOutput {
	total: Int!
	cursor: String
	items: [Content!]!
}

type ArticlePageOutput {
	total: Int!
	cursor: String
	items: [ArticlePage!]!
	CategoryFacet: [StringFacet!]!
	TagsFacet: [StringFacet!]!
}

type _Diagnostics {
	version: String!
	itemCount: Int!
}
`
