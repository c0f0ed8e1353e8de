// Package sqlite implements the SQLite host backend for termsync.
// SQLite is the query engine; the JSONL files in DataDir are the source of
// truth and are reloaded on every Attach.
package sqlite

// JSONL file names, one per table.
const (
	postTypesJSONL     = "post_types.jsonl"
	taxonomiesJSONL    = "taxonomies.jsonl"
	postsJSONL         = "posts.jsonl"
	postmetaJSONL      = "postmeta.jsonl"
	termsJSONL         = "terms.jsonl"
	relationshipsJSONL = "term_relationships.jsonl"
)

// Schema DDL for all tables.
const (
	createPostTypes = `CREATE TABLE post_types (
    name TEXT PRIMARY KEY,
    label TEXT NOT NULL,
    as_taxonomy TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL
);`

	createTaxonomies = `CREATE TABLE taxonomies (
    name TEXT PRIMARY KEY,
    label TEXT NOT NULL,
    created_at TEXT NOT NULL
);`

	createPosts = `CREATE TABLE posts (
    post_id INTEGER PRIMARY KEY AUTOINCREMENT,
    post_type TEXT NOT NULL,
    title TEXT NOT NULL,
    slug TEXT NOT NULL,
    status TEXT NOT NULL,
    parent_id INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

	createPostmeta = `CREATE TABLE postmeta (
    meta_id TEXT PRIMARY KEY,
    post_id INTEGER NOT NULL,
    meta_key TEXT NOT NULL,
    meta_value TEXT NOT NULL,
    FOREIGN KEY (post_id) REFERENCES posts(post_id) ON DELETE CASCADE
);`

	createTerms = `CREATE TABLE terms (
    term_id INTEGER PRIMARY KEY AUTOINCREMENT,
    taxonomy TEXT NOT NULL,
    name TEXT NOT NULL,
    slug TEXT NOT NULL,
    FOREIGN KEY (taxonomy) REFERENCES taxonomies(name)
);`

	createTermRelationships = `CREATE TABLE term_relationships (
    post_id INTEGER NOT NULL,
    term_id INTEGER NOT NULL,
    PRIMARY KEY (post_id, term_id),
    FOREIGN KEY (post_id) REFERENCES posts(post_id) ON DELETE CASCADE,
    FOREIGN KEY (term_id) REFERENCES terms(term_id) ON DELETE CASCADE
);`
)

// Index DDL for common queries.
const (
	idxPostsType         = `CREATE INDEX idx_posts_type ON posts(post_type, status);`
	idxPostsParent       = `CREATE INDEX idx_posts_parent ON posts(parent_id);`
	idxPostmetaUnique    = `CREATE UNIQUE INDEX idx_postmeta_unique ON postmeta(post_id, meta_key);`
	idxPostmetaKeyValue  = `CREATE INDEX idx_postmeta_key_value ON postmeta(meta_key, meta_value);`
	idxTermsSlug         = `CREATE UNIQUE INDEX idx_terms_slug ON terms(taxonomy, slug);`
	idxTermsName         = `CREATE INDEX idx_terms_name ON terms(taxonomy, name COLLATE NOCASE);`
	idxRelationshipsTerm = `CREATE INDEX idx_term_relationships_term ON term_relationships(term_id);`
)

// schemaDDL lists all CREATE TABLE statements in dependency order.
var schemaDDL = []string{
	createPostTypes,
	createTaxonomies,
	createPosts,
	createPostmeta,
	createTerms,
	createTermRelationships,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxPostsType,
	idxPostsParent,
	idxPostmetaUnique,
	idxPostmetaKeyValue,
	idxTermsSlug,
	idxTermsName,
	idxRelationshipsTerm,
}
