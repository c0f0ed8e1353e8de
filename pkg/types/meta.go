package types

// Meta keys written by termsync and the bundled platform.
const (
	// MetaTermID holds the id of the term a post is mirrored into.
	MetaTermID = "term_id"

	// MetaTrashStatus remembers a post's status from before it was trashed.
	MetaTrashStatus = "_trash_meta_status"
)

// Meta is a single key/value pair attached to a post.
type Meta struct {
	MetaID string `json:"meta_id"`
	PostID int64  `json:"post_id"`
	Key    string `json:"meta_key"`
	Value  string `json:"meta_value"`
}
