package types

// Collection names shared by the store, the API and change notifications.
const (
	CollectionUsers    = "users"
	CollectionPosts    = "posts"
	CollectionComments = "comments"
)

// Collections lists every collection in document order.
var Collections = []string{CollectionUsers, CollectionPosts, CollectionComments}

// Dataset is the whole state of the store: three named collections of flat
// records. It is also the layout of the db.json file and of seed snapshots.
type Dataset struct {
	Users    []User    `json:"users"`
	Posts    []Post    `json:"posts"`
	Comments []Comment `json:"comments"`
}
