package store

// Sep separates segments inside composite index keys. It must not appear in
// model names, ids, or classifier values.
const Sep = "#"

// RootOU is the organizational-unit address of top-level entities. DynamoDB
// rejects empty-string key attributes, so the root is a reserved sentinel.
const RootOU = "@"

const (
	segArchived = "archived"
	segDeleted  = "deleted"
)

// CalculateOU resolves an entity's organizational-unit address from an
// optional parent reference. Pure and total: nil parent means root.
func CalculateOU(parent *ParentRef) string {
	if parent == nil {
		return RootOU
	}
	return parent.Model + Sep + parent.ID
}

// BuildIndexOU builds the hierarchy index partition key.
func BuildIndexOU(ou, model string) string {
	return ou + Sep + model
}

// BuildIndexAlias builds the alias index partition key.
func BuildIndexAlias(ou, model, alias string) string {
	return ou + Sep + model + Sep + alias
}

// BuildIndexClass builds the category index partition key.
func BuildIndexClass(ou, model, class string) string {
	return ou + Sep + model + Sep + class
}

// BuildIndexType builds the type index partition key.
func BuildIndexType(ou, model, typ string) string {
	return ou + Sep + model + Sep + typ
}

// BuildIndexXID builds the external-ID index partition key.
func BuildIndexXID(ou, model, xid string) string {
	return ou + Sep + model + Sep + xid
}

// Suffix marks archived/deleted visibility state on index keys. The two
// flags are orthogonal and combine in a canonical order: the archive segment
// always precedes the delete segment, so re-indexing the same logical state
// is idempotent regardless of which transition happened first.
type Suffix struct {
	Archived bool
	Deleted  bool
}

// String renders the suffix segments, "" when neither flag is set.
func (s Suffix) String() string {
	out := ""
	if s.Archived {
		out += Sep + segArchived
	}
	if s.Deleted {
		out += Sep + segDeleted
	}
	return out
}
