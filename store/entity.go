package store

// ParentRef identifies an entity's parent by model and id.
type ParentRef struct {
	// Model is the parent's entity kind (e.g., "chat").
	Model string `json:"model" yaml:"model"`

	// ID is the parent's UUID.
	ID string `json:"id" yaml:"id"`
}

// Entity is the stored unit. The pair (Model, ID) is globally unique and
// forms the table's primary key. The five Index* attributes are derived:
// they are recomputed by [IndexEntity] on every write and must never be set
// by callers.
type Entity struct {
	// Model is the entity kind (e.g., "record", "message"). Partition key.
	Model string `dynamodbav:"model" json:"model" yaml:"model"`

	// ID is the entity UUID. Sort key.
	ID string `dynamodbav:"id" json:"id" yaml:"id"`

	// OU is the organizational-unit address: RootOU for top-level entities,
	// "{parentModel}#{parentId}" otherwise. Immutable after creation.
	OU string `dynamodbav:"ou" json:"ou,omitempty" yaml:"ou,omitempty"`

	// Sequence orders entities chronologically within every index partition.
	// Defaults to the creation time in Unix milliseconds.
	Sequence int64 `dynamodbav:"sequence" json:"sequence,omitempty" yaml:"sequence,omitempty"`

	// Optional classifiers. Each non-empty field populates one index key.
	Alias string `dynamodbav:"alias,omitempty" json:"alias,omitempty" yaml:"alias,omitempty"`
	Class string `dynamodbav:"class,omitempty" json:"class,omitempty" yaml:"class,omitempty"`
	Type  string `dynamodbav:"type,omitempty" json:"type,omitempty" yaml:"type,omitempty"`
	XID   string `dynamodbav:"xid,omitempty" json:"xid,omitempty" yaml:"xid,omitempty"`

	// Derived index keys. Omitted from the item when empty so the entity
	// stays out of the corresponding index.
	IndexOU    string `dynamodbav:"indexOu,omitempty" json:"indexOu,omitempty" yaml:"-"`
	IndexAlias string `dynamodbav:"indexAlias,omitempty" json:"indexAlias,omitempty" yaml:"-"`
	IndexClass string `dynamodbav:"indexClass,omitempty" json:"indexClass,omitempty" yaml:"-"`
	IndexType  string `dynamodbav:"indexType,omitempty" json:"indexType,omitempty" yaml:"-"`
	IndexXID   string `dynamodbav:"indexXid,omitempty" json:"indexXid,omitempty" yaml:"-"`

	// Lifecycle timestamps, ISO 8601. CreatedAt and UpdatedAt are always
	// present; ArchivedAt and DeletedAt appear once the transition occurs.
	CreatedAt  string `dynamodbav:"createdAt" json:"createdAt,omitempty" yaml:"-"`
	UpdatedAt  string `dynamodbav:"updatedAt" json:"updatedAt,omitempty" yaml:"-"`
	ArchivedAt string `dynamodbav:"archivedAt,omitempty" json:"archivedAt,omitempty" yaml:"-"`
	DeletedAt  string `dynamodbav:"deletedAt,omitempty" json:"deletedAt,omitempty" yaml:"-"`

	// Data carries the caller's payload fields.
	Data map[string]interface{} `dynamodbav:"data,omitempty" json:"data,omitempty" yaml:"data,omitempty"`
}

// Ref returns the type-qualified entity reference (e.g., "chat#uuid"),
// which is also the OU address of the entity's children.
func (e Entity) Ref() string {
	return e.Model + Sep + e.ID
}

// Suffix returns the index-key suffix implied by the entity's current
// archived/deleted state.
func (e Entity) Suffix() Suffix {
	return Suffix{
		Archived: e.ArchivedAt != "",
		Deleted:  e.DeletedAt != "",
	}
}

// classifier binds one optional classification field to its key builder and
// its derived index-key attribute. The indexer iterates this table instead
// of checking each field ad hoc, so adding a classifier is a one-line change.
type classifier struct {
	build  func(ou, model, value string) string
	value  func(e *Entity) string
	assign func(e *Entity, key string)
}

var classifiers = []classifier{
	{
		build:  BuildIndexAlias,
		value:  func(e *Entity) string { return e.Alias },
		assign: func(e *Entity, key string) { e.IndexAlias = key },
	},
	{
		build:  BuildIndexClass,
		value:  func(e *Entity) string { return e.Class },
		assign: func(e *Entity, key string) { e.IndexClass = key },
	},
	{
		build:  BuildIndexType,
		value:  func(e *Entity) string { return e.Type },
		assign: func(e *Entity, key string) { e.IndexType = key },
	},
	{
		build:  BuildIndexXID,
		value:  func(e *Entity) string { return e.XID },
		assign: func(e *Entity, key string) { e.IndexXID = key },
	},
}
