package store

// Config holds table and client configuration for the Store. The five index
// names are fixed at table-design time; this layer assumes they already
// exist server-side.
type Config struct {
	// TableName is the entity table.
	// Default: "strata_entities"
	TableName string `yaml:"table"`

	// Index names, one per derived index key.
	// Defaults: "idx-ou", "idx-alias", "idx-class", "idx-type", "idx-xid"
	OUIndex    string `yaml:"ouIndex"`
	AliasIndex string `yaml:"aliasIndex"`
	ClassIndex string `yaml:"classIndex"`
	TypeIndex  string `yaml:"typeIndex"`
	XIDIndex   string `yaml:"xidIndex"`

	// Region is the AWS region for the DynamoDB client.
	Region string `yaml:"region"`

	// Endpoint overrides the DynamoDB endpoint (local/test stores).
	Endpoint string `yaml:"endpoint"`

	// Static credentials, used only when both are set (local/test stores).
	AccessKeyID     string `yaml:"accessKeyId"`
	SecretAccessKey string `yaml:"secretAccessKey"`
}

// DefaultConfig returns the well-known table and index names.
func DefaultConfig() Config {
	return Config{
		TableName:  "strata_entities",
		OUIndex:    "idx-ou",
		AliasIndex: "idx-alias",
		ClassIndex: "idx-class",
		TypeIndex:  "idx-type",
		XIDIndex:   "idx-xid",
	}
}

// validate fills empty names with defaults.
func (c *Config) validate() {
	if c.TableName == "" {
		c.TableName = "strata_entities"
	}
	if c.OUIndex == "" {
		c.OUIndex = "idx-ou"
	}
	if c.AliasIndex == "" {
		c.AliasIndex = "idx-alias"
	}
	if c.ClassIndex == "" {
		c.ClassIndex = "idx-class"
	}
	if c.TypeIndex == "" {
		c.TypeIndex = "idx-type"
	}
	if c.XIDIndex == "" {
		c.XIDIndex = "idx-xid"
	}
}
