// Package stream provides DynamoDB Streams handlers for index-key auditing.
package stream

import (
	"context"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"github.com/jacentio/strata/store"
)

// Handler inspects stream records for drift between stored index keys and
// the keys the indexer would derive from the entity's current fields.
// Suffix-inconsistent or stale index keys push entities into the wrong
// query visibility, so drift is surfaced as soon as the item changes.
type Handler struct {
	store  *store.Store
	logger *zap.Logger

	// Repair re-indexes drifted entities through Store.Update instead of
	// only reporting them.
	Repair bool
}

// NewHandler creates a stream handler. The store may be nil when Repair is
// never enabled.
func NewHandler(s *store.Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		store:  s,
		logger: logger,
	}
}

// HandleIndexAudit processes a DynamoDB stream event. Designed to be used
// as an AWS Lambda handler.
func (h *Handler) HandleIndexAudit(ctx context.Context, event events.DynamoDBEvent) error {
	for _, record := range event.Records {
		if err := h.processRecord(ctx, record); err != nil {
			h.logger.Error("failed to process record",
				zap.String("eventID", record.EventID),
				zap.Error(err),
			)
			return err // Will retry, eventually DLQ
		}
	}
	return nil
}

func (h *Handler) processRecord(ctx context.Context, record events.DynamoDBEventRecord) error {
	// REMOVE carries no index keys to check.
	if record.EventName != "INSERT" && record.EventName != "MODIFY" {
		return nil
	}

	image := record.Change.NewImage
	entity := entityFromImage(image)
	if entity.Model == "" || entity.ID == "" {
		return nil // not a strata entity item
	}

	expected := store.IndexEntity(entity, entity.Suffix())
	drifted := diffIndexKeys(entity, expected)
	if len(drifted) == 0 {
		return nil
	}

	h.logger.Warn("index keys drifted from entity state",
		zap.String("entity", entity.Ref()),
		zap.Strings("attributes", drifted),
	)

	if !h.Repair || h.store == nil {
		return nil
	}

	current, err := h.store.Get(ctx, entity.Model, entity.ID)
	if err != nil {
		return fmt.Errorf("load drifted entity: %w", err)
	}
	if _, err := h.store.Update(ctx, *current); err != nil {
		return fmt.Errorf("repair drifted entity: %w", err)
	}

	h.logger.Info("re-indexed drifted entity",
		zap.String("entity", entity.Ref()),
	)
	return nil
}

// entityFromImage reconstructs the indexed fields of an entity from a
// stream image. Payload attributes are irrelevant to the audit and are not
// decoded.
func entityFromImage(image map[string]events.DynamoDBAttributeValue) store.Entity {
	return store.Entity{
		Model:      getStringAttr(image, "model"),
		ID:         getStringAttr(image, "id"),
		OU:         getStringAttr(image, "ou"),
		Alias:      getStringAttr(image, "alias"),
		Class:      getStringAttr(image, "class"),
		Type:       getStringAttr(image, "type"),
		XID:        getStringAttr(image, "xid"),
		ArchivedAt: getStringAttr(image, "archivedAt"),
		DeletedAt:  getStringAttr(image, "deletedAt"),
		IndexOU:    getStringAttr(image, "indexOu"),
		IndexAlias: getStringAttr(image, "indexAlias"),
		IndexClass: getStringAttr(image, "indexClass"),
		IndexType:  getStringAttr(image, "indexType"),
		IndexXID:   getStringAttr(image, "indexXid"),
	}
}

// diffIndexKeys returns the names of index attributes whose stored value
// differs from the derived value.
func diffIndexKeys(stored, expected store.Entity) []string {
	var drifted []string
	if stored.IndexOU != expected.IndexOU {
		drifted = append(drifted, "indexOu")
	}
	if stored.IndexAlias != expected.IndexAlias {
		drifted = append(drifted, "indexAlias")
	}
	if stored.IndexClass != expected.IndexClass {
		drifted = append(drifted, "indexClass")
	}
	if stored.IndexType != expected.IndexType {
		drifted = append(drifted, "indexType")
	}
	if stored.IndexXID != expected.IndexXID {
		drifted = append(drifted, "indexXid")
	}
	return drifted
}

// getStringAttr extracts a string attribute from a DynamoDB stream image.
func getStringAttr(image map[string]events.DynamoDBAttributeValue, key string) string {
	if v, ok := image[key]; ok && v.DataType() == events.DataTypeString {
		return v.String()
	}
	return ""
}
