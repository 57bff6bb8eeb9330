package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"flowbuilder/application/ports"
	"flowbuilder/domain/core/aggregates"
	"flowbuilder/domain/core/entities"
	"flowbuilder/domain/core/valueobjects"
	pkgerrors "flowbuilder/pkg/errors"
	"flowbuilder/pkg/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// WorkflowRepository implements workflow history persistence on DynamoDB.
// Single-table layout: PK = USER#{userID}, SK = WORKFLOW#{workflowID}, with
// a GSI keyed on update time for newest-first history listings. The full
// graph is stored inline on the item; history entries are small enough that
// splitting nodes into separate items buys nothing.
type WorkflowRepository struct {
	client    *dynamodb.Client
	tableName string
	indexName string
	logger    *zap.Logger
}

// NewWorkflowRepository creates a new WorkflowRepository
func NewWorkflowRepository(client *dynamodb.Client, tableName, indexName string, logger *zap.Logger) ports.WorkflowRepository {
	return &WorkflowRepository{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		logger:    logger,
	}
}

// nodeItem is the stored form of one node
type nodeItem struct {
	ID          string                 `dynamodbav:"ID"`
	Kind        string                 `dynamodbav:"Kind"`
	Label       string                 `dynamodbav:"Label"`
	Description string                 `dynamodbav:"Description,omitempty"`
	X           float64                `dynamodbav:"X"`
	Y           float64                `dynamodbav:"Y"`
	Config      map[string]interface{} `dynamodbav:"Config"`
}

// edgeItem is the stored form of one edge
type edgeItem struct {
	ID           string `dynamodbav:"ID"`
	Source       string `dynamodbav:"Source"`
	Target       string `dynamodbav:"Target"`
	SourceHandle string `dynamodbav:"SourceHandle,omitempty"`
	CreatedAt    string `dynamodbav:"CreatedAt"`
}

// workflowItem represents the DynamoDB item structure for a stored workflow
type workflowItem struct {
	PK         string     `dynamodbav:"PK"`
	SK         string     `dynamodbav:"SK"`
	GSI1PK     string     `dynamodbav:"GSI1PK"`
	GSI1SK     string     `dynamodbav:"GSI1SK"`
	EntityType string     `dynamodbav:"EntityType"`
	WorkflowID string     `dynamodbav:"WorkflowID"`
	UserID     string     `dynamodbav:"UserID"`
	Name       string     `dynamodbav:"Name"`
	Nodes      []nodeItem `dynamodbav:"Nodes"`
	Edges      []edgeItem `dynamodbav:"Edges"`
	NodeCount  int        `dynamodbav:"NodeCount"`
	EdgeCount  int        `dynamodbav:"EdgeCount"`
	Pinned     bool       `dynamodbav:"Pinned"`
	UpdatedAt  string     `dynamodbav:"UpdatedAt"`
}

// Save persists a workflow snapshot
func (r *WorkflowRepository) Save(ctx context.Context, userID string, workflow *aggregates.Workflow) error {
	item := r.toItem(userID, workflow)

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal workflow: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}

	if _, err := r.client.PutItem(ctx, input); err != nil {
		r.logger.Error("Failed to save workflow to DynamoDB",
			zap.Error(err),
			zap.String("workflowID", workflow.ID().String()),
		)
		return pkgerrors.NewDatabaseError("save workflow", err)
	}

	r.logger.Info("Saved workflow to DynamoDB",
		zap.String("workflowID", workflow.ID().String()),
		zap.String("userID", userID),
		zap.Int("nodeCount", workflow.NodeCount()),
		zap.Int("edgeCount", workflow.EdgeCount()),
	)

	return nil
}

// GetByID retrieves a stored workflow and rebuilds the aggregate
func (r *WorkflowRepository) GetByID(ctx context.Context, userID string, id aggregates.WorkflowID) (*aggregates.Workflow, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       r.key(userID, id),
	}

	result, err := r.client.GetItem(ctx, input)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get workflow", err)
	}
	if result.Item == nil {
		return nil, pkgerrors.NewNotFoundError("workflow")
	}

	var item workflowItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow: %w", err)
	}

	return r.fromItem(item)
}

// ListByUserID lists stored workflow summaries newest first
func (r *WorkflowRepository) ListByUserID(ctx context.Context, userID string, limit int) ([]ports.WorkflowSummary, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value(fmt.Sprintf("USER#%s", userID)))
	proj := expression.NamesList(
		expression.Name("WorkflowID"),
		expression.Name("Name"),
		expression.Name("NodeCount"),
		expression.Name("EdgeCount"),
		expression.Name("Pinned"),
		expression.Name("UpdatedAt"),
	)
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).WithProjection(proj).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build query expression: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(r.indexName),
		KeyConditionExpression:    expr.KeyCondition(),
		ProjectionExpression:      expr.Projection(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false),
		Limit:                     aws.Int32(int32(limit)),
	}

	result, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("list workflows", err)
	}

	summaries := make([]ports.WorkflowSummary, 0, len(result.Items))
	for _, raw := range result.Items {
		var item workflowItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			r.logger.Warn("Failed to unmarshal workflow summary", zap.Error(err))
			continue
		}
		summaries = append(summaries, ports.WorkflowSummary{
			ID:        aggregates.WorkflowID(item.WorkflowID),
			Name:      item.Name,
			NodeCount: item.NodeCount,
			EdgeCount: item.EdgeCount,
			Pinned:    item.Pinned,
			UpdatedAt: item.UpdatedAt,
		})
	}

	return summaries, nil
}

// Rename updates a stored workflow's display name
func (r *WorkflowRepository) Rename(ctx context.Context, userID string, id aggregates.WorkflowID, name string) error {
	update := expression.Set(expression.Name("Name"), expression.Value(name)).
		Set(expression.Name("UpdatedAt"), expression.Value(utils.NowRFC3339()))
	return r.update(ctx, userID, id, update, "rename workflow")
}

// SetPinned pins or unpins a stored workflow
func (r *WorkflowRepository) SetPinned(ctx context.Context, userID string, id aggregates.WorkflowID, pinned bool) error {
	update := expression.Set(expression.Name("Pinned"), expression.Value(pinned))
	return r.update(ctx, userID, id, update, "pin workflow")
}

// Delete removes a stored workflow
func (r *WorkflowRepository) Delete(ctx context.Context, userID string, id aggregates.WorkflowID) error {
	input := &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       r.key(userID, id),
	}
	if _, err := r.client.DeleteItem(ctx, input); err != nil {
		return pkgerrors.NewDatabaseError("delete workflow", err)
	}

	r.logger.Debug("Workflow deleted",
		zap.String("workflowID", id.String()),
		zap.String("userID", userID),
	)
	return nil
}

func (r *WorkflowRepository) update(ctx context.Context, userID string, id aggregates.WorkflowID, update expression.UpdateBuilder, op string) error {
	cond := expression.AttributeExists(expression.Name("PK"))
	expr, err := expression.NewBuilder().WithUpdate(update).WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("failed to build update expression: %w", err)
	}

	input := &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       r.key(userID, id),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	if _, err := r.client.UpdateItem(ctx, input); err != nil {
		var condFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condFailed) {
			return pkgerrors.NewNotFoundError("workflow")
		}
		return pkgerrors.NewDatabaseError(op, err)
	}
	return nil
}

func (r *WorkflowRepository) key(userID string, id aggregates.WorkflowID) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("USER#%s", userID)},
		"SK": &types.AttributeValueMemberS{Value: fmt.Sprintf("WORKFLOW#%s", id.String())},
	}
}

func (r *WorkflowRepository) toItem(userID string, workflow *aggregates.Workflow) workflowItem {
	updatedAt := workflow.LastModified().Format(time.RFC3339)

	nodes := make([]nodeItem, 0, workflow.NodeCount())
	for _, n := range workflow.Nodes() {
		pos := n.Position()
		nodes = append(nodes, nodeItem{
			ID:          n.ID().String(),
			Kind:        n.Kind().String(),
			Label:       n.Label(),
			Description: n.Description(),
			X:           pos.X,
			Y:           pos.Y,
			Config:      n.Config(),
		})
	}

	edges := make([]edgeItem, 0, workflow.EdgeCount())
	for _, e := range workflow.Edges() {
		edges = append(edges, edgeItem{
			ID:           e.ID,
			Source:       e.SourceID.String(),
			Target:       e.TargetID.String(),
			SourceHandle: e.SourceHandle,
			CreatedAt:    e.CreatedAt.Format(time.RFC3339),
		})
	}

	return workflowItem{
		PK:         fmt.Sprintf("USER#%s", userID),
		SK:         fmt.Sprintf("WORKFLOW#%s", workflow.ID().String()),
		GSI1PK:     fmt.Sprintf("USER#%s", userID),
		GSI1SK:     fmt.Sprintf("UPDATED#%s#%s", updatedAt, workflow.ID().String()),
		EntityType: "WORKFLOW",
		WorkflowID: workflow.ID().String(),
		UserID:     userID,
		Name:       workflow.Name(),
		Nodes:      nodes,
		Edges:      edges,
		NodeCount:  workflow.NodeCount(),
		EdgeCount:  workflow.EdgeCount(),
		UpdatedAt:  updatedAt,
	}
}

func (r *WorkflowRepository) fromItem(item workflowItem) (*aggregates.Workflow, error) {
	nodes := make([]*entities.Node, 0, len(item.Nodes))
	for _, ni := range item.Nodes {
		id, err := valueobjects.NewNodeIDFromString(ni.ID)
		if err != nil {
			r.logger.Warn("Skipping stored node with empty id",
				zap.String("workflowID", item.WorkflowID),
			)
			continue
		}
		node, err := entities.ReconstructNode(
			id,
			valueobjects.KindFromString(ni.Kind),
			ni.Label,
			ni.Description,
			valueobjects.NewPosition(ni.X, ni.Y),
			ni.Config,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to reconstruct node %s: %w", ni.ID, err)
		}
		nodes = append(nodes, node)
	}

	edges := make([]aggregates.Edge, 0, len(item.Edges))
	for _, ei := range item.Edges {
		src, err := valueobjects.NewNodeIDFromString(ei.Source)
		if err != nil {
			continue
		}
		tgt, err := valueobjects.NewNodeIDFromString(ei.Target)
		if err != nil {
			continue
		}
		createdAt, _ := utils.ParseRFC3339(ei.CreatedAt)
		edges = append(edges, aggregates.Edge{
			ID:           ei.ID,
			SourceID:     src,
			TargetID:     tgt,
			SourceHandle: ei.SourceHandle,
			CreatedAt:    createdAt,
		})
	}

	updatedAt, err := utils.ParseRFC3339(item.UpdatedAt)
	if err != nil {
		updatedAt = time.Now()
	}

	return aggregates.ReconstructWorkflow(
		aggregates.WorkflowID(item.WorkflowID),
		item.Name,
		nodes,
		edges,
		updatedAt,
	)
}
