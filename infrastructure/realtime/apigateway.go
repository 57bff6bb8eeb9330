package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi"
	apigwtypes "github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi/types"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// canvasMessage is the wire format pushed to connected canvases
type canvasMessage struct {
	Type       string   `json:"type"`
	Timestamp  int64    `json:"timestamp"`
	WorkflowID string   `json:"workflowId"`
	EdgeIDs    []string `json:"edgeIds,omitempty"`
}

// APIGatewayNotifier pushes graph updates to canvases connected over the
// API Gateway WebSocket API. Connection ids live in a DynamoDB table;
// stale connections are pruned when PostToConnection reports them gone.
type APIGatewayNotifier struct {
	apiClient        *apigatewaymanagementapi.Client
	dynamoClient     *dynamodb.Client
	connectionsTable string
	logger           *zap.Logger
}

// NewAPIGatewayNotifier creates a notifier for the given WebSocket endpoint
func NewAPIGatewayNotifier(
	apiClient *apigatewaymanagementapi.Client,
	dynamoClient *dynamodb.Client,
	connectionsTable string,
	logger *zap.Logger,
) *APIGatewayNotifier {
	return &APIGatewayNotifier{
		apiClient:        apiClient,
		dynamoClient:     dynamoClient,
		connectionsTable: connectionsTable,
		logger:           logger,
	}
}

// NotifyGraphReplaced tells connected clients to re-render the full graph
func (n *APIGatewayNotifier) NotifyGraphReplaced(ctx context.Context, workflowID string) error {
	return n.broadcast(ctx, canvasMessage{
		Type:       "graph_replaced",
		Timestamp:  time.Now().UnixMilli(),
		WorkflowID: workflowID,
	})
}

// NotifyEdgesReplaced tells connected clients the exact surviving edge set
func (n *APIGatewayNotifier) NotifyEdgesReplaced(ctx context.Context, workflowID string, edgeIDs []string) error {
	return n.broadcast(ctx, canvasMessage{
		Type:       "edges_replaced",
		Timestamp:  time.Now().UnixMilli(),
		WorkflowID: workflowID,
		EdgeIDs:    edgeIDs,
	})
}

func (n *APIGatewayNotifier) broadcast(ctx context.Context, msg canvasMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal canvas message: %w", err)
	}

	connectionIDs, err := n.allConnections(ctx)
	if err != nil {
		return err
	}

	sent := 0
	for _, connID := range connectionIDs {
		_, err := n.apiClient.PostToConnection(ctx, &apigatewaymanagementapi.PostToConnectionInput{
			ConnectionId: aws.String(connID),
			Data:         payload,
		})
		if err != nil {
			var gone *apigwtypes.GoneException
			if errors.As(err, &gone) {
				n.pruneConnection(ctx, connID)
				continue
			}
			n.logger.Warn("Failed to push to connection",
				zap.String("connection_id", connID),
				zap.Error(err),
			)
			continue
		}
		sent++
	}

	n.logger.Debug("Canvas broadcast complete",
		zap.String("type", msg.Type),
		zap.Int("connections", len(connectionIDs)),
		zap.Int("sent", sent),
	)
	return nil
}

// allConnections scans the connections table for active connection ids
func (n *APIGatewayNotifier) allConnections(ctx context.Context) ([]string, error) {
	var connectionIDs []string
	var startKey map[string]types.AttributeValue

	for {
		out, err := n.dynamoClient.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(n.connectionsTable),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan connections: %w", err)
		}
		for _, item := range out.Items {
			if connID, ok := item["ConnectionID"].(*types.AttributeValueMemberS); ok {
				connectionIDs = append(connectionIDs, connID.Value)
			}
		}
		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	return connectionIDs, nil
}

func (n *APIGatewayNotifier) pruneConnection(ctx context.Context, connID string) {
	_, err := n.dynamoClient.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(n.connectionsTable),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("CONNECTION#%s", connID)},
			"SK": &types.AttributeValueMemberS{Value: "METADATA"},
		},
	})
	if err != nil {
		n.logger.Warn("Failed to prune stale connection",
			zap.String("connection_id", connID),
			zap.Error(err),
		)
		return
	}
	n.logger.Debug("Pruned stale connection", zap.String("connection_id", connID))
}

// NoopNotifier drops notifications, for development without a WebSocket API
type NoopNotifier struct{}

// NotifyGraphReplaced implements the notifier interface
func (NoopNotifier) NotifyGraphReplaced(ctx context.Context, workflowID string) error { return nil }

// NotifyEdgesReplaced implements the notifier interface
func (NoopNotifier) NotifyEdgesReplaced(ctx context.Context, workflowID string, edgeIDs []string) error {
	return nil
}
