// Package main implements the WebSocket lifecycle Lambda handler. It serves
// both the $connect and $disconnect routes: connect validates the token and
// records the connection id, disconnect removes it. The REST backend reads
// this table when broadcasting canvas updates.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"flowbuilder/pkg/auth"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var (
	dynamoClient *dynamodb.Client
	validator    *auth.JWTValidator
	tableName    string
)

func init() {
	cfg, err := config.LoadDefaultConfig(context.Background())
	if err != nil {
		log.Fatalf("Failed to load AWS config: %v", err)
	}
	dynamoClient = dynamodb.NewFromConfig(cfg)

	tableName = os.Getenv("CONNECTIONS_TABLE")
	if tableName == "" {
		tableName = "flowbuilder-connections"
	}

	validator, err = auth.NewJWTValidator(auth.JWTConfig{
		SecretKey: os.Getenv("JWT_SECRET"),
		Issuer:    os.Getenv("JWT_ISSUER"),
	})
	if err != nil {
		log.Fatalf("Failed to create token validator: %v", err)
	}
}

func storeConnection(ctx context.Context, connectionID, userID, endpoint string) error {
	now := time.Now()
	item := map[string]types.AttributeValue{
		"PK":           &types.AttributeValueMemberS{Value: fmt.Sprintf("CONNECTION#%s", connectionID)},
		"SK":           &types.AttributeValueMemberS{Value: "METADATA"},
		"ConnectionID": &types.AttributeValueMemberS{Value: connectionID},
		"UserID":       &types.AttributeValueMemberS{Value: userID},
		"Endpoint":     &types.AttributeValueMemberS{Value: endpoint},
		"ConnectedAt":  &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		"TTL":          &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", now.Add(24*time.Hour).Unix())},
	}

	_, err := dynamoClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to store connection: %w", err)
	}
	return nil
}

func removeConnection(ctx context.Context, connectionID string) error {
	_, err := dynamoClient.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("CONNECTION#%s", connectionID)},
			"SK": &types.AttributeValueMemberS{Value: "METADATA"},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to remove connection: %w", err)
	}
	return nil
}

func handler(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	connectionID := request.RequestContext.ConnectionID

	if request.RequestContext.RouteKey == "$disconnect" {
		if err := removeConnection(ctx, connectionID); err != nil {
			log.Printf("Disconnect cleanup failed for %s: %v", connectionID, err)
		}
		return events.APIGatewayProxyResponse{StatusCode: http.StatusOK}, nil
	}

	// $connect: the browser WebSocket API cannot set headers, so the token
	// rides in the query string
	token := request.QueryStringParameters["token"]
	if token == "" {
		token = request.Headers["Authorization"]
	}

	claims, err := validator.ValidateToken(token)
	if err != nil {
		log.Printf("Authentication failed for %s: %v", connectionID, err)
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusUnauthorized,
			Body:       `{"error": "unauthorized"}`,
		}, nil
	}

	endpoint := fmt.Sprintf("%s/%s", request.RequestContext.DomainName, request.RequestContext.Stage)
	if err := storeConnection(ctx, connectionID, claims.UserID, endpoint); err != nil {
		log.Printf("Failed to store connection %s: %v", connectionID, err)
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Body:       `{"error": "internal server error"}`,
		}, nil
	}

	log.Printf("Canvas connection %s established for user %s", connectionID, claims.UserID)
	return events.APIGatewayProxyResponse{StatusCode: http.StatusOK}, nil
}

func main() {
	lambda.Start(handler)
}
