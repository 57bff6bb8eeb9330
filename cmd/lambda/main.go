package main

import (
	"context"
	"log"
	"strings"
	"time"

	"flowbuilder/infrastructure/config"
	"flowbuilder/infrastructure/di"
	"flowbuilder/interfaces/http/rest"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

var (
	// chiLambda wraps the chi router for the API Gateway HTTP API
	chiLambda *chiadapter.ChiLambdaV2

	container *di.Container

	coldStart     = true
	coldStartTime time.Time
)

// init runs during cold start
func init() {
	coldStartTime = time.Now()

	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	container, err = di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}

	handler := rest.NewRouter(rest.RouterDeps{
		CommandBus: container.CommandBus,
		QueryBus:   container.QueryBus,
		Workflow:   container.Workflow,
		Sync:       container.Sync,
		History:    container.History,
		Validator:  container.Validator,
		Tracer:     container.Tracer,
		Logger:     container.Logger,

		IPRateLimit:   cfg.IPRateLimit,
		UserRateLimit: cfg.UserRateLimit,
	})

	chiRouter, ok := handler.(*chi.Mux)
	if !ok {
		log.Fatal("Failed to cast handler to chi.Mux")
	}
	chiLambda = chiadapter.NewV2(chiRouter)

	container.Logger.Info("Lambda cold start completed",
		zap.Duration("duration", time.Since(coldStartTime)),
	)
}

// Handler proxies API Gateway events into the chi router. When the request
// came through the API Gateway JWT authorizer the token was already checked,
// so the bypass headers are set and in-process validation is skipped.
func Handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	if req.Headers != nil {
		authHeader, hasAuth := req.Headers["authorization"]
		if !hasAuth {
			authHeader, hasAuth = req.Headers["Authorization"]
		}
		_, hasAmznTrace := req.Headers["x-amzn-trace-id"]

		if hasAmznTrace && (!hasAuth || strings.HasPrefix(authHeader, "Bearer ")) {
			if auth := req.RequestContext.Authorizer; auth != nil && auth.JWT != nil {
				req.Headers["X-API-Gateway-Authorized"] = "true"
				if userID, ok := auth.JWT.Claims["sub"]; ok {
					req.Headers["X-User-ID"] = userID
				}
				if email, ok := auth.JWT.Claims["email"]; ok {
					req.Headers["X-User-Email"] = email
				}
			}
		}
	}

	resp, err := chiLambda.ProxyWithContextV2(ctx, req)

	if resp.Headers == nil {
		resp.Headers = make(map[string]string)
	}
	if coldStart {
		resp.Headers["X-Cold-Start"] = "true"
		coldStart = false
	}
	if req.RequestContext.RequestID != "" {
		resp.Headers["X-Request-ID"] = req.RequestContext.RequestID
	}

	if err != nil || resp.StatusCode >= 500 {
		container.Logger.Error("Lambda request failed",
			zap.String("method", req.RequestContext.HTTP.Method),
			zap.String("path", req.RequestContext.HTTP.Path),
			zap.Int("status_code", resp.StatusCode),
			zap.Error(err),
		)
	}

	return resp, err
}

func main() {
	lambda.Start(Handler)
}
