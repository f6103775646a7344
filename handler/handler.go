package handler

import (
	"context"
	"errors"

	"github.com/aws/aws-lambda-go/events"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"github.com/go-chi/chi/v5"
)

// Handler serves API Gateway REST events through the router.
type Handler struct {
	adapter *chiadapter.ChiLambda
}

func NewHandler(router *chi.Mux) (*Handler, error) {
	if router == nil {
		return nil, errors.New("handler: router must not be nil")
	}
	return &Handler{adapter: chiadapter.New(router)}, nil
}

func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return h.adapter.ProxyWithContext(ctx, req)
}
