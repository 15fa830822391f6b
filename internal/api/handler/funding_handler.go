package handler

import (
	"crypto/subtle"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bloodcare/donation-system/internal/core/domain"
	"github.com/bloodcare/donation-system/internal/core/ports"
)

const webhookSecretHeader = "X-Webhook-Secret"

type fundingWebhookRequest struct {
	DonorName     string `json:"donor_name" validate:"required"`
	DonorEmail    string `json:"donor_email" validate:"required,email"`
	AmountCents   int64  `json:"amount_cents" validate:"required,gt=0"`
	Currency      string `json:"currency" validate:"required,len=3"`
	TransactionID string `json:"transaction_id" validate:"required"`
	OccurredAt    string `json:"occurred_at" validate:"omitempty"`
}

type fundingResponse struct {
	DonorName     string    `json:"donor_name"`
	AmountCents   int64     `json:"amount_cents"`
	Currency      string    `json:"currency"`
	TransactionID string    `json:"transaction_id"`
	CreatedAt     time.Time `json:"created_at"`
}

type listFundingsResponse struct {
	Data       []fundingResponse  `json:"data"`
	TotalCents int64              `json:"total_cents"`
	Pagination paginationResponse `json:"pagination"`
}

// FundingHandler ingests payment provider webhooks and serves the funding
// history.
type FundingHandler struct {
	service ports.FundingService
	enqueue func(ports.FundingEventInput)
	secret  string
}

func NewFundingHandler(service ports.FundingService, enqueue func(ports.FundingEventInput), secret string) *FundingHandler {
	return &FundingHandler{service: service, enqueue: enqueue, secret: secret}
}

// Webhook handles POST /v1/fundings/webhook. The provider authenticates
// with a shared secret header; the event is acknowledged immediately and
// processed asynchronously.
//
// @Summary      Ingest a payment webhook event
// @Tags         fundings
// @Accept       json
// @Param        X-Webhook-Secret  header  string                 true  "Shared webhook secret"
// @Param        body              body    fundingWebhookRequest  true  "Payment event"
// @Success      202
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/fundings/webhook [post]
func (h *FundingHandler) Webhook(c echo.Context) error {
	got := c.Request().Header.Get(webhookSecretHeader)
	if subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) != 1 {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid webhook secret")
	}

	var req fundingWebhookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	occurredAt := time.Now().UTC()
	if req.OccurredAt != "" {
		t, err := time.Parse(time.RFC3339, req.OccurredAt)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "occurred_at must be RFC3339")
		}
		occurredAt = t.UTC()
	}

	h.enqueue(ports.FundingEventInput{
		DonorName:     req.DonorName,
		DonorEmail:    req.DonorEmail,
		AmountCents:   req.AmountCents,
		Currency:      req.Currency,
		TransactionID: req.TransactionID,
		OccurredAt:    occurredAt,
	})
	return c.NoContent(http.StatusAccepted)
}

// List handles GET /v1/fundings: authenticated funding history.
func (h *FundingHandler) List(c echo.Context) error {
	if _, err := ctxIdentity(c); err != nil {
		return err
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	result, err := h.service.List(c.Request().Context(), page, limit)
	if err != nil {
		return err
	}

	data := make([]fundingResponse, 0, len(result.Items))
	for _, f := range result.Items {
		data = append(data, toFundingResponse(f))
	}
	return c.JSON(http.StatusOK, listFundingsResponse{
		Data:       data,
		TotalCents: result.TotalCents,
		Pagination: paginationResponse{
			Total:      result.Total,
			Page:       result.Page,
			Limit:      result.Limit,
			TotalPages: result.TotalPages,
		},
	})
}

func toFundingResponse(f *domain.Funding) fundingResponse {
	return fundingResponse{
		DonorName:     f.DonorName,
		AmountCents:   f.AmountCents,
		Currency:      f.Currency,
		TransactionID: f.TransactionID,
		CreatedAt:     f.CreatedAt.UTC(),
	}
}
