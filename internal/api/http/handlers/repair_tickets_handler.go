package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/asset-service/internal/api/dto"
	"github.com/spec-kit/asset-service/internal/audit"
	"github.com/spec-kit/asset-service/internal/auth"
	"github.com/spec-kit/asset-service/internal/domain"
	"github.com/spec-kit/asset-service/internal/service"
	apperrors "github.com/spec-kit/asset-service/pkg/util/errorutil"
)

// RepairTicketsHandler exposes the repair ticket workflow.
type RepairTicketsHandler struct {
	repairs *service.RepairService
	audit   audit.Sink
}

// NewRepairTicketsHandler constructs handler.
func NewRepairTicketsHandler(repairs *service.RepairService, sink audit.Sink) *RepairTicketsHandler {
	return &RepairTicketsHandler{repairs: repairs, audit: sink}
}

// Create POST /assets/:id/repair-tickets.
func (h *RepairTicketsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateRepairTicketRequest
	if err := requireBody(c, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.ProblemDesc) == "" {
		return apperrors.NewValidationError("problem_desc required", nil)
	}

	ticket, err := h.repairs.Create(c.Context(), service.CreateTicketInput{
		AssetID:          c.Params("id"),
		ProblemDesc:      req.ProblemDesc,
		StartedAt:        req.StartedAt,
		ExpectedReturnAt: req.ExpectedReturnAt,
	})
	if err != nil {
		return err
	}

	h.record(c, "repair_ticket.create", ticket.ID, nil, ticket)
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": repairTicketResponse(ticket)})
}

// Get GET /repair-tickets/:id.
func (h *RepairTicketsHandler) Get(c *fiber.Ctx) error {
	ticket, err := h.repairs.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": repairTicketResponse(ticket)})
}

// ListByAsset GET /assets/:id/repair-tickets.
func (h *RepairTicketsHandler) ListByAsset(c *fiber.Ctx) error {
	tickets, err := h.repairs.ListByAsset(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.RepairTicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, repairTicketResponse(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Transition POST /repair-tickets/:id/transition.
func (h *RepairTicketsHandler) Transition(c *fiber.Ctx) error {
	var req dto.TransitionRepairTicketRequest
	if err := requireBody(c, &req); err != nil {
		return err
	}
	if req.To == "" {
		return apperrors.NewValidationError("to required", nil)
	}

	ticket, err := h.repairs.Transition(c.Context(), c.Params("id"), req.To, service.TransitionInput{
		Note:             req.Note,
		VendorName:       req.VendorName,
		QuoteAmountCents: req.QuoteAmountCents,
	})
	if err != nil {
		return err
	}

	h.record(c, "repair_ticket.transition", ticket.ID, nil, ticket)
	return c.JSON(fiber.Map{"data": repairTicketResponse(ticket)})
}

// Delete DELETE /repair-tickets/:id. Idempotent: deleting a missing ticket
// succeeds.
func (h *RepairTicketsHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.repairs.Delete(c.Context(), id); err != nil {
		return err
	}
	h.record(c, "repair_ticket.delete", id, nil, nil)
	return c.SendStatus(http.StatusNoContent)
}

func (h *RepairTicketsHandler) record(c *fiber.Ctx, action, entityID string, before, after any) {
	if h.audit == nil {
		return
	}
	actor := ""
	if principal, ok := auth.PrincipalFromContext(c); ok {
		actor = principal.SubjectID
	}
	h.audit.Record(c.Context(), audit.Entry{
		Action:     action,
		Actor:      actor,
		EntityType: "repair_ticket",
		EntityID:   entityID,
		Before:     before,
		After:      after,
		RequestID:  requestID(c),
	})
}

func repairTicketResponse(ticket *domain.RepairTicket) dto.RepairTicketResponse {
	timeline := make([]dto.TimelineEntryResponse, 0, len(ticket.Timeline))
	for _, entry := range ticket.Timeline {
		timeline = append(timeline, dto.TimelineEntryResponse{
			At:   entry.At,
			From: entry.From,
			To:   entry.To,
			Note: entry.Note,
		})
	}
	return dto.RepairTicketResponse{
		ID:               ticket.ID,
		AssetID:          ticket.AssetID,
		Status:           ticket.Status,
		ProblemDesc:      ticket.ProblemDesc,
		VendorName:       ticket.VendorName,
		QuoteAmountCents: ticket.QuoteAmountCents,
		QuoteAt:          ticket.QuoteAt,
		CompletedAt:      ticket.CompletedAt,
		StartedAt:        ticket.StartedAt,
		ExpectedReturnAt: ticket.ExpectedReturnAt,
		Timeline:         timeline,
		CreatedAt:        ticket.CreatedAt,
		UpdatedAt:        ticket.UpdatedAt,
	}
}
