package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/ereceipt/internal/models"
	"github.com/terraincognita07/ereceipt/internal/services"
)

type rejectionInput struct {
	Reason string `json:"reason" form:"reason"`
}

func (handler *Handler) ListUsers(c *fiber.Ctx) error {
	return handler.listUsers(c, models.ParseStatusFilter(c.Query("status")), "Users retrieved successfully")
}

func (handler *Handler) ListPendingUsers(c *fiber.Ctx) error {
	return handler.listUsers(c, models.StatusFilterPending, "Pending users retrieved successfully")
}

func (handler *Handler) listUsers(c *fiber.Ctx, filter models.StatusFilter, message string) error {
	users, err := handler.directoryService.List(currentIdentity(c), filter)
	if err != nil {
		return respondServiceError(c, err, "Failed to retrieve users")
	}
	return respondList(c, message, users, fiber.Map{"filter": filter})
}

func (handler *Handler) UpdateUser(c *fiber.Ctx) error {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		return respondServiceError(c, err, "")
	}
	var input services.UserUpdateInput
	if err := parseBody(c, &input); err != nil {
		return respondServiceError(c, err, "")
	}

	user, err := handler.directoryService.Update(currentIdentity(c), userID, input)
	if err != nil {
		return respondServiceError(c, err, "Failed to update user")
	}
	return respondSuccess(c, fiber.StatusOK, "User updated successfully", user)
}

func (handler *Handler) DeleteUser(c *fiber.Ctx) error {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		return respondServiceError(c, err, "")
	}
	if err := handler.directoryService.Delete(c.UserContext(), currentIdentity(c), userID); err != nil {
		return respondServiceError(c, err, "Failed to delete user")
	}
	return respondSuccess(c, fiber.StatusOK, "User deleted successfully", nil)
}

func (handler *Handler) ApproveUser(c *fiber.Ctx) error {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		return respondServiceError(c, err, "")
	}
	if err := handler.approvalService.ApproveUser(currentIdentity(c), userID); err != nil {
		return respondServiceError(c, err, "Failed to approve user")
	}
	return respondSuccess(c, fiber.StatusOK, "User approved successfully", nil)
}

func (handler *Handler) RejectUser(c *fiber.Ctx) error {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		return respondServiceError(c, err, "")
	}
	if err := handler.approvalService.RejectUser(currentIdentity(c), userID); err != nil {
		return respondServiceError(c, err, "Failed to reject user")
	}
	return respondSuccess(c, fiber.StatusOK, "User rejected successfully", nil)
}

func (handler *Handler) ListAllReceipts(c *fiber.Ctx) error {
	filter := models.ParseStatusFilter(c.Query("status"))
	receipts, err := handler.receiptService.ListAll(currentIdentity(c), filter)
	if err != nil {
		return respondServiceError(c, err, "Failed to retrieve receipts")
	}
	return respondList(c, "Receipts retrieved successfully", receipts, fiber.Map{"filter": filter})
}

func (handler *Handler) ApproveReceipt(c *fiber.Ctx) error {
	receiptID, err := parseIDParam(c, "id")
	if err != nil {
		return respondServiceError(c, err, "")
	}
	if err := handler.approvalService.ApproveReceipt(currentIdentity(c), receiptID); err != nil {
		return respondServiceError(c, err, "Failed to approve receipt")
	}
	return respondSuccess(c, fiber.StatusOK, "Receipt approved successfully", nil)
}

func (handler *Handler) RejectReceipt(c *fiber.Ctx) error {
	receiptID, err := parseIDParam(c, "id")
	if err != nil {
		return respondServiceError(c, err, "")
	}
	var input rejectionInput
	if err := parseBody(c, &input); err != nil {
		return respondServiceError(c, err, "")
	}

	if err := handler.approvalService.RejectReceipt(currentIdentity(c), receiptID, input.Reason); err != nil {
		return respondServiceError(c, err, "Failed to reject receipt")
	}
	return respondSuccess(c, fiber.StatusOK, "Receipt rejected successfully", nil)
}

func (handler *Handler) Statistics(c *fiber.Ctx) error {
	stats, err := handler.statsService.Compute(currentIdentity(c))
	if err != nil {
		return respondServiceError(c, err, "Failed to retrieve statistics")
	}
	return respondSuccess(c, fiber.StatusOK, "Statistics retrieved successfully", stats)
}
