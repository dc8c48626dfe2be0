package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/ereceipt/internal/services"
)

func (handler *Handler) ListActiveBanks(c *fiber.Ctx) error {
	banks, err := handler.bankService.ListActive()
	if err != nil {
		return respondServiceError(c, err, "Failed to retrieve banks")
	}
	return respondList(c, "Banks retrieved successfully", banks, nil)
}

func (handler *Handler) ListAllBanks(c *fiber.Ctx) error {
	banks, err := handler.bankService.ListAll(currentIdentity(c))
	if err != nil {
		return respondServiceError(c, err, "Failed to retrieve banks")
	}
	return respondList(c, "Banks retrieved successfully", banks, nil)
}

func (handler *Handler) CreateBank(c *fiber.Ctx) error {
	var input services.BankCreateInput
	if err := parseBody(c, &input); err != nil {
		return respondServiceError(c, err, "")
	}

	bank, err := handler.bankService.Create(currentIdentity(c), input)
	if err != nil {
		return respondServiceError(c, err, "Failed to create bank")
	}
	return respondSuccess(c, fiber.StatusCreated, "Bank created successfully", bank)
}

func (handler *Handler) UpdateBank(c *fiber.Ctx) error {
	bankID, err := parseIDParam(c, "id")
	if err != nil {
		return respondServiceError(c, err, "")
	}
	var input services.BankUpdateInput
	if err := parseBody(c, &input); err != nil {
		return respondServiceError(c, err, "")
	}

	bank, err := handler.bankService.Update(currentIdentity(c), bankID, input)
	if err != nil {
		return respondServiceError(c, err, "Failed to update bank")
	}
	return respondSuccess(c, fiber.StatusOK, "Bank updated successfully", bank)
}

func (handler *Handler) DeleteBank(c *fiber.Ctx) error {
	bankID, err := parseIDParam(c, "id")
	if err != nil {
		return respondServiceError(c, err, "")
	}
	if err := handler.bankService.Deactivate(currentIdentity(c), bankID); err != nil {
		return respondServiceError(c, err, "Failed to delete bank")
	}
	return respondSuccess(c, fiber.StatusOK, "Bank deleted successfully", nil)
}

func (handler *Handler) RestoreBank(c *fiber.Ctx) error {
	bankID, err := parseIDParam(c, "id")
	if err != nil {
		return respondServiceError(c, err, "")
	}
	bank, err := handler.bankService.Restore(currentIdentity(c), bankID)
	if err != nil {
		return respondServiceError(c, err, "Failed to restore bank")
	}
	return respondSuccess(c, fiber.StatusOK, "Bank restored successfully", bank)
}
