package api

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/ereceipt/internal/services"
)

const receiptFileField = "receipt_image"

func (handler *Handler) UploadReceipt(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile(receiptFileField)
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, "Receipt image is required")
	}

	bankID, err := strconv.ParseUint(strings.TrimSpace(c.FormValue("bank_id")), 10, 64)
	if err != nil || bankID == 0 {
		return apiError(c, fiber.StatusBadRequest, "Bank selection is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return respondServiceError(c, fmt.Errorf("open uploaded file: %w", err), "Failed to read uploaded file")
	}
	defer file.Close()

	receipt, err := handler.receiptService.Upload(c.UserContext(), currentIdentity(c), services.ReceiptUpload{
		BankID:        uint(bankID),
		ReceiptNumber: optionalFormValue(c, "receipt_number"),
		Amount:        optionalFormValue(c, "amount"),
		Description:   optionalFormValue(c, "description"),
		Size:          fileHeader.Size,
		Content:       file,
	})
	if err != nil {
		return respondServiceError(c, err, "Failed to upload receipt")
	}

	return respondSuccess(c, fiber.StatusCreated, "Receipt uploaded successfully", fiber.Map{
		"receipt_id": receipt.ID,
		"file_path":  receipt.ImagePath,
	})
}

func (handler *Handler) ReceiptHistory(c *fiber.Ctx) error {
	history, err := handler.receiptService.History(currentIdentity(c), services.HistoryQuery{
		TodayOnly: c.QueryBool("today"),
		DateFrom:  c.Query("date_from"),
		DateTo:    c.Query("date_to"),
	})
	if err != nil {
		return respondServiceError(c, err, "Failed to retrieve receipts")
	}

	return respondList(c, "Receipts retrieved successfully", history.Receipts, fiber.Map{
		"today_only": history.TodayOnly,
		"stats":      history.Stats,
	})
}

// ReceiptFile streams the stored upload. The stream is closed by fasthttp
// once the body is written.
func (handler *Handler) ReceiptFile(c *fiber.Ctx) error {
	receiptID, err := parseIDParam(c, "id")
	if err != nil {
		return respondServiceError(c, err, "")
	}

	receipt, reader, err := handler.receiptService.OpenFile(c.UserContext(), currentIdentity(c), receiptID)
	if err != nil {
		return respondServiceError(c, err, "Failed to open receipt file")
	}

	c.Set(fiber.HeaderContentType, receipt.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="receipt-%d%s"`, receipt.ID, path.Ext(receipt.ImagePath)))
	c.Set(fiber.HeaderCacheControl, "private, no-store")
	return c.SendStream(reader)
}

func (handler *Handler) DeleteReceipt(c *fiber.Ctx) error {
	receiptID, err := parseIDParam(c, "id")
	if err != nil {
		return respondServiceError(c, err, "")
	}
	if err := handler.receiptService.Delete(currentIdentity(c), receiptID); err != nil {
		return respondServiceError(c, err, "Failed to delete receipt")
	}
	return respondSuccess(c, fiber.StatusOK, "Receipt deleted successfully", nil)
}
