package handler

import (
	tuitionapp "github.com/colegio/backend/internal/application/tuition"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ReceiptHandler handles receipt read endpoints. Receipts are issued inside
// the payment transaction; this handler only exposes them.
type ReceiptHandler struct {
	BaseHandler
	receiptService *tuitionapp.ReceiptService
}

// NewReceiptHandler creates a new ReceiptHandler
func NewReceiptHandler(receiptService *tuitionapp.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{receiptService: receiptService}
}

// GetByMonth returns the receipt of one fully paid student month, or a null
// payload when the month has no receipt yet
func (h *ReceiptHandler) GetByMonth(c *gin.Context) {
	var q MonthQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	studentID, _ := uuid.Parse(q.StudentID)
	cycleID, _ := uuid.Parse(q.CycleID)

	receipt, err := h.receiptService.GetReceiptByMonth(c.Request.Context(), studentID, cycleID, q.Year, q.Month)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, receipt)
}

// GetByNumber returns a receipt by its human-readable number (REC-2025-000123)
func (h *ReceiptHandler) GetByNumber(c *gin.Context) {
	receipt, err := h.receiptService.GetReceiptByNumber(c.Request.Context(), c.Param("no"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, receipt)
}

// ListByStudent lists all receipts of one student in a cycle
func (h *ReceiptHandler) ListByStudent(c *gin.Context) {
	studentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid student ID")
		return
	}
	cycleID, err := uuid.Parse(c.Query("cycle_id"))
	if err != nil {
		h.BadRequest(c, "Invalid cycle ID")
		return
	}

	receipts, err := h.receiptService.ListStudentReceipts(c.Request.Context(), studentID, cycleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, receipts)
}

// RegisterRoutes registers receipt routes
func (h *ReceiptHandler) RegisterRoutes(rg *gin.RouterGroup) {
	receipts := rg.Group("/receipts")
	{
		receipts.GET("/by-month", h.GetByMonth)
		receipts.GET("/number/:no", h.GetByNumber)
		receipts.GET("/student/:id", h.ListByStudent)
	}
}
