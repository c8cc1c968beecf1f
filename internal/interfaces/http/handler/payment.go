package handler

import (
	"time"

	tuitionapp "github.com/colegio/backend/internal/application/tuition"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentHandler handles tuition payment API endpoints: month registration,
// ledger appends, and the read-side views (statement, matrix).
type PaymentHandler struct {
	BaseHandler
	registrarService *tuitionapp.RegistrarService
	ledgerService    *tuitionapp.LedgerService
	queryService     *tuitionapp.QueryService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(
	registrarService *tuitionapp.RegistrarService,
	ledgerService *tuitionapp.LedgerService,
	queryService *tuitionapp.QueryService,
) *PaymentHandler {
	return &PaymentHandler{
		registrarService: registrarService,
		ledgerService:    ledgerService,
		queryService:     queryService,
	}
}

// RegisterMonthRequest represents a request to register a monthly obligation
// @Description Request body for registering (or repricing) a student month
type RegisterMonthRequest struct {
	StudentID string          `json:"student_id" binding:"required,uuid" example:"6f1d2e10-8c7a-4b4e-9d35-0a4eafdd91b2"`
	CycleID   string          `json:"cycle_id" binding:"required,uuid" example:"a8a2f4f7-21c4-45a4-93d8-55e3f2a80f19"`
	Year      int             `json:"year" binding:"required,min=2000" example:"2025"`
	Month     int             `json:"month" binding:"required,min=1,max=12" example:"3"`
	Total     decimal.Decimal `json:"total" binding:"required" example:"350.00"`
	Concept   string          `json:"concept" binding:"max=200" example:"Pension marzo"`
	DueDate   *time.Time      `json:"due_date"`
}

// AddPaymentRequest represents a request to append one payment to a month
// @Description Request body for recording a payment against a registered month
type AddPaymentRequest struct {
	StudentID string          `json:"student_id" binding:"required,uuid"`
	CycleID   string          `json:"cycle_id" binding:"required,uuid"`
	Year      int             `json:"year" binding:"required,min=2000" example:"2025"`
	Month     int             `json:"month" binding:"required,min=1,max=12" example:"3"`
	Amount    decimal.Decimal `json:"amount" binding:"required" example:"150.00"`
	Date      time.Time       `json:"date" binding:"required"`
	Method    string          `json:"payment_method" binding:"required" example:"YAPE"`
	Reference string          `json:"reference" binding:"max=200" example:"OP-778812"`
	IssuedBy  string          `json:"issued_by" binding:"required,max=200" example:"secretaria01"`
}

// RegisterMonth creates or reprices the obligation for one student month
func (h *PaymentHandler) RegisterMonth(c *gin.Context) {
	var req RegisterMonthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	studentID, err := uuid.Parse(req.StudentID)
	if err != nil {
		h.BadRequest(c, "Invalid student ID")
		return
	}
	cycleID, err := uuid.Parse(req.CycleID)
	if err != nil {
		h.BadRequest(c, "Invalid cycle ID")
		return
	}

	resp, err := h.registrarService.RegisterMonth(c.Request.Context(), tuitionapp.RegisterMonthRequest{
		StudentID: studentID,
		CycleID:   cycleID,
		Year:      req.Year,
		Month:     req.Month,
		Total:     req.Total,
		Concept:   req.Concept,
		DueDate:   req.DueDate,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// AddPayment appends one payment to the ledger of a registered month. A
// repeated Idempotency-Key header returns the current month state instead of
// double-counting the payment.
func (h *PaymentHandler) AddPayment(c *gin.Context) {
	var req AddPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	studentID, err := uuid.Parse(req.StudentID)
	if err != nil {
		h.BadRequest(c, "Invalid student ID")
		return
	}
	cycleID, err := uuid.Parse(req.CycleID)
	if err != nil {
		h.BadRequest(c, "Invalid cycle ID")
		return
	}

	resp, err := h.ledgerService.AddPayment(c.Request.Context(), tuitionapp.AddPaymentRequest{
		StudentID:      studentID,
		CycleID:        cycleID,
		Year:           req.Year,
		Month:          req.Month,
		Amount:         req.Amount,
		Date:           req.Date,
		Method:         req.Method,
		Reference:      req.Reference,
		IssuedBy:       req.IssuedBy,
		IdempotencyKey: c.GetHeader("Idempotency-Key"),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// MonthQuery binds the query parameters identifying one student month
type MonthQuery struct {
	StudentID string `form:"student_id" binding:"required,uuid"`
	CycleID   string `form:"cycle_id" binding:"required,uuid"`
	Year      int    `form:"year" binding:"required,min=2000"`
	Month     int    `form:"month" binding:"required,min=1,max=12"`
}

// GetMonth returns the obligation of one student month with its full ledger
func (h *PaymentHandler) GetMonth(c *gin.Context) {
	var q MonthQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	studentID, _ := uuid.Parse(q.StudentID)
	cycleID, _ := uuid.Parse(q.CycleID)

	resp, err := h.queryService.GetMonth(c.Request.Context(), studentID, cycleID, q.Year, q.Month)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListObligationsQuery binds the obligation list filter
type ListObligationsQuery struct {
	StudentID string `form:"student_id" binding:"omitempty,uuid"`
	CycleID   string `form:"cycle_id" binding:"omitempty,uuid"`
	Year      *int   `form:"year"`
	Month     *int   `form:"month" binding:"omitempty,min=1,max=12"`
	Status    string `form:"status"`
	Overdue   *bool  `form:"overdue"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ListObligations lists obligations with filtering and pagination
func (h *PaymentHandler) ListObligations(c *gin.Context) {
	var q ListObligationsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PageSize == 0 {
		q.PageSize = 20
	}

	filter := tuitionapp.ObligationListFilter{
		Year:     q.Year,
		Month:    q.Month,
		Status:   q.Status,
		Overdue:  q.Overdue,
		Page:     q.Page,
		PageSize: q.PageSize,
	}
	if q.StudentID != "" {
		id, _ := uuid.Parse(q.StudentID)
		filter.StudentID = &id
	}
	if q.CycleID != "" {
		id, _ := uuid.Parse(q.CycleID)
		filter.CycleID = &id
	}

	obligations, total, err := h.queryService.ListObligations(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, obligations, total, q.Page, q.PageSize)
}

// GetStudentStatement returns the per-cycle statement of one student
func (h *PaymentHandler) GetStudentStatement(c *gin.Context) {
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

	statement, err := h.queryService.GetStudentStatement(c.Request.Context(), studentID, cycleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, statement)
}

// MatrixQuery binds the payments matrix query parameters
type MatrixQuery struct {
	CycleID string `form:"cycle_id" binding:"required,uuid"`
	Year    int    `form:"year" binding:"required,min=2000"`
}

// GetPaymentsMatrix returns the month-by-student payment grid for one cycle year
func (h *PaymentHandler) GetPaymentsMatrix(c *gin.Context) {
	var q MatrixQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	cycleID, _ := uuid.Parse(q.CycleID)

	matrix, err := h.queryService.GetPaymentsMatrix(c.Request.Context(), cycleID, q.Year)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, matrix)
}

// RegisterRoutes registers payment routes
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	payments := rg.Group("/payments")
	{
		payments.POST("/register-month", h.RegisterMonth)
		payments.POST("/add-payment", h.AddPayment)
		payments.GET("/month", h.GetMonth)
		payments.GET("/obligations", h.ListObligations)
		payments.GET("/student/:id", h.GetStudentStatement)
		payments.GET("/matrix", h.GetPaymentsMatrix)
	}
}
