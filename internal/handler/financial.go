package handler

import (
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/babybliss/babybliss-backend/internal/apperr"
	"github.com/babybliss/babybliss-backend/internal/audit"
	"github.com/babybliss/babybliss-backend/internal/middleware"
	"github.com/babybliss/babybliss-backend/internal/pdf"
	"github.com/babybliss/babybliss-backend/internal/realtime"
	"github.com/babybliss/babybliss-backend/internal/repository"
)

// FinancialHandler serves the /financial endpoint family: payments,
// expenses, the monthly summary and receipt PDFs, dispatched on the action
// query parameter.
type FinancialHandler struct {
	Payments *repository.PaymentRepo
	Expenses *repository.ExpenseRepo
	Bookings *repository.BookingRepo
	Stats    *repository.StatsRepo
	Audit    *audit.Logger
	Notify   *realtime.Notifier
}

func NewFinancialHandler(p *repository.PaymentRepo, e *repository.ExpenseRepo, b *repository.BookingRepo, s *repository.StatsRepo, a *audit.Logger, n *realtime.Notifier) *FinancialHandler {
	return &FinancialHandler{Payments: p, Expenses: e, Bookings: b, Stats: s, Audit: a, Notify: n}
}

func (h *FinancialHandler) Get(c echo.Context) error {
	switch c.QueryParam("action") {
	case "", "payments":
		return h.listPayments(c)
	case "expenses":
		return h.listExpenses(c)
	case "summary":
		return h.summary(c)
	case "receipt":
		return h.receipt(c)
	default:
		return failMsg(c, http.StatusBadRequest, "unknown financial action", "validation_error")
	}
}

func (h *FinancialHandler) Post(c echo.Context) error {
	switch c.QueryParam("action") {
	case "", "payments":
		return h.createPayment(c)
	case "expenses":
		return h.createExpense(c)
	default:
		return failMsg(c, http.StatusBadRequest, "unknown financial action", "validation_error")
	}
}

func (h *FinancialHandler) Put(c echo.Context) error {
	switch c.QueryParam("action") {
	case "", "payments":
		return h.updatePaymentStatus(c)
	case "expenses":
		return h.updateExpense(c)
	default:
		return failMsg(c, http.StatusBadRequest, "unknown financial action", "validation_error")
	}
}

func (h *FinancialHandler) Delete(c echo.Context) error {
	if c.QueryParam("action") != "expenses" {
		return failMsg(c, http.StatusBadRequest, "only expenses can be deleted", "validation_error")
	}
	id, okID := queryID(c)
	if !okID {
		return failMsg(c, http.StatusBadRequest, "id is required", "validation_error")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Expenses.ArchiveAndDelete(ctx, id); err != nil {
		return fail(c, err)
	}
	p, _ := middleware.Principal(c)
	h.Audit.Record(ctx, p, "expense_deleted", fmt.Sprintf("expense #%d archived", id), c.RealIP())
	h.Notify.Publish(ctx, realtime.TopicDashboard)
	return ok(c, http.StatusOK, echo.Map{"message": "expense archived"})
}

// ----- payments -----

func (h *FinancialHandler) listPayments(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if bid, err := parseUintParam(c, "booking_id"); err != nil {
		return fail(c, err)
	} else if bid != 0 {
		rows, err := h.Payments.ListByBooking(ctx, bid)
		if err != nil {
			return fail(c, err)
		}
		out := make([]echo.Map, 0, len(rows))
		for _, p := range rows {
			out = append(out, paymentJSON(p))
		}
		return ok(c, http.StatusOK, echo.Map{"payments": out})
	}

	limit, offset := pagination(c, 50)
	rows, err := h.Payments.List(ctx, c.QueryParam("status"), limit, offset)
	if err != nil {
		return fail(c, err)
	}
	out := make([]echo.Map, 0, len(rows))
	for _, p := range rows {
		out = append(out, paymentJSON(p))
	}
	return ok(c, http.StatusOK, echo.Map{"payments": out})
}

type paymentReq struct {
	BookingID     uint64  `json:"booking_id"`
	Amount        float64 `json:"amount"`
	PaymentStatus string  `json:"payment_status"`
	PaymentMethod string  `json:"payment_method"`
	Notes         string  `json:"notes"`
}

func (h *FinancialHandler) createPayment(c echo.Context) error {
	var req paymentReq
	if err := c.Bind(&req); err != nil {
		return failMsg(c, http.StatusBadRequest, "invalid body", "validation_error")
	}
	if req.BookingID == 0 || req.Amount <= 0 {
		return failMsg(c, http.StatusBadRequest, "booking_id and a positive amount are required", "validation_error")
	}
	status := req.PaymentStatus
	if status == "" {
		status = "pending"
	}
	if status != "pending" && status != "paid" {
		return failMsg(c, http.StatusBadRequest, "payment_status must be pending or paid", "validation_error")
	}
	method := req.PaymentMethod
	if method == "" {
		method = "unspecified"
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	// The booking must exist before money is recorded against it.
	if _, err := h.Bookings.GetByID(ctx, req.BookingID); err != nil {
		return fail(c, err)
	}

	pay := repository.Payment{
		BookingID:            req.BookingID,
		Amount:               req.Amount,
		PaymentStatus:        status,
		PaymentMethod:        method,
		TransactionReference: fmt.Sprintf("PAY-%d-%d", req.BookingID, time.Now().Unix()),
	}
	if status == "paid" {
		pay.PaymentDate = sql.NullTime{Time: time.Now().UTC(), Valid: true}
	}
	if req.Notes != "" {
		pay.Notes.String, pay.Notes.Valid = req.Notes, true
	}
	if err := h.Payments.Create(ctx, &pay); err != nil {
		return fail(c, err)
	}
	p, _ := middleware.Principal(c)
	h.Audit.Record(ctx, p, "payment_created",
		fmt.Sprintf("payment of %.2f against booking #%d", req.Amount, req.BookingID), c.RealIP())
	h.Notify.Publish(ctx, realtime.TopicDashboard)
	return ok(c, http.StatusCreated, echo.Map{"payment": paymentJSON(pay)})
}

func (h *FinancialHandler) updatePaymentStatus(c echo.Context) error {
	id, okID := queryID(c)
	if !okID {
		return failMsg(c, http.StatusBadRequest, "id is required", "validation_error")
	}
	var req struct {
		PaymentStatus string `json:"payment_status"`
	}
	if err := c.Bind(&req); err != nil {
		return failMsg(c, http.StatusBadRequest, "invalid body", "validation_error")
	}
	if req.PaymentStatus != "pending" && req.PaymentStatus != "paid" {
		return failMsg(c, http.StatusBadRequest, "payment_status must be pending or paid", "validation_error")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Payments.SetStatus(ctx, id, req.PaymentStatus); err != nil {
		return fail(c, err)
	}
	p, _ := middleware.Principal(c)
	h.Audit.Record(ctx, p, "payment_status",
		fmt.Sprintf("payment #%d -> %s", id, req.PaymentStatus), c.RealIP())
	h.Notify.Publish(ctx, realtime.TopicDashboard)
	return ok(c, http.StatusOK, echo.Map{"message": "payment updated"})
}

// ----- expenses -----

type expenseReq struct {
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	ExpenseDate string  `json:"expense_date"`
}

func (req *expenseReq) toExpense() (repository.Expense, error) {
	req.Description = strings.TrimSpace(req.Description)
	if req.Description == "" {
		return repository.Expense{}, fmt.Errorf("%w: description is required", apperr.ErrValidation)
	}
	if req.Amount <= 0 {
		return repository.Expense{}, fmt.Errorf("%w: amount must be positive", apperr.ErrValidation)
	}
	date := time.Now().UTC()
	if req.ExpenseDate != "" {
		d, err := time.Parse("2006-01-02", req.ExpenseDate)
		if err != nil {
			return repository.Expense{}, fmt.Errorf("%w: expense_date must be YYYY-MM-DD", apperr.ErrValidation)
		}
		date = d
	}
	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = "general"
	}
	return repository.Expense{
		Description: req.Description,
		Category:    category,
		Amount:      req.Amount,
		ExpenseDate: date,
	}, nil
}

func (h *FinancialHandler) listExpenses(c echo.Context) error {
	month := c.QueryParam("month")
	if month != "" {
		if _, err := time.Parse("2006-01", month); err != nil {
			return failMsg(c, http.StatusBadRequest, "month must be YYYY-MM", "validation_error")
		}
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	limit, offset := pagination(c, 50)
	rows, err := h.Expenses.List(ctx, month, limit, offset)
	if err != nil {
		return fail(c, err)
	}
	out := make([]echo.Map, 0, len(rows))
	for _, e := range rows {
		out = append(out, echo.Map{
			"id":           e.ID,
			"description":  e.Description,
			"category":     e.Category,
			"amount":       e.Amount,
			"expense_date": e.ExpenseDate.Format("2006-01-02"),
			"created_at":   e.CreatedAt,
		})
	}
	return ok(c, http.StatusOK, echo.Map{"expenses": out})
}

func (h *FinancialHandler) createExpense(c echo.Context) error {
	var req expenseReq
	if err := c.Bind(&req); err != nil {
		return failMsg(c, http.StatusBadRequest, "invalid body", "validation_error")
	}
	e, err := req.toExpense()
	if err != nil {
		return fail(c, err)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Expenses.Create(ctx, &e); err != nil {
		return fail(c, err)
	}
	p, _ := middleware.Principal(c)
	h.Audit.Record(ctx, p, "expense_created",
		fmt.Sprintf("%s: %.2f", e.Description, e.Amount), c.RealIP())
	h.Notify.Publish(ctx, realtime.TopicDashboard)
	return ok(c, http.StatusCreated, echo.Map{"expense": echo.Map{
		"id":           e.ID,
		"description":  e.Description,
		"category":     e.Category,
		"amount":       e.Amount,
		"expense_date": e.ExpenseDate.Format("2006-01-02"),
	}})
}

func (h *FinancialHandler) updateExpense(c echo.Context) error {
	id, okID := queryID(c)
	if !okID {
		return failMsg(c, http.StatusBadRequest, "id is required", "validation_error")
	}
	var req expenseReq
	if err := c.Bind(&req); err != nil {
		return failMsg(c, http.StatusBadRequest, "invalid body", "validation_error")
	}
	e, err := req.toExpense()
	if err != nil {
		return fail(c, err)
	}
	e.ID = id

	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Expenses.Update(ctx, &e); err != nil {
		return fail(c, err)
	}
	p, _ := middleware.Principal(c)
	h.Audit.Record(ctx, p, "expense_updated", fmt.Sprintf("expense #%d", id), c.RealIP())
	return ok(c, http.StatusOK, echo.Map{"message": "expense updated"})
}

// ----- summary & receipt -----

func (h *FinancialHandler) summary(c echo.Context) error {
	month := c.QueryParam("month")
	if month == "" {
		month = time.Now().UTC().Format("2006-01")
	} else if _, err := time.Parse("2006-01", month); err != nil {
		return failMsg(c, http.StatusBadRequest, "month must be YYYY-MM", "validation_error")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	s, err := h.Stats.Summary(ctx, month)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"summary": s})
}

// receipt renders a payment receipt as a PDF download.  Only paid payments
// have receipts.
func (h *FinancialHandler) receipt(c echo.Context) error {
	id, okID := queryID(c)
	if !okID {
		return failMsg(c, http.StatusBadRequest, "id is required", "validation_error")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	pay, err := h.Payments.GetByID(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	if pay.PaymentStatus != "paid" {
		return failMsg(c, http.StatusConflict, "receipt is only available for paid payments", "conflict")
	}
	b, err := h.Bookings.GetByID(ctx, pay.BookingID)
	if err != nil {
		return fail(c, err)
	}

	data := pdf.ReceiptData{
		PaymentID:            pay.ID,
		BookingID:            b.ID,
		ClientName:           b.FirstName + " " + b.LastName,
		ClientEmail:          b.Email,
		EventDate:            b.EventDate,
		Package:              b.Package,
		Amount:               pay.Amount,
		PaymentMethod:        pay.PaymentMethod,
		TransactionReference: pay.TransactionReference,
	}
	if pay.PaymentDate.Valid {
		data.PaymentDate = pay.PaymentDate.Time
	}
	doc, err := pdf.Receipt(data)
	if err != nil {
		return fail(c, fmt.Errorf("%w: receipt render: %v", apperr.ErrInternal, err))
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="receipt-%d.pdf"`, pay.ID))
	return c.Blob(http.StatusOK, "application/pdf", doc)
}

// parseUintParam reads an optional numeric query parameter; absent returns 0.
func parseUintParam(c echo.Context, name string) (uint64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", apperr.ErrValidation, name)
	}
	return id, nil
}
