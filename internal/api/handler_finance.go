package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"property-management-backend/internal/model"
	"property-management-backend/internal/store"
)

type chargeRequest struct {
	Name        string  `json:"name" binding:"required"`
	Amount      float64 `json:"amount"`
	ChargeType  string  `json:"charge_type" binding:"required"`
	Description string  `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

func (r chargeRequest) input() (store.ChargeInput, error) {
	ct, err := model.ParseChargeType(r.ChargeType)
	if err != nil {
		return store.ChargeInput{}, err
	}
	return store.ChargeInput{
		Name:        r.Name,
		Amount:      r.Amount,
		ChargeType:  ct,
		Description: r.Description,
		IsActive:    r.IsActive == nil || *r.IsActive,
	}, nil
}

func (h *Handler) ListCharges(c *gin.Context) {
	charges, err := h.store.Finance().ListCharges(c.Request.Context(), c.Query("active") == "true")
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, charges)
}

func (h *Handler) GetCharge(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	charge, err := h.store.Finance().GetCharge(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, charge)
}

func (h *Handler) CreateCharge(c *gin.Context) {
	var req chargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	in, err := req.input()
	if err != nil {
		badRequest(c, err)
		return
	}
	charge, err := h.store.Finance().CreateCharge(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, charge)
}

func (h *Handler) UpdateCharge(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req chargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	in, err := req.input()
	if err != nil {
		badRequest(c, err)
		return
	}
	charge, err := h.store.Finance().UpdateCharge(c.Request.Context(), id, in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, charge)
}

func (h *Handler) DeleteCharge(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if _, err := h.store.Finance().DeleteCharge(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type recordRequest struct {
	ResidentID int64   `json:"resident_id" binding:"required"`
	AddressID  int64   `json:"address_id" binding:"required"`
	ChargeID   int64   `json:"charge_id" binding:"required"`
	Amount     float64 `json:"amount"`
	DueDate    string  `json:"due_date" binding:"required"`
	PaidDate   *string `json:"paid_date"`
	IsPaid     bool    `json:"is_paid"`
	Notes      string  `json:"notes"`
}

func (r recordRequest) input() (store.RecordInput, error) {
	due, err := parseDate("due_date", r.DueDate)
	if err != nil {
		return store.RecordInput{}, err
	}
	paid, err := parseOptionalDate("paid_date", r.PaidDate)
	if err != nil {
		return store.RecordInput{}, err
	}
	return store.RecordInput{
		ResidentID: r.ResidentID,
		AddressID:  r.AddressID,
		ChargeID:   r.ChargeID,
		Amount:     r.Amount,
		DueDate:    due,
		PaidDate:   paid,
		IsPaid:     r.IsPaid,
		Notes:      r.Notes,
	}, nil
}

// ListRecords lists financial records, newest due date first. The
// resident_id, address_id and unpaid query parameters narrow the result.
func (h *Handler) ListRecords(c *gin.Context) {
	var f store.RecordFilter
	var err error
	if f.ResidentID, err = queryID(c, "resident_id"); err != nil {
		badRequest(c, err)
		return
	}
	if f.AddressID, err = queryID(c, "address_id"); err != nil {
		badRequest(c, err)
		return
	}
	f.UnpaidOnly = c.Query("unpaid") == "true"

	records, err := h.store.Finance().ListRecords(c.Request.Context(), f)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *Handler) GetRecord(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	record, err := h.store.Finance().GetRecord(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *Handler) CreateRecord(c *gin.Context) {
	var req recordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	in, err := req.input()
	if err != nil {
		badRequest(c, err)
		return
	}
	record, err := h.store.Finance().CreateRecord(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (h *Handler) UpdateRecord(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req recordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	in, err := req.input()
	if err != nil {
		badRequest(c, err)
		return
	}
	record, err := h.store.Finance().UpdateRecord(c.Request.Context(), id, in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *Handler) DeleteRecord(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if _, err := h.store.Finance().DeleteRecord(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type payRequest struct {
	PaidDate *string `json:"paid_date"`
}

// MarkPaid settles a record, on the given date or today.
func (h *Handler) MarkPaid(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req payRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	at := h.now()
	if paid, err := parseOptionalDate("paid_date", req.PaidDate); err != nil {
		badRequest(c, err)
		return
	} else if paid != nil {
		at = *paid
	}

	record, err := h.store.Finance().MarkPaid(c.Request.Context(), id, at)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// GetPendingDues returns the unpaid total that is not yet overdue.
func (h *Handler) GetPendingDues(c *gin.Context) {
	total, err := h.store.Finance().TotalPendingDues(c.Request.Context(), h.now())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pending_dues": total})
}
