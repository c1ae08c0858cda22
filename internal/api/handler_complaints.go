package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"property-management-backend/internal/model"
	"property-management-backend/internal/store"
)

type complaintRequest struct {
	ResidentID  int64  `json:"resident_id" binding:"required"`
	AddressID   int64  `json:"address_id" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Status      string `json:"status"`
}

func (r complaintRequest) input() (store.ComplaintInput, error) {
	in := store.ComplaintInput{
		ResidentID:  r.ResidentID,
		AddressID:   r.AddressID,
		Title:       r.Title,
		Description: r.Description,
	}
	if r.Status != "" {
		status, err := model.ParseComplaintStatus(r.Status)
		if err != nil {
			return in, err
		}
		in.Status = status
	}
	return in, nil
}

// ListComplaints lists complaints, newest first. The status, resident_id and
// address_id query parameters narrow the result.
func (h *Handler) ListComplaints(c *gin.Context) {
	var f store.ComplaintFilter
	var err error
	if v := c.Query("status"); v != "" {
		if f.Status, err = model.ParseComplaintStatus(v); err != nil {
			badRequest(c, err)
			return
		}
	}
	if f.ResidentID, err = queryID(c, "resident_id"); err != nil {
		badRequest(c, err)
		return
	}
	if f.AddressID, err = queryID(c, "address_id"); err != nil {
		badRequest(c, err)
		return
	}

	complaints, err := h.store.Complaints().List(c.Request.Context(), f)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, complaints)
}

func (h *Handler) GetComplaint(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	complaint, err := h.store.Complaints().Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, complaint)
}

func (h *Handler) CreateComplaint(c *gin.Context) {
	var req complaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	in, err := req.input()
	if err != nil {
		badRequest(c, err)
		return
	}
	complaint, err := h.store.Complaints().Create(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.notifier.Dispatch(complaint.ID)
	c.JSON(http.StatusCreated, complaint)
}

func (h *Handler) UpdateComplaint(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req complaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	in, err := req.input()
	if err != nil {
		badRequest(c, err)
		return
	}
	complaint, err := h.store.Complaints().Update(c.Request.Context(), id, in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.notifier.Dispatch(complaint.ID)
	c.JSON(http.StatusOK, complaint)
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateComplaintStatus moves a complaint to any status.
func (h *Handler) UpdateComplaintStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	status, err := model.ParseComplaintStatus(req.Status)
	if err != nil {
		badRequest(c, err)
		return
	}
	complaint, err := h.store.Complaints().UpdateStatus(c.Request.Context(), id, status)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.notifier.Dispatch(complaint.ID)
	c.JSON(http.StatusOK, complaint)
}

func (h *Handler) DeleteComplaint(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if _, err := h.store.Complaints().Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
