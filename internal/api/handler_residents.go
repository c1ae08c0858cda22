package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"property-management-backend/internal/model"
	"property-management-backend/internal/store"
)

type residentRequest struct {
	Name             string  `json:"name" binding:"required"`
	ContactNumber    string  `json:"contact_number"`
	Email            string  `json:"email"`
	EmergencyContact string  `json:"emergency_contact"`
	IDProofNumber    string  `json:"id_proof_number"`
	MoveInDate       *string `json:"move_in_date"`
}

func (r residentRequest) input() (store.ResidentInput, error) {
	moveIn, err := parseOptionalDate("move_in_date", r.MoveInDate)
	if err != nil {
		return store.ResidentInput{}, err
	}
	return store.ResidentInput{
		Name:             r.Name,
		ContactNumber:    r.ContactNumber,
		Email:            r.Email,
		EmergencyContact: r.EmergencyContact,
		IDProofNumber:    r.IDProofNumber,
		MoveInDate:       moveIn,
	}, nil
}

// ListResidents lists active residents. The name, contact and address query
// parameters switch to a filtered search; include_inactive lists everyone.
func (h *Handler) ListResidents(c *gin.Context) {
	ctx := c.Request.Context()
	f := store.ResidentFilter{
		Name:          c.Query("name"),
		ContactNumber: c.Query("contact"),
		Address:       c.Query("address"),
	}

	var (
		residents []model.Resident
		err       error
	)
	if f != (store.ResidentFilter{}) {
		residents, err = h.store.Residents().Filter(ctx, f)
	} else {
		residents, err = h.store.Residents().List(ctx, c.Query("include_inactive") != "true")
	}
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, residents)
}

func (h *Handler) GetResident(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resident, err := h.store.Residents().Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resident)
}

func (h *Handler) CreateResident(c *gin.Context) {
	var req residentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	in, err := req.input()
	if err != nil {
		badRequest(c, err)
		return
	}
	resident, err := h.store.Residents().Create(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resident)
}

func (h *Handler) UpdateResident(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req residentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	in, err := req.input()
	if err != nil {
		badRequest(c, err)
		return
	}
	resident, err := h.store.Residents().Update(c.Request.Context(), id, in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resident)
}

// DeactivateResident marks a resident inactive. Residents are never removed.
func (h *Handler) DeactivateResident(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	resident, err := h.store.Residents().Deactivate(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resident)
}

type allotRequest struct {
	AddressID int64  `json:"address_id" binding:"required"`
	FloorID   *int64 `json:"floor_id"`
}

// Allot attaches an address, and optionally a floor of it, to a resident.
func (h *Handler) Allot(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req allotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	result, err := h.store.Residents().Allot(c.Request.Context(), id, req.AddressID, req.FloorID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if result.FloorRejected {
		h.logger.Info("allotment floor ignored",
			zap.Int64("resident_id", id),
			zap.Int64("address_id", req.AddressID),
			zap.Int64p("floor_id", req.FloorID))
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) RemoveAllotment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	addressID, ok := pathID(c, "address_id")
	if !ok {
		return
	}
	if err := h.store.Residents().Remove(c.Request.Context(), id, addressID); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ResidentsByAddress lists the active residents allotted to an address.
func (h *Handler) ResidentsByAddress(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	residents, err := h.store.Residents().ByAddress(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, residents)
}

// ResidentsByFloor lists the active residents placed on a floor.
func (h *Handler) ResidentsByFloor(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	residents, err := h.store.Residents().ByFloor(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, residents)
}

// ListAllotments lists resident placements, narrowed by number and block.
func (h *Handler) ListAllotments(c *gin.Context) {
	f := store.AllotmentFilter{AddressNumber: c.Query("number")}
	if v := c.Query("block"); v != "" {
		block, err := model.ParseBlock(v)
		if err != nil {
			badRequest(c, err)
			return
		}
		f.Block = block
	}
	rows, err := h.store.Residents().Allotments(c.Request.Context(), f)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}
