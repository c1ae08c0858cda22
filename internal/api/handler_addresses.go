package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"property-management-backend/internal/importer"
	"property-management-backend/internal/model"
	"property-management-backend/internal/store"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type addressRequest struct {
	Category    string `json:"category" binding:"required"`
	Number      string `json:"number" binding:"required"`
	Row         string `json:"row" binding:"required"`
	Block       string `json:"block" binding:"required"`
	TotalFloors int    `json:"total_floors"`
}

func (r addressRequest) input() (store.AddressInput, error) {
	category, err := model.ParseCategory(r.Category)
	if err != nil {
		return store.AddressInput{}, err
	}
	block, err := model.ParseBlock(r.Block)
	if err != nil {
		return store.AddressInput{}, err
	}
	return store.AddressInput{
		Category:    category,
		Number:      r.Number,
		Row:         r.Row,
		Block:       block,
		TotalFloors: r.TotalFloors,
	}, nil
}

// ListAddresses lists addresses, narrowed by the category, block and number
// query parameters when present.
func (h *Handler) ListAddresses(c *gin.Context) {
	var f store.AddressFilter
	if v := c.Query("category"); v != "" {
		category, err := model.ParseCategory(v)
		if err != nil {
			badRequest(c, err)
			return
		}
		f.Category = category
	}
	if v := c.Query("block"); v != "" {
		block, err := model.ParseBlock(v)
		if err != nil {
			badRequest(c, err)
			return
		}
		f.Block = block
	}
	f.Number = c.Query("number")

	addresses, err := h.store.Addresses().Filter(c.Request.Context(), f)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, addresses)
}

func (h *Handler) GetAddress(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	address, err := h.store.Addresses().Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, address)
}

func (h *Handler) CreateAddress(c *gin.Context) {
	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	in, err := req.input()
	if err != nil {
		badRequest(c, err)
		return
	}
	address, err := h.store.Addresses().Create(c.Request.Context(), in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, address)
}

func (h *Handler) UpdateAddress(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	in, err := req.input()
	if err != nil {
		badRequest(c, err)
		return
	}
	address, err := h.store.Addresses().Update(c.Request.Context(), id, in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, address)
}

func (h *Handler) DeleteAddress(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	address, err := h.store.Addresses().Delete(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.logger.Info("address deleted", zap.Int64("address_id", address.ID), zap.String("number", address.Number))
	c.Status(http.StatusNoContent)
}

// GetAddressStats returns address counts per category label and per block.
func (h *Handler) GetAddressStats(c *gin.Context) {
	ctx := c.Request.Context()
	byCategory, err := h.store.Addresses().CountByCategory(ctx)
	if err != nil {
		h.writeError(c, err)
		return
	}
	byBlock, err := h.store.Addresses().CountByBlock(ctx)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"by_category": byCategory, "by_block": byBlock})
}

// ImportAddresses reads a CSV or XLSX upload from the "file" form field.
func (h *Handler) ImportAddresses(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, err)
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.writeError(c, err)
		return
	}
	defer f.Close()

	inputs, err := importer.Read(fh.Filename, f)
	if err != nil {
		h.writeError(c, err)
		return
	}

	n, err := h.store.Addresses().CreateBatch(c.Request.Context(), inputs, h.atomicImport)
	if err != nil {
		if n > 0 {
			h.logger.Warn("partial address import", zap.String("file", fh.Filename), zap.Int("imported", n), zap.Error(err))
			c.JSON(http.StatusMultiStatus, gin.H{"imported": n, "error": err.Error()})
			return
		}
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"imported": n})
}

// ExportAddresses streams every address as an XLSX workbook.
func (h *Handler) ExportAddresses(c *gin.Context) {
	addresses, err := h.store.Addresses().List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := importer.ExportXLSX(&buf, addresses); err != nil {
		h.writeError(c, err)
		return
	}
	filename := fmt.Sprintf("addresses-%s.xlsx", h.now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ListFloors lists the floors of an address in floor order.
func (h *Handler) ListFloors(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	floors, err := h.store.Addresses().ListFloors(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, floors)
}

func (h *Handler) GetFloor(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	floor, err := h.store.Addresses().GetFloor(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, floor)
}

func (h *Handler) AddFloor(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in store.FloorInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	floor, err := h.store.Addresses().AddFloor(c.Request.Context(), id, in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, floor)
}

func (h *Handler) UpdateFloor(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in store.FloorInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	floor, err := h.store.Addresses().UpdateFloor(c.Request.Context(), id, in)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, floor)
}

type shopCountRequest struct {
	ShopCount *int `json:"shop_count" binding:"required"`
}

func (h *Handler) UpdateShopCount(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req shopCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	floor, err := h.store.Addresses().UpdateShopCount(c.Request.Context(), id, *req.ShopCount)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, floor)
}

func (h *Handler) DeleteFloor(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if _, err := h.store.Addresses().DeleteFloor(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
