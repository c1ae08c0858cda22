package store

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"property-management-backend/internal/model"
)

// ComplaintStore manages complaints.
type ComplaintStore interface {
	List(ctx context.Context, f ComplaintFilter) ([]model.Complaint, error)
	Get(ctx context.Context, id int64) (*model.Complaint, error)
	Create(ctx context.Context, in ComplaintInput) (*model.Complaint, error)
	Update(ctx context.Context, id int64, in ComplaintInput) (*model.Complaint, error)
	UpdateStatus(ctx context.Context, id int64, status model.ComplaintStatus) (*model.Complaint, error)
	Delete(ctx context.Context, id int64) (*model.Complaint, error)
	PendingCount(ctx context.Context) (int64, error)
	Recent(ctx context.Context, limit int) ([]model.Complaint, error)
}

// ComplaintInput carries the editable fields of a complaint. An empty Status
// means Pending on create and "unchanged" on update.
type ComplaintInput struct {
	ResidentID  int64                 `json:"resident_id"`
	AddressID   int64                 `json:"address_id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Status      model.ComplaintStatus `json:"status"`
}

// ComplaintFilter narrows List. Zero fields are ignored.
type ComplaintFilter struct {
	Status     model.ComplaintStatus
	ResidentID int64
	AddressID  int64
}

type complaintStore struct {
	base
}

func (s *complaintStore) List(ctx context.Context, f ComplaintFilter) ([]model.Complaint, error) {
	q := s.db.WithContext(ctx)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.ResidentID != 0 {
		q = q.Where("resident_id = ?", f.ResidentID)
	}
	if f.AddressID != 0 {
		q = q.Where("address_id = ?", f.AddressID)
	}
	var complaints []model.Complaint
	if err := q.Order("created_at DESC, id DESC").Find(&complaints).Error; err != nil {
		return nil, wrap("list complaints", err)
	}
	return complaints, nil
}

func (s *complaintStore) Get(ctx context.Context, id int64) (*model.Complaint, error) {
	var complaint model.Complaint
	err := s.db.WithContext(ctx).Preload("Resident").Preload("Address").First(&complaint, id).Error
	if err != nil {
		return nil, wrap(fmt.Sprintf("get complaint %d", id), err)
	}
	return &complaint, nil
}

func (s *complaintStore) Create(ctx context.Context, in ComplaintInput) (*model.Complaint, error) {
	if in.Status == "" {
		in.Status = model.ComplaintPending
	}
	var complaint model.Complaint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkComplaint(tx, in); err != nil {
			return err
		}
		complaint = model.Complaint{
			ResidentID:  in.ResidentID,
			AddressID:   in.AddressID,
			Title:       strings.TrimSpace(in.Title),
			Description: strings.TrimSpace(in.Description),
		}
		s.setStatus(&complaint, in.Status)
		return wrap("create complaint", tx.Create(&complaint).Error)
	})
	if err != nil {
		return nil, err
	}
	return &complaint, nil
}

func (s *complaintStore) Update(ctx context.Context, id int64, in ComplaintInput) (*model.Complaint, error) {
	var complaint model.Complaint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&complaint, id).Error; err != nil {
			return wrap(fmt.Sprintf("get complaint %d", id), err)
		}
		if in.Status == "" {
			in.Status = complaint.Status
		}
		if err := checkComplaint(tx, in); err != nil {
			return err
		}
		complaint.ResidentID = in.ResidentID
		complaint.AddressID = in.AddressID
		complaint.Title = strings.TrimSpace(in.Title)
		complaint.Description = strings.TrimSpace(in.Description)
		s.setStatus(&complaint, in.Status)
		return wrap("update complaint", tx.Save(&complaint).Error)
	})
	if err != nil {
		return nil, err
	}
	return &complaint, nil
}

// UpdateStatus moves a complaint to any status.
func (s *complaintStore) UpdateStatus(ctx context.Context, id int64, status model.ComplaintStatus) (*model.Complaint, error) {
	if !status.Valid() {
		return nil, invalid("status", "unknown complaint status %q", status)
	}
	var complaint model.Complaint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&complaint, id).Error; err != nil {
			return wrap(fmt.Sprintf("get complaint %d", id), err)
		}
		s.setStatus(&complaint, status)
		return wrap("update complaint status", tx.Save(&complaint).Error)
	})
	if err != nil {
		return nil, err
	}
	return &complaint, nil
}

func (s *complaintStore) Delete(ctx context.Context, id int64) (*model.Complaint, error) {
	var complaint model.Complaint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&complaint, id).Error; err != nil {
			return wrap(fmt.Sprintf("get complaint %d", id), err)
		}
		return wrap("delete complaint", tx.Delete(&complaint).Error)
	})
	if err != nil {
		return nil, err
	}
	return &complaint, nil
}

// PendingCount counts complaints that are pending or in progress.
func (s *complaintStore) PendingCount(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&model.Complaint{}).
		Where("status IN ?", []model.ComplaintStatus{model.ComplaintPending, model.ComplaintInProgress}).
		Count(&count).Error; err != nil {
		return 0, wrap("count pending complaints", err)
	}
	return count, nil
}

func (s *complaintStore) Recent(ctx context.Context, limit int) ([]model.Complaint, error) {
	if limit <= 0 {
		limit = 5
	}
	var complaints []model.Complaint
	if err := s.db.WithContext(ctx).
		Preload("Resident").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&complaints).Error; err != nil {
		return nil, wrap("recent complaints", err)
	}
	return complaints, nil
}

// setStatus stamps ResolvedAt on entering Resolved or Closed and clears it
// when a complaint is reopened.
func (s *complaintStore) setStatus(c *model.Complaint, status model.ComplaintStatus) {
	c.Status = status
	switch {
	case status.Open():
		c.ResolvedAt = nil
	case c.ResolvedAt == nil:
		now := s.now()
		c.ResolvedAt = &now
	}
}

func checkComplaint(tx *gorm.DB, in ComplaintInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return invalid("title", "must not be empty")
	}
	if strings.TrimSpace(in.Description) == "" {
		return invalid("description", "must not be empty")
	}
	if !in.Status.Valid() {
		return invalid("status", "unknown complaint status %q", in.Status)
	}
	var n int64
	if err := tx.Model(&model.Resident{}).Where("id = ?", in.ResidentID).Count(&n).Error; err != nil {
		return wrap("check resident_id", err)
	}
	if n == 0 {
		return invalid("resident_id", "%d does not exist", in.ResidentID)
	}
	if err := tx.Model(&model.Address{}).Where("id = ?", in.AddressID).Count(&n).Error; err != nil {
		return wrap("check address_id", err)
	}
	if n == 0 {
		return invalid("address_id", "%d does not exist", in.AddressID)
	}
	return nil
}
