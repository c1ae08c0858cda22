package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"property-management-backend/internal/model"
)

// AddressStore manages addresses and the floors they own.
type AddressStore interface {
	List(ctx context.Context) ([]model.Address, error)
	Filter(ctx context.Context, f AddressFilter) ([]model.Address, error)
	Get(ctx context.Context, id int64) (*model.Address, error)
	Create(ctx context.Context, in AddressInput) (*model.Address, error)
	CreateBatch(ctx context.Context, inputs []AddressInput, atomic bool) (int, error)
	Update(ctx context.Context, id int64, in AddressInput) (*model.Address, error)
	Delete(ctx context.Context, id int64) (*model.Address, error)
	Count(ctx context.Context) (int64, error)
	CountByCategory(ctx context.Context) (map[string]int64, error)
	CountByBlock(ctx context.Context) (map[string]int64, error)

	ListFloors(ctx context.Context, addressID int64) ([]model.Floor, error)
	GetFloor(ctx context.Context, id int64) (*model.Floor, error)
	AddFloor(ctx context.Context, addressID int64, in FloorInput) (*model.Floor, error)
	UpdateFloor(ctx context.Context, id int64, in FloorInput) (*model.Floor, error)
	DeleteFloor(ctx context.Context, id int64) (*model.Floor, error)
	UpdateShopCount(ctx context.Context, id int64, shopCount int) (*model.Floor, error)
}

// AddressInput carries the editable fields of an address.
type AddressInput struct {
	Category    model.Category `json:"category"`
	Number      string         `json:"number"`
	Row         string         `json:"row"`
	Block       model.Block    `json:"block"`
	TotalFloors int            `json:"total_floors"`
}

func (in AddressInput) validate() error {
	if !in.Category.Valid() {
		return invalid("category", "unknown category %q", in.Category)
	}
	if !in.Block.Valid() {
		return invalid("block", "unknown block %q", in.Block)
	}
	if in.Number == "" {
		return invalid("number", "must not be empty")
	}
	if in.Row == "" {
		return invalid("row", "must not be empty")
	}
	if in.TotalFloors < 1 {
		return invalid("total_floors", "must be at least 1, got %d", in.TotalFloors)
	}
	return nil
}

func (in AddressInput) apply(a *model.Address) {
	a.Category = in.Category
	a.Number = in.Number
	a.Row = in.Row
	a.Block = in.Block
	a.TotalFloors = in.TotalFloors
}

// AddressFilter narrows an address listing. Zero fields are ignored.
type AddressFilter struct {
	Category model.Category
	Block    model.Block
	Number   string
}

// FloorInput carries the editable fields of a floor.
type FloorInput struct {
	FloorNumber  int  `json:"floor_number"`
	IsOwner      bool `json:"is_owner"`
	IsTenant     bool `json:"is_tenant"`
	IsCommercial bool `json:"is_commercial"`
	IsShop       bool `json:"is_shop"`
	IsVacant     bool `json:"is_vacant"`
	ShopCount    int  `json:"shop_count"`
}

func (in FloorInput) apply(f *model.Floor) {
	f.FloorNumber = in.FloorNumber
	f.IsOwner = in.IsOwner
	f.IsTenant = in.IsTenant
	f.IsCommercial = in.IsCommercial
	f.IsShop = in.IsShop
	f.IsVacant = in.IsVacant
	f.ShopCount = in.ShopCount
	if !f.IsShop {
		f.ShopCount = 0
	}
}

type addressStore struct {
	base
}

func (s *addressStore) List(ctx context.Context) ([]model.Address, error) {
	var addresses []model.Address
	if err := s.db.WithContext(ctx).Order("id").Find(&addresses).Error; err != nil {
		return nil, wrap("list addresses", err)
	}
	return addresses, nil
}

func (s *addressStore) Filter(ctx context.Context, f AddressFilter) ([]model.Address, error) {
	q := s.db.WithContext(ctx).Model(&model.Address{})
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Block != "" {
		q = q.Where("block = ?", f.Block)
	}
	if f.Number != "" {
		q = q.Where(`LOWER(number) LIKE ? ESCAPE '\'`, likePattern(f.Number))
	}

	var addresses []model.Address
	if err := q.Order("id").Find(&addresses).Error; err != nil {
		return nil, wrap("filter addresses", err)
	}
	return addresses, nil
}

func (s *addressStore) Get(ctx context.Context, id int64) (*model.Address, error) {
	var address model.Address
	err := s.db.WithContext(ctx).
		Preload("Floors", func(db *gorm.DB) *gorm.DB { return db.Order("floor_number") }).
		First(&address, id).Error
	if err != nil {
		return nil, wrap(fmt.Sprintf("get address %d", id), err)
	}
	return &address, nil
}

func (s *addressStore) Create(ctx context.Context, in AddressInput) (*model.Address, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var address model.Address
	in.apply(&address)
	if err := s.db.WithContext(ctx).Create(&address).Error; err != nil {
		return nil, wrap("create address", err)
	}
	return &address, nil
}

// CreateBatch validates every input before writing anything. With atomic set
// the batch is one transaction; otherwise rows commit one at a time and the
// returned count tells how many were written before a failure.
func (s *addressStore) CreateBatch(ctx context.Context, inputs []AddressInput, atomic bool) (int, error) {
	var errs []error
	for i, in := range inputs {
		if err := in.validate(); err != nil {
			errs = append(errs, fmt.Errorf("item %d: %w", i+1, err))
		}
	}
	if len(errs) > 0 {
		return 0, errors.Join(errs...)
	}

	if atomic {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for i, in := range inputs {
				var address model.Address
				in.apply(&address)
				if err := tx.Create(&address).Error; err != nil {
					return wrap(fmt.Sprintf("create address (item %d)", i+1), err)
				}
			}
			return nil
		})
		if err != nil {
			return 0, err
		}
		s.logger.Info("addresses imported", zap.Int("count", len(inputs)), zap.Bool("atomic", true))
		return len(inputs), nil
	}

	for i, in := range inputs {
		var address model.Address
		in.apply(&address)
		if err := s.db.WithContext(ctx).Create(&address).Error; err != nil {
			s.logger.Warn("address import stopped", zap.Int("committed", i), zap.Error(err))
			return i, wrap(fmt.Sprintf("create address (item %d)", i+1), err)
		}
	}
	s.logger.Info("addresses imported", zap.Int("count", len(inputs)), zap.Bool("atomic", false))
	return len(inputs), nil
}

func (s *addressStore) Update(ctx context.Context, id int64, in AddressInput) (*model.Address, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var address model.Address
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&address, id).Error; err != nil {
			return wrap(fmt.Sprintf("get address %d", id), err)
		}

		var maxFloor int
		if err := tx.Model(&model.Floor{}).
			Select("COALESCE(MAX(floor_number), 0)").
			Where("address_id = ?", id).
			Scan(&maxFloor).Error; err != nil {
			return wrap("max floor number", err)
		}
		if in.TotalFloors < maxFloor {
			return invalid("total_floors", "floor %d exists, cannot reduce to %d", maxFloor, in.TotalFloors)
		}

		in.apply(&address)
		return wrap("update address", tx.Save(&address).Error)
	})
	if err != nil {
		return nil, err
	}
	return &address, nil
}

// Delete removes an address together with its floors and allotments. Floor
// pointers of residents into those floors are cleared. Addresses referenced
// by financial records or complaints are kept.
func (s *addressStore) Delete(ctx context.Context, id int64) (*model.Address, error) {
	var address model.Address
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&address, id).Error; err != nil {
			return wrap(fmt.Sprintf("get address %d", id), err)
		}

		var refs int64
		if err := tx.Model(&model.FinancialRecord{}).Where("address_id = ?", id).Count(&refs).Error; err != nil {
			return wrap("count financial records", err)
		}
		if refs > 0 {
			return invalid("address", "referenced by %d financial records", refs)
		}
		if err := tx.Model(&model.Complaint{}).Where("address_id = ?", id).Count(&refs).Error; err != nil {
			return wrap("count complaints", err)
		}
		if refs > 0 {
			return invalid("address", "referenced by %d complaints", refs)
		}

		floorIDs := tx.Model(&model.Floor{}).Select("id").Where("address_id = ?", id)
		if err := tx.Model(&model.Resident{}).
			Where("floor_id IN (?)", floorIDs).
			Update("floor_id", gorm.Expr("NULL")).Error; err != nil {
			return wrap("clear resident floors", err)
		}
		if err := tx.Model(&address).Association("Residents").Clear(); err != nil {
			return wrap("clear allotments", err)
		}
		if err := tx.Where("address_id = ?", id).Delete(&model.Floor{}).Error; err != nil {
			return wrap("delete floors", err)
		}
		return wrap("delete address", tx.Delete(&address).Error)
	})
	if err != nil {
		return nil, err
	}
	return &address, nil
}

func (s *addressStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Address{}).Count(&count).Error; err != nil {
		return 0, wrap("count addresses", err)
	}
	return count, nil
}

// CountByCategory returns address counts keyed by category label.
func (s *addressStore) CountByCategory(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Category model.Category
		Total    int64
	}
	if err := s.db.WithContext(ctx).
		Model(&model.Address{}).
		Select("category, COUNT(*) AS total").
		Group("category").
		Scan(&rows).Error; err != nil {
		return nil, wrap("count addresses by category", err)
	}

	result := make(map[string]int64, len(rows))
	for _, r := range rows {
		result[r.Category.Label()] = r.Total
	}
	return result, nil
}

// CountByBlock returns address counts keyed by block name.
func (s *addressStore) CountByBlock(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Block model.Block
		Total int64
	}
	if err := s.db.WithContext(ctx).
		Model(&model.Address{}).
		Select("block, COUNT(*) AS total").
		Group("block").
		Scan(&rows).Error; err != nil {
		return nil, wrap("count addresses by block", err)
	}

	result := make(map[string]int64, len(rows))
	for _, r := range rows {
		result[r.Block.Label()] = r.Total
	}
	return result, nil
}

func (s *addressStore) ListFloors(ctx context.Context, addressID int64) ([]model.Floor, error) {
	var floors []model.Floor
	if err := s.db.WithContext(ctx).
		Where("address_id = ?", addressID).
		Order("floor_number").
		Find(&floors).Error; err != nil {
		return nil, wrap("list floors", err)
	}
	return floors, nil
}

func (s *addressStore) GetFloor(ctx context.Context, id int64) (*model.Floor, error) {
	var floor model.Floor
	if err := s.db.WithContext(ctx).First(&floor, id).Error; err != nil {
		return nil, wrap(fmt.Sprintf("get floor %d", id), err)
	}
	return &floor, nil
}

func (s *addressStore) AddFloor(ctx context.Context, addressID int64, in FloorInput) (*model.Floor, error) {
	floor := model.Floor{AddressID: addressID}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var address model.Address
		if err := tx.First(&address, addressID).Error; err != nil {
			return wrap(fmt.Sprintf("get address %d", addressID), err)
		}
		if err := validateFloor(tx, &address, 0, in); err != nil {
			return err
		}
		in.apply(&floor)
		return wrap("create floor", tx.Create(&floor).Error)
	})
	if err != nil {
		return nil, err
	}
	return &floor, nil
}

func (s *addressStore) UpdateFloor(ctx context.Context, id int64, in FloorInput) (*model.Floor, error) {
	var floor model.Floor
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Address").First(&floor, id).Error; err != nil {
			return wrap(fmt.Sprintf("get floor %d", id), err)
		}
		if err := validateFloor(tx, floor.Address, floor.ID, in); err != nil {
			return err
		}
		in.apply(&floor)
		return wrap("update floor", tx.Omit("Address").Save(&floor).Error)
	})
	if err != nil {
		return nil, err
	}
	floor.Address = nil
	return &floor, nil
}

// DeleteFloor removes a floor and detaches the residents assigned to it.
func (s *addressStore) DeleteFloor(ctx context.Context, id int64) (*model.Floor, error) {
	var floor model.Floor
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&floor, id).Error; err != nil {
			return wrap(fmt.Sprintf("get floor %d", id), err)
		}
		if err := tx.Model(&model.Resident{}).
			Where("floor_id = ?", id).
			Update("floor_id", gorm.Expr("NULL")).Error; err != nil {
			return wrap("clear resident floors", err)
		}
		return wrap("delete floor", tx.Delete(&floor).Error)
	})
	if err != nil {
		return nil, err
	}
	return &floor, nil
}

func (s *addressStore) UpdateShopCount(ctx context.Context, id int64, shopCount int) (*model.Floor, error) {
	if shopCount < 0 {
		return nil, invalid("shop_count", "must not be negative")
	}
	var floor model.Floor
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&floor, id).Error; err != nil {
			return wrap(fmt.Sprintf("get floor %d", id), err)
		}
		if !floor.IsShop {
			return invalid("shop_count", "floor %d is not a shop floor", id)
		}
		floor.ShopCount = shopCount
		return wrap("update shop count", tx.Model(&floor).Update("shop_count", shopCount).Error)
	})
	if err != nil {
		return nil, err
	}
	return &floor, nil
}

// validateFloor checks floor bounds and uniqueness of the floor number within
// the address. selfID excludes the floor being updated.
func validateFloor(tx *gorm.DB, address *model.Address, selfID int64, in FloorInput) error {
	if in.FloorNumber < 1 || in.FloorNumber > address.TotalFloors {
		return invalid("floor_number", "must be between 1 and %d, got %d", address.TotalFloors, in.FloorNumber)
	}
	if in.ShopCount < 0 {
		return invalid("shop_count", "must not be negative")
	}

	var dup int64
	if err := tx.Model(&model.Floor{}).
		Where("address_id = ? AND floor_number = ? AND id <> ?", address.ID, in.FloorNumber, selfID).
		Count(&dup).Error; err != nil {
		return wrap("check floor number", err)
	}
	if dup > 0 {
		return invalid("floor_number", "floor %d already exists", in.FloorNumber)
	}
	return nil
}
