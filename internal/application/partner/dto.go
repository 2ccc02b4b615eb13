package partner

import (
	"time"

	"github.com/google/uuid"
	"github.com/pharmaops/backend/internal/domain/partner"
	"github.com/pharmaops/backend/internal/domain/shared"
)

// CreateSupplierRequest represents a request to create a new supplier
type CreateSupplierRequest struct {
	Name          string `json:"name" binding:"required,min=1,max=200"`
	ContactPerson string `json:"contact_person" binding:"max=100"`
	Phone         string `json:"phone" binding:"max=50"`
	Email         string `json:"email" binding:"omitempty,email,max=200"`
	Address       string `json:"address" binding:"max=500"`
	Status        string `json:"status" binding:"omitempty,oneof=ACTIVE INACTIVE"`
}

// UpdateSupplierRequest represents a request to update a supplier
type UpdateSupplierRequest struct {
	Name          *string `json:"name" binding:"omitempty,min=1,max=200"`
	ContactPerson *string `json:"contact_person" binding:"omitempty,max=100"`
	Phone         *string `json:"phone" binding:"omitempty,max=50"`
	Email         *string `json:"email" binding:"omitempty,max=200"`
	Address       *string `json:"address" binding:"omitempty,max=500"`
	Status        *string `json:"status" binding:"omitempty,oneof=ACTIVE INACTIVE"`
}

// SupplierResponse represents a supplier in API responses
type SupplierResponse struct {
	ID            uuid.UUID `json:"id"`
	PharmacyID    uuid.UUID `json:"pharmacy_id"`
	Name          string    `json:"name"`
	ContactPerson string    `json:"contact_person"`
	Phone         string    `json:"phone"`
	Email         string    `json:"email"`
	Address       string    `json:"address"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SupplierListFilter represents filter options for supplier lists
type SupplierListFilter struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Search   string `form:"search"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToSupplierResponse converts a domain Supplier to SupplierResponse
func ToSupplierResponse(s *partner.Supplier) SupplierResponse {
	return SupplierResponse{
		ID:            s.ID,
		PharmacyID:    s.PharmacyID,
		Name:          s.Name,
		ContactPerson: s.ContactPerson,
		Phone:         s.Phone,
		Email:         s.Email,
		Address:       s.Address,
		Status:        string(s.Status),
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

func (f SupplierListFilter) toDomain() shared.Filter {
	page := f.Page
	if page <= 0 {
		page = 1
	}
	return shared.Filter{
		Page:     page,
		PageSize: f.PageSize,
		Search:   f.Search,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
	}
}

func (r UpdateSupplierRequest) apply(s *partner.Supplier) partner.SupplierDetails {
	d := partner.SupplierDetails{
		Name:          s.Name,
		ContactPerson: s.ContactPerson,
		Phone:         s.Phone,
		Email:         s.Email,
		Address:       s.Address,
		Status:        s.Status,
	}
	if r.Name != nil {
		d.Name = *r.Name
	}
	if r.ContactPerson != nil {
		d.ContactPerson = *r.ContactPerson
	}
	if r.Phone != nil {
		d.Phone = *r.Phone
	}
	if r.Email != nil {
		d.Email = *r.Email
	}
	if r.Address != nil {
		d.Address = *r.Address
	}
	if r.Status != nil {
		d.Status = partner.SupplierStatus(*r.Status)
	}
	return d
}
