package property

import (
	"time"

	propertyDatamodel "github.com/frahmantamala/property-management/internal/core/datamodel/property"
	"github.com/shopspring/decimal"
)

type Property struct {
	ID         int64           `json:"id"`
	OwnerID    int64           `json:"owner_id"`
	Name       string          `json:"name"`
	Address    string          `json:"address,omitempty"`
	Rent       decimal.Decimal `json:"rent"`
	IsCoLiving bool            `json:"is_co_living"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func (p *Property) OwnedBy(ownerID int64) bool {
	return p.OwnerID == ownerID
}

func ToDataModel(p *Property) *propertyDatamodel.Property {
	return &propertyDatamodel.Property{
		ID:         p.ID,
		OwnerID:    p.OwnerID,
		Name:       p.Name,
		Address:    p.Address,
		Rent:       p.Rent,
		IsCoLiving: p.IsCoLiving,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

func FromDataModel(p *propertyDatamodel.Property) *Property {
	return &Property{
		ID:         p.ID,
		OwnerID:    p.OwnerID,
		Name:       p.Name,
		Address:    p.Address,
		Rent:       p.Rent,
		IsCoLiving: p.IsCoLiving,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}
