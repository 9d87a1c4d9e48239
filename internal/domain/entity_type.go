package domain

import (
	"fmt"
	"strings"
)

// EntityType identifies the kind of catalog record a migrated row becomes.
type EntityType string

const (
	EntityTypeProduct         EntityType = "Product"
	EntityTypeCustomer        EntityType = "Customer"
	EntityTypeSupplier        EntityType = "Supplier"
	EntityTypeCategory        EntityType = "Category"
	EntityTypeBrand           EntityType = "Brand"
	EntityTypeUnit            EntityType = "Unit"
	EntityTypeWarehouse       EntityType = "Warehouse"
	EntityTypeStock           EntityType = "Stock"
	EntityTypeStockMovement   EntityType = "StockMovement"
	EntityTypeOpeningBalance  EntityType = "OpeningBalance"
	EntityTypePriceList       EntityType = "PriceList"
	EntityTypeInvoice         EntityType = "Invoice"
	EntityTypeInvoiceItem     EntityType = "InvoiceItem"
	EntityTypeAccountingEntry EntityType = "AccountingEntry"
)

// EntityTypes lists every supported entity type in catalog order.
var EntityTypes = []EntityType{
	EntityTypeProduct,
	EntityTypeCustomer,
	EntityTypeSupplier,
	EntityTypeCategory,
	EntityTypeBrand,
	EntityTypeUnit,
	EntityTypeWarehouse,
	EntityTypeStock,
	EntityTypeStockMovement,
	EntityTypeOpeningBalance,
	EntityTypePriceList,
	EntityTypeInvoice,
	EntityTypeInvoiceItem,
	EntityTypeAccountingEntry,
}

// ParseEntityType resolves a request token into an EntityType, case-insensitively.
func ParseEntityType(token string) (EntityType, error) {
	trimmed := strings.TrimSpace(token)
	for _, et := range EntityTypes {
		if strings.EqualFold(trimmed, string(et)) {
			return et, nil
		}
	}
	return "", fmt.Errorf("%w: unknown entity type %q", ErrInvalidData, token)
}
