package mapping

import (
	"fmt"

	"github.com/cataloghq/erp-migration/internal/domain"
)

// TargetField describes one destination-schema field the engine scores against.
type TargetField struct {
	Name         string `json:"name"`
	DisplayName  string `json:"display_name"`
	DataType     string `json:"data_type"`
	IsRequired   bool   `json:"is_required"`
	MaxLength    int    `json:"max_length,omitempty"`
	DefaultValue string `json:"default_value,omitempty"`
}

// Catalog supplies the ordered target-field list per entity type. Static
// content; the ordering is part of the contract because the engine's
// first-match-wins resolution depends on it.
type Catalog struct {
	fields map[domain.EntityType][]TargetField
}

// NewCatalog builds a catalog from per-entity field lists.
func NewCatalog(fields map[domain.EntityType][]TargetField) Catalog {
	copied := make(map[domain.EntityType][]TargetField, len(fields))
	for et, list := range fields {
		copied[et] = append([]TargetField(nil), list...)
	}
	return Catalog{fields: copied}
}

// FieldsFor returns the ordered target fields for an entity type.
func (c Catalog) FieldsFor(entityType domain.EntityType) ([]TargetField, error) {
	list, ok := c.fields[entityType]
	if !ok {
		return nil, fmt.Errorf("%w: no target catalog for entity type %q", domain.ErrInvalidData, entityType)
	}
	return append([]TargetField(nil), list...), nil
}

// RequiredFieldsFor returns only the required target field names, in order.
func (c Catalog) RequiredFieldsFor(entityType domain.EntityType) []string {
	var required []string
	for _, f := range c.fields[entityType] {
		if f.IsRequired {
			required = append(required, f.Name)
		}
	}
	return required
}

// DefaultCatalog returns the destination catalog schemas for every supported
// entity type.
func DefaultCatalog() Catalog {
	return NewCatalog(map[domain.EntityType][]TargetField{
		domain.EntityTypeProduct: {
			{Name: "Code", DisplayName: "Product Code", DataType: "string", IsRequired: true, MaxLength: 50},
			{Name: "Name", DisplayName: "Product Name", DataType: "string", IsRequired: true, MaxLength: 200},
			{Name: "Description", DisplayName: "Description", DataType: "string", MaxLength: 500},
			{Name: "Barcode", DisplayName: "Barcode", DataType: "string", MaxLength: 50},
			{Name: "CategoryCode", DisplayName: "Category Code", DataType: "string", MaxLength: 50},
			{Name: "Unit", DisplayName: "Unit", DataType: "string", IsRequired: true, MaxLength: 20},
			{Name: "VatRate", DisplayName: "VAT Rate", DataType: "decimal"},
			{Name: "PurchasePrice", DisplayName: "Purchase Price", DataType: "decimal"},
			{Name: "SalePrice", DisplayName: "Sale Price", DataType: "decimal"},
			{Name: "MinStock", DisplayName: "Min. Stock", DataType: "decimal"},
			{Name: "MaxStock", DisplayName: "Max. Stock", DataType: "decimal"},
		},
		domain.EntityTypeCustomer: {
			{Name: "Code", DisplayName: "Account Code", DataType: "string", IsRequired: true, MaxLength: 50},
			{Name: "Name", DisplayName: "Account Name", DataType: "string", IsRequired: true, MaxLength: 200},
			{Name: "TaxNumber", DisplayName: "Tax Number", DataType: "string", MaxLength: 20},
			{Name: "TaxOffice", DisplayName: "Tax Office", DataType: "string", MaxLength: 100},
			{Name: "Phone", DisplayName: "Phone", DataType: "string", MaxLength: 20},
			{Name: "Email", DisplayName: "Email", DataType: "string", MaxLength: 100},
			{Name: "Address", DisplayName: "Address", DataType: "string", MaxLength: 500},
			{Name: "City", DisplayName: "City", DataType: "string", MaxLength: 50},
			{Name: "District", DisplayName: "District", DataType: "string", MaxLength: 50},
			{Name: "CreditLimit", DisplayName: "Credit Limit", DataType: "decimal"},
		},
		domain.EntityTypeSupplier: {
			{Name: "Code", DisplayName: "Supplier Code", DataType: "string", IsRequired: true, MaxLength: 50},
			{Name: "Name", DisplayName: "Supplier Name", DataType: "string", IsRequired: true, MaxLength: 200},
			{Name: "TaxNumber", DisplayName: "Tax Number", DataType: "string", MaxLength: 20},
			{Name: "TaxOffice", DisplayName: "Tax Office", DataType: "string", MaxLength: 100},
			{Name: "Phone", DisplayName: "Phone", DataType: "string", MaxLength: 20},
			{Name: "Email", DisplayName: "Email", DataType: "string", MaxLength: 100},
			{Name: "Address", DisplayName: "Address", DataType: "string", MaxLength: 500},
		},
		domain.EntityTypeCategory: {
			{Name: "Code", DisplayName: "Category Code", DataType: "string", IsRequired: true, MaxLength: 50},
			{Name: "Name", DisplayName: "Category Name", DataType: "string", IsRequired: true, MaxLength: 100},
			{Name: "ParentCode", DisplayName: "Parent Category Code", DataType: "string", MaxLength: 50},
			{Name: "Description", DisplayName: "Description", DataType: "string", MaxLength: 500},
		},
		domain.EntityTypeBrand: {
			{Name: "Code", DisplayName: "Brand Code", DataType: "string", IsRequired: true, MaxLength: 50},
			{Name: "Name", DisplayName: "Brand Name", DataType: "string", IsRequired: true, MaxLength: 100},
			{Name: "Description", DisplayName: "Description", DataType: "string", MaxLength: 500},
		},
		domain.EntityTypeUnit: {
			{Name: "Code", DisplayName: "Unit Code", DataType: "string", IsRequired: true, MaxLength: 20},
			{Name: "Name", DisplayName: "Unit Name", DataType: "string", IsRequired: true, MaxLength: 50},
			{Name: "Description", DisplayName: "Description", DataType: "string", MaxLength: 200},
		},
		domain.EntityTypeWarehouse: {
			{Name: "Code", DisplayName: "Warehouse Code", DataType: "string", IsRequired: true, MaxLength: 50},
			{Name: "Name", DisplayName: "Warehouse Name", DataType: "string", IsRequired: true, MaxLength: 100},
			{Name: "Address", DisplayName: "Address", DataType: "string", MaxLength: 500},
			{Name: "IsDefault", DisplayName: "Default", DataType: "bool"},
		},
		domain.EntityTypeStock: {
			{Name: "ProductCode", DisplayName: "Product Code", DataType: "string", IsRequired: true, MaxLength: 50},
			{Name: "WarehouseCode", DisplayName: "Warehouse Code", DataType: "string", IsRequired: true, MaxLength: 50},
			{Name: "Quantity", DisplayName: "Quantity", DataType: "decimal", IsRequired: true},
			{Name: "UnitCost", DisplayName: "Unit Cost", DataType: "decimal"},
			{Name: "LotNumber", DisplayName: "Lot Number", DataType: "string", MaxLength: 50},
			{Name: "ExpiryDate", DisplayName: "Expiry Date", DataType: "date"},
		},
		domain.EntityTypeStockMovement: {
			{Name: "ProductCode", DisplayName: "Product Code", DataType: "string", IsRequired: true, MaxLength: 50},
			{Name: "WarehouseCode", DisplayName: "Warehouse Code", DataType: "string", IsRequired: true, MaxLength: 50},
			{Name: "Quantity", DisplayName: "Quantity", DataType: "decimal", IsRequired: true},
			{Name: "MovementType", DisplayName: "Movement Type", DataType: "string", IsRequired: true, MaxLength: 20},
			{Name: "Date", DisplayName: "Date", DataType: "datetime", IsRequired: true},
			{Name: "Description", DisplayName: "Description", DataType: "string", MaxLength: 500},
		},
		domain.EntityTypeOpeningBalance: {
			{Name: "ProductCode", DisplayName: "Product Code", DataType: "string", IsRequired: true, MaxLength: 50},
			{Name: "WarehouseCode", DisplayName: "Warehouse Code", DataType: "string", IsRequired: true, MaxLength: 50},
			{Name: "Quantity", DisplayName: "Quantity", DataType: "decimal", IsRequired: true},
			{Name: "UnitCost", DisplayName: "Unit Cost", DataType: "decimal"},
			{Name: "Date", DisplayName: "Date", DataType: "datetime"},
		},
		domain.EntityTypePriceList: {
			{Name: "ProductCode", DisplayName: "Product Code", DataType: "string", IsRequired: true, MaxLength: 50},
			{Name: "PriceListCode", DisplayName: "Price List Code", DataType: "string", IsRequired: true, MaxLength: 50},
			{Name: "Price", DisplayName: "Price", DataType: "decimal", IsRequired: true},
			{Name: "Currency", DisplayName: "Currency", DataType: "string", MaxLength: 3},
			{Name: "ValidFrom", DisplayName: "Valid From", DataType: "date"},
			{Name: "ValidTo", DisplayName: "Valid To", DataType: "date"},
		},
		domain.EntityTypeInvoice: {
			{Name: "InvoiceNo", DisplayName: "Invoice Number", DataType: "string", IsRequired: true, MaxLength: 50},
			{Name: "InvoiceType", DisplayName: "Invoice Type", DataType: "string", IsRequired: true, MaxLength: 20},
			{Name: "CustomerCode", DisplayName: "Account Code", DataType: "string", IsRequired: true, MaxLength: 50},
			{Name: "Date", DisplayName: "Invoice Date", DataType: "datetime", IsRequired: true},
			{Name: "DueDate", DisplayName: "Due Date", DataType: "datetime"},
			{Name: "TotalAmount", DisplayName: "Total Amount", DataType: "decimal", IsRequired: true},
			{Name: "VatAmount", DisplayName: "VAT Amount", DataType: "decimal"},
			{Name: "DiscountAmount", DisplayName: "Discount Amount", DataType: "decimal"},
			{Name: "Description", DisplayName: "Description", DataType: "string", MaxLength: 500},
		},
		domain.EntityTypeInvoiceItem: {
			{Name: "InvoiceNo", DisplayName: "Invoice Number", DataType: "string", IsRequired: true, MaxLength: 50},
			{Name: "LineNo", DisplayName: "Line Number", DataType: "int"},
			{Name: "ProductCode", DisplayName: "Product Code", DataType: "string", IsRequired: true, MaxLength: 50},
			{Name: "Quantity", DisplayName: "Quantity", DataType: "decimal", IsRequired: true},
			{Name: "UnitPrice", DisplayName: "Unit Price", DataType: "decimal", IsRequired: true},
			{Name: "VatRate", DisplayName: "VAT Rate", DataType: "decimal"},
			{Name: "DiscountRate", DisplayName: "Discount Rate", DataType: "decimal"},
			{Name: "TotalPrice", DisplayName: "Line Total", DataType: "decimal"},
			{Name: "WarehouseCode", DisplayName: "Warehouse Code", DataType: "string", MaxLength: 50},
		},
		domain.EntityTypeAccountingEntry: {
			{Name: "EntryNo", DisplayName: "Entry Number", DataType: "string", IsRequired: true, MaxLength: 50},
			{Name: "Date", DisplayName: "Entry Date", DataType: "datetime", IsRequired: true},
			{Name: "AccountCode", DisplayName: "Account Code", DataType: "string", IsRequired: true, MaxLength: 50},
			{Name: "Description", DisplayName: "Description", DataType: "string", MaxLength: 500},
			{Name: "Debit", DisplayName: "Debit", DataType: "decimal"},
			{Name: "Credit", DisplayName: "Credit", DataType: "decimal"},
			{Name: "DocumentNo", DisplayName: "Document Number", DataType: "string", MaxLength: 50},
			{Name: "DocumentType", DisplayName: "Document Type", DataType: "string", MaxLength: 20},
		},
	})
}
