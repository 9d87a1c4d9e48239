package mapping

import "strings"

// AliasDictionary maps target field names to the legacy source-column synonyms
// seen across the ERP systems we migrate from. It is immutable after
// construction and injected into the engine, so engine instances are safe to
// share across sessions and entity types.
type AliasDictionary struct {
	entries []aliasEntry
	index   map[string]int
}

type aliasEntry struct {
	target  string
	aliases []string
}

// NewAliasDictionary builds a dictionary from ordered (target, aliases) pairs.
// Alias order is preserved; it decides tie-breaks during matching.
func NewAliasDictionary(pairs ...AliasPair) AliasDictionary {
	d := AliasDictionary{index: make(map[string]int, len(pairs))}
	for _, p := range pairs {
		d.index[strings.ToLower(p.Target)] = len(d.entries)
		d.entries = append(d.entries, aliasEntry{
			target:  p.Target,
			aliases: append([]string(nil), p.Aliases...),
		})
	}
	return d
}

// AliasPair is one dictionary entry used at construction time.
type AliasPair struct {
	Target  string
	Aliases []string
}

// AliasesFor returns the known synonyms for a target field, in dictionary
// order. The returned slice must not be mutated.
func (d AliasDictionary) AliasesFor(targetField string) []string {
	i, ok := d.index[strings.ToLower(targetField)]
	if !ok {
		return nil
	}
	return d.entries[i].aliases
}

// DefaultAliases is the dictionary of column-name synonyms observed in Turkish
// legacy ERP exports (Logo, ETA, Mikro, Netsis and hand-built spreadsheets).
// Domain fixture; extend per target field, never reorder existing aliases.
func DefaultAliases() AliasDictionary {
	return NewAliasDictionary(
		AliasPair{"Code", []string{"KOD", "STOK_KODU", "MALZEME_KODU", "CARI_KOD", "URUN_KODU", "STOKKOD", "CARIKOD", "CODE"}},
		AliasPair{"Name", []string{"AD", "ACIKLAMA", "STOK_ADI", "MALZEME_ADI", "CARI_ADI", "URUN_ADI", "STOKADI", "CARIAD", "NAME", "ISIM"}},
		AliasPair{"Description", []string{"ACIKLAMA", "TANIM", "DESCRIPTION", "DETAY"}},
		AliasPair{"Barcode", []string{"BARKOD", "BARCODE", "EAN", "UPC"}},
		AliasPair{"Unit", []string{"BIRIM", "OLCU_BIRIMI", "UNIT", "BR"}},
		AliasPair{"VatRate", []string{"KDV", "KDV_ORANI", "VERGI_ORANI", "VAT", "TAX_RATE"}},
		AliasPair{"PurchasePrice", []string{"ALIS_FIYATI", "MALIYET", "ALIS", "COST", "PURCHASE_PRICE"}},
		AliasPair{"SalePrice", []string{"SATIS_FIYATI", "FIYAT", "SATIS", "PRICE", "SALE_PRICE"}},
		AliasPair{"TaxNumber", []string{"VERGI_NO", "VKN", "TCKN", "TAX_NUMBER", "VERGINO"}},
		AliasPair{"TaxOffice", []string{"VERGI_DAIRESI", "VD", "TAX_OFFICE", "VERGIDAIRESI"}},
		AliasPair{"Phone", []string{"TELEFON", "TEL", "PHONE", "GSM", "MOBIL"}},
		AliasPair{"Email", []string{"EPOSTA", "EMAIL", "MAIL"}},
		AliasPair{"Address", []string{"ADRES", "ADDRESS", "ADRES1", "ADRES2"}},
		AliasPair{"City", []string{"IL", "SEHIR", "CITY"}},
		AliasPair{"District", []string{"ILCE", "DISTRICT"}},
		AliasPair{"Quantity", []string{"MIKTAR", "ADET", "QUANTITY", "QTY"}},
		AliasPair{"Date", []string{"TARIH", "DATE", "ISLEM_TARIHI"}},
		AliasPair{"CategoryCode", []string{"KATEGORI_KOD", "GRUP_KOD", "CATEGORY", "CATEGORY_CODE"}},
		AliasPair{"WarehouseCode", []string{"DEPO_KOD", "DEPO", "WAREHOUSE", "WAREHOUSE_CODE"}},
		AliasPair{"ProductCode", []string{"STOK_KODU", "URUN_KODU", "PRODUCT_CODE", "STOKKOD"}},
		AliasPair{"BrandCode", []string{"MARKA_KODU", "MARKA_KOD", "BRAND_CODE", "MARKAKOD"}},
		AliasPair{"BrandName", []string{"MARKA_ADI", "MARKA", "BRAND_NAME", "BRAND"}},
		AliasPair{"UnitCode", []string{"BIRIM_KODU", "BIRIM_KOD", "UNIT_CODE", "BIRIMKOD"}},
		AliasPair{"UnitName", []string{"BIRIM_ADI", "BIRIM", "UNIT_NAME"}},
		AliasPair{"InvoiceNo", []string{"FATURA_NO", "FATURANO", "INVOICE_NO", "BELGE_NO", "BELGENO"}},
		AliasPair{"InvoiceType", []string{"FATURA_TIPI", "FATURATIPI", "INVOICE_TYPE", "TIP", "HAREKET_TIPI"}},
		AliasPair{"MovementType", []string{"HAREKET_TIPI", "HAREKETTIPI", "MOVEMENT_TYPE", "TIP"}},
		AliasPair{"CustomerCode", []string{"CARI_KOD", "CARIKOD", "MUSTERI_KOD", "CUSTOMER_CODE"}},
		AliasPair{"DueDate", []string{"VADE_TARIHI", "VADE", "DUE_DATE", "VADETARIHI"}},
		AliasPair{"TotalAmount", []string{"TOPLAM", "TOPLAM_TUTAR", "TOTAL", "TOTAL_AMOUNT", "GENEL_TOPLAM"}},
		AliasPair{"VatAmount", []string{"KDV_TUTARI", "KDV", "VAT_AMOUNT", "KDVTUTAR"}},
		AliasPair{"DiscountAmount", []string{"ISKONTO_TUTARI", "ISKONTO", "DISCOUNT", "INDIRIM"}},
		AliasPair{"UnitPrice", []string{"BIRIM_FIYAT", "BIRIMFIYAT", "UNIT_PRICE", "FIYAT"}},
		AliasPair{"DiscountRate", []string{"ISKONTO_ORANI", "ISKONTOORANI", "DISCOUNT_RATE"}},
		AliasPair{"TotalPrice", []string{"SATIR_TOPLAMI", "SATIRTOPLAM", "LINE_TOTAL", "TUTAR"}},
		AliasPair{"LineNo", []string{"SATIR_NO", "SATIRNO", "LINE_NO"}},
		AliasPair{"EntryNo", []string{"FIS_NO", "FISNO", "YEVMIYE_NO", "ENTRY_NO"}},
		AliasPair{"AccountCode", []string{"HESAP_KODU", "HESAPKODU", "ACCOUNT_CODE", "MUHASEBE_KODU"}},
		AliasPair{"Debit", []string{"BORC", "BORÇ", "DEBIT"}},
		AliasPair{"Credit", []string{"ALACAK", "CREDIT"}},
		AliasPair{"DocumentNo", []string{"BELGE_NO", "BELGENO", "DOCUMENT_NO", "EVRAK_NO"}},
		AliasPair{"DocumentType", []string{"BELGE_TIPI", "BELGETIPI", "DOCUMENT_TYPE", "EVRAK_TIPI"}},
		AliasPair{"LotNumber", []string{"LOT_NO", "PARTI_NO", "LOT_NUMBER", "SERI_NO"}},
		AliasPair{"ExpiryDate", []string{"SKT", "SON_KULLANMA", "EXPIRY_DATE", "MIAD"}},
		AliasPair{"PriceListCode", []string{"FIYAT_LISTESI", "LISTE_KODU", "PRICE_LIST", "FIYATLISTESI"}},
		AliasPair{"Currency", []string{"DOVIZ", "PARA_BIRIMI", "CURRENCY", "DOVIZ_KODU"}},
		AliasPair{"CreditLimit", []string{"KREDI_LIMITI", "KREDI", "LIMIT", "CREDIT_LIMIT"}},
		AliasPair{"MinStock", []string{"MIN_STOK", "MINIMUM_STOK", "MIN_STOCK"}},
		AliasPair{"MaxStock", []string{"MAX_STOK", "MAKSIMUM_STOK", "MAX_STOCK"}},
		AliasPair{"UnitCost", []string{"BIRIM_MALIYET", "MALIYET", "UNIT_COST"}},
		AliasPair{"ParentCode", []string{"UST_KOD", "UST_KATEGORI", "PARENT_CODE"}},
		AliasPair{"IsDefault", []string{"VARSAYILAN", "DEFAULT", "IS_DEFAULT"}},
		AliasPair{"Price", []string{"FIYAT", "PRICE", "TUTAR"}},
		AliasPair{"ValidFrom", []string{"GECERLILIK_BASLANGICI", "BASLANGIC", "VALID_FROM"}},
		AliasPair{"ValidTo", []string{"GECERLILIK_BITISI", "BITIS", "VALID_TO"}},
	)
}
