// AngelaMos | 2026
// entity.go

package product

import (
	"time"
)

type Product struct {
	ID              int64      `db:"id"                json:"id"`
	ItemNameKR      *string    `db:"item_name_kr"      json:"item_name_kr"`
	ItemNameEN      *string    `db:"item_name_en"      json:"item_name_en"`
	ItemNameCN      *string    `db:"item_name_cn"      json:"item_name_cn"`
	ItemNameRU      *string    `db:"item_name_ru"      json:"item_name_ru"`
	ImpaCode        *string    `db:"impa_code"         json:"impa_code"`
	IssaCode        *string    `db:"issa_code"         json:"issa_code"`
	Category        *string    `db:"category"          json:"category"`
	Brand           *string    `db:"brand"             json:"brand"`
	Unit            *string    `db:"unit"              json:"unit"`
	PriceKRW        *int64     `db:"price_krw"         json:"price_krw"`
	CountryOfOrigin *string    `db:"country_of_origin" json:"country_of_origin"`
	Remark          *string    `db:"remark"            json:"remark"`
	Image           *string    `db:"image"             json:"image"`
	CreatedAt       time.Time  `db:"created_at"        json:"created_at"`
	UpdatedAt       *time.Time `db:"updated_at"        json:"updated_at"`

	ImageURL string `db:"-" json:"image_url,omitempty"`
}

// Summary is the grid row shape: the columns the catalog list renders.
type Summary struct {
	ID         int64   `db:"id"           json:"id"`
	ItemNameKR *string `db:"item_name_kr" json:"item_name_kr"`
	ItemNameEN *string `db:"item_name_en" json:"item_name_en"`
	ImpaCode   *string `db:"impa_code"    json:"impa_code"`
	IssaCode   *string `db:"issa_code"    json:"issa_code"`
	Category   *string `db:"category"     json:"category"`
	Unit       *string `db:"unit"         json:"unit"`
	PriceKRW   *int64  `db:"price_krw"    json:"price_krw"`
	Brand      *string `db:"brand"        json:"brand"`
	Image      *string `db:"image"        json:"image"`

	ImageURL string `db:"-" json:"image_url,omitempty"`
}

const (
	productColumns = `id, item_name_kr, item_name_en, item_name_cn, item_name_ru,
		impa_code, issa_code, category, brand, unit, price_krw,
		country_of_origin, remark, image, created_at, updated_at`

	summaryColumns = `id, item_name_kr, item_name_en, impa_code, issa_code,
		category, unit, price_krw, brand, image`
)

// Categories is the fixed set the catalog filter offers.
var Categories = []string{
	"Provisions",
	"Kitchen",
	"Whisky & Tobacco",
	"Navigation",
	"Electrical",
	"Machine Parts",
	"Detergents",
	"Paint",
	"Petroleum",
	"Welding",
	"Pipes",
	"Valves",
	"Cargo Handling",
	"Ropes",
	"Safety",
	"Safety Protection",
	"Medicine",
	"Deck Equipment",
	"Engine Room",
	"Cabin",
	"Cleaning",
	"Tools",
	"Stationery",
	"Electronics",
	"Clothing",
	"Fire Fighting",
	"Life Saving",
	"Mooring",
	"Hardware",
	"Spare Parts",
}
