// AngelaMos | 2026
// dto.go

package product

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ristan-marine/catalog-api/internal/core"
)

// Fields is the writable column set of a product. JSON names are the column
// names, so a decoded body maps one to one onto SQL.
type Fields struct {
	ItemNameKR      *string `json:"item_name_kr"      validate:"omitempty,max=500"`
	ItemNameEN      *string `json:"item_name_en"      validate:"omitempty,max=500"`
	ItemNameCN      *string `json:"item_name_cn"      validate:"omitempty,max=500"`
	ItemNameRU      *string `json:"item_name_ru"      validate:"omitempty,max=500"`
	ImpaCode        *string `json:"impa_code"         validate:"omitempty,max=50"`
	IssaCode        *string `json:"issa_code"         validate:"omitempty,max=50"`
	Category        *string `json:"category"          validate:"omitempty,max=100"`
	Brand           *string `json:"brand"             validate:"omitempty,max=200"`
	Unit            *string `json:"unit"              validate:"omitempty,max=50"`
	PriceKRW        *int64  `json:"price_krw"         validate:"omitempty,gte=0"`
	CountryOfOrigin *string `json:"country_of_origin" validate:"omitempty,max=100"`
	Remark          *string `json:"remark"            validate:"omitempty,max=2000"`
	Image           *string `json:"image"             validate:"omitempty,max=1024,imagekey"`
}

// writableColumns fixes the column order of generated statements.
var writableColumns = []string{
	"item_name_kr",
	"item_name_en",
	"item_name_cn",
	"item_name_ru",
	"impa_code",
	"issa_code",
	"category",
	"brand",
	"unit",
	"price_krw",
	"country_of_origin",
	"remark",
	"image",
}

// serverColumns may appear in a client payload but are always set by the
// server, so they are dropped rather than rejected.
var serverColumns = map[string]struct{}{
	"created_at": {},
	"updated_at": {},
	"image_url":  {},
}

func (f *Fields) value(column string) any {
	switch column {
	case "item_name_kr":
		return f.ItemNameKR
	case "item_name_en":
		return f.ItemNameEN
	case "item_name_cn":
		return f.ItemNameCN
	case "item_name_ru":
		return f.ItemNameRU
	case "impa_code":
		return f.ImpaCode
	case "issa_code":
		return f.IssaCode
	case "category":
		return f.Category
	case "brand":
		return f.Brand
	case "unit":
		return f.Unit
	case "price_krw":
		return f.PriceKRW
	case "country_of_origin":
		return f.CountryOfOrigin
	case "remark":
		return f.Remark
	case "image":
		return f.Image
	}
	return nil
}

// Assignment is one column write in statement order.
type Assignment struct {
	Column string
	Value  any
}

// Mutation is a decoded create or update payload: the typed fields plus the
// set of columns the caller actually sent.
type Mutation struct {
	ID      int64
	Fields  Fields
	present map[string]struct{}
}

func (m *Mutation) Has(column string) bool {
	_, ok := m.present[column]
	return ok
}

// Assignments lists the present columns in fixed order.
func (m *Mutation) Assignments() []Assignment {
	out := make([]Assignment, 0, len(m.present))
	for _, col := range writableColumns {
		if m.Has(col) {
			out = append(out, Assignment{Column: col, Value: m.Fields.value(col)})
		}
	}
	return out
}

// DecodeMutation parses a product payload. withID controls whether an "id"
// key is expected (update) or forbidden (create). Unknown keys are rejected.
func DecodeMutation(body []byte, withID bool) (*Mutation, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		return nil, core.ValidationError("invalid request body")
	}

	m := &Mutation{present: make(map[string]struct{}, len(raw))}

	if idRaw, ok := raw["id"]; ok {
		if !withID {
			return nil, core.ValidationError("id must not be supplied")
		}
		id, err := parseID(idRaw)
		if err != nil {
			return nil, err
		}
		m.ID = id
		delete(raw, "id")
	} else if withID {
		return nil, core.ValidationError("id is required")
	}

	allowed := make(map[string]struct{}, len(writableColumns))
	for _, col := range writableColumns {
		allowed[col] = struct{}{}
	}

	var unknown []string
	for key := range raw {
		if _, ok := serverColumns[key]; ok {
			delete(raw, key)
			continue
		}
		if _, ok := allowed[key]; !ok {
			unknown = append(unknown, key)
			continue
		}
		m.present[key] = struct{}{}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, core.ValidationError("unknown fields: " + strings.Join(unknown, ", "))
	}

	cleaned, err := json.Marshal(raw)
	if err != nil {
		return nil, core.ValidationError("invalid request body")
	}
	dec := json.NewDecoder(bytes.NewReader(cleaned))
	if err := dec.Decode(&m.Fields); err != nil {
		return nil, core.ValidationError(fmt.Sprintf("invalid field value: %v", err))
	}

	return m, nil
}

// parseID accepts the id as a JSON number or a numeric string.
func parseID(raw json.RawMessage) (int64, error) {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, core.ValidationError("id must be a positive integer")
		}
		n = json.Number(strings.TrimSpace(s))
	}
	return ParseID(n.String())
}

func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, core.ValidationError("id must be a positive integer")
	}
	return id, nil
}

type ListResponse struct {
	Rows       []Summary `json:"rows"`
	TotalCount int       `json:"totalCount"`
}

type UploadResponse struct {
	Filename string `json:"filename"`
}

type CategoriesResponse struct {
	Categories []string `json:"categories"`
}
