package order

import (
	"time"

	"github.com/AlekSi/pointer"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

// Encode encodes Item as a JSON object.
func (s *Item) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(s.ID)
	e.FieldStart("name")
	e.Str(s.Name)
	e.FieldStart("price")
	e.Num(jx.Num(s.Price.String()))
	e.FieldStart("category")
	e.Str(s.Category)
	e.FieldStart("image")
	e.Str(s.Image)
	if s.SelectedColor != "" {
		e.FieldStart("selectedColor")
		e.Str(s.SelectedColor)
	}
	if s.SelectedSize != "" {
		e.FieldStart("selectedSize")
		e.Str(s.SelectedSize)
	}
	e.ObjEnd()
}

// Decode decodes Item from JSON. Unknown fields are skipped.
func (s *Item) Decode(d *jx.Decoder) error {
	if s == nil {
		return errors.New("invalid: unable to decode Item to nil")
	}
	return d.ObjBytes(func(d *jx.Decoder, k []byte) error {
		var err error
		switch string(k) {
		case "id":
			s.ID, err = d.Int64()
		case "name":
			s.Name, err = d.Str()
		case "price":
			s.Price, err = decodeDecimal(d)
		case "category":
			s.Category, err = d.Str()
		case "image":
			s.Image, err = d.Str()
		case "selectedColor":
			s.SelectedColor, err = decodeOptStr(d)
		case "selectedSize":
			s.SelectedSize, err = decodeOptStr(d)
		default:
			return d.Skip()
		}
		return wrapField(err, k)
	})
}

// Encode encodes Submission as a JSON object.
func (s *Submission) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("address")
	e.Str(s.Address)
	e.FieldStart("phone")
	e.Str(s.Phone)
	if s.Note != nil {
		e.FieldStart("note")
		e.Str(*s.Note)
	}
	e.FieldStart("items")
	encodeItems(e, s.Items)
	e.FieldStart("total")
	e.Str(s.Total)
	e.ObjEnd()
}

// Decode decodes Submission from JSON. A null or absent note leaves Note nil.
func (s *Submission) Decode(d *jx.Decoder) error {
	if s == nil {
		return errors.New("invalid: unable to decode Submission to nil")
	}
	return d.ObjBytes(func(d *jx.Decoder, k []byte) error {
		var err error
		switch string(k) {
		case "address":
			s.Address, err = d.Str()
		case "phone":
			s.Phone, err = d.Str()
		case "note":
			s.Note, err = decodeNullableStr(d)
		case "items":
			s.Items, err = decodeItems(d)
		case "total":
			s.Total, err = d.Str()
		default:
			return d.Skip()
		}
		return wrapField(err, k)
	})
}

// Encode encodes Order as a JSON object. The total is written in its display
// form, e.g. "0.10 DH".
func (s *Order) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(s.ID)
	e.FieldStart("address")
	e.Str(s.Address)
	e.FieldStart("phone")
	e.Str(s.Phone)
	e.FieldStart("note")
	if s.Note != nil {
		e.Str(*s.Note)
	} else {
		e.Null()
	}
	e.FieldStart("items")
	encodeItems(e, s.Items)
	e.FieldStart("total")
	e.Str(s.Total.String())
	e.FieldStart("status")
	e.Str(s.Status)
	e.FieldStart("createdAt")
	e.Str(s.CreatedAt.UTC().Format(time.RFC3339Nano))
	e.ObjEnd()
}

// Decode decodes Order from JSON.
func (s *Order) Decode(d *jx.Decoder) error {
	if s == nil {
		return errors.New("invalid: unable to decode Order to nil")
	}
	return d.ObjBytes(func(d *jx.Decoder, k []byte) error {
		var err error
		switch string(k) {
		case "id":
			s.ID, err = d.Int64()
		case "address":
			s.Address, err = d.Str()
		case "phone":
			s.Phone, err = d.Str()
		case "note":
			s.Note, err = decodeNullableStr(d)
		case "items":
			s.Items, err = decodeItems(d)
		case "total":
			var raw string
			if raw, err = d.Str(); err == nil {
				s.Total, err = ParseTotal(raw, "")
			}
		case "status":
			s.Status, err = d.Str()
		case "createdAt":
			var raw string
			if raw, err = d.Str(); err == nil {
				s.CreatedAt, err = time.Parse(time.RFC3339Nano, raw)
			}
		default:
			return d.Skip()
		}
		return wrapField(err, k)
	})
}

// MarshalItems encodes items as a JSON array, the form stored in the items
// column.
func MarshalItems(items []Item) []byte {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)
	encodeItems(e, items)
	out := make([]byte, len(e.Bytes()))
	copy(out, e.Bytes())
	return out
}

// UnmarshalItems decodes a JSON array produced by MarshalItems.
func UnmarshalItems(data []byte) ([]Item, error) {
	items, err := decodeItems(jx.DecodeBytes(data))
	if err != nil {
		return nil, errors.Wrap(err, "decode items")
	}
	return items, nil
}

func encodeItems(e *jx.Encoder, items []Item) {
	e.ArrStart()
	for i := range items {
		items[i].Encode(e)
	}
	e.ArrEnd()
}

func decodeItems(d *jx.Decoder) ([]Item, error) {
	items := make([]Item, 0)
	err := d.Arr(func(d *jx.Decoder) error {
		var it Item
		if err := it.Decode(d); err != nil {
			return err
		}
		items = append(items, it)
		return nil
	})
	return items, err
}

func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	num, err := d.Num()
	if err != nil {
		return decimal.Zero, err
	}
	if num.Str() {
		return decimal.Zero, errors.New("expected number, got string")
	}
	return ParseAmount(num.String())
}

func decodeNullableStr(d *jx.Decoder) (*string, error) {
	if d.Next() == jx.Null {
		return nil, d.Null()
	}
	v, err := d.Str()
	if err != nil {
		return nil, err
	}
	return pointer.To(v), nil
}

func decodeOptStr(d *jx.Decoder) (string, error) {
	v, err := decodeNullableStr(d)
	if err != nil || v == nil {
		return "", err
	}
	return *v, nil
}

func wrapField(err error, k []byte) error {
	if err != nil {
		return errors.Wrapf(err, "decode field %q", k)
	}
	return nil
}
