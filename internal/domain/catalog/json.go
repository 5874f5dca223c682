package catalog

import "github.com/go-faster/jx"

// Encode encodes Product as a JSON object.
func (p *Product) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(p.ID)
	e.FieldStart("name")
	e.Str(p.Name)
	e.FieldStart("price")
	e.Num(jx.Num(p.Price.String()))
	e.FieldStart("category")
	e.Str(p.Category)
	e.FieldStart("image")
	e.Str(p.Image)
	e.FieldStart("colors")
	encodeStrings(e, p.Colors)
	e.FieldStart("defaultColor")
	e.Str(p.DefaultColor)
	e.FieldStart("colorImages")
	e.ObjStart()
	for _, c := range p.Colors {
		e.FieldStart(c)
		e.Str(p.ImageFor(c))
	}
	e.ObjEnd()
	e.FieldStart("sizes")
	encodeStrings(e, p.Sizes)
	e.FieldStart("locked")
	e.Bool(p.Locked)
	e.ObjEnd()
}

func encodeStrings(e *jx.Encoder, values []string) {
	e.ArrStart()
	for _, v := range values {
		e.Str(v)
	}
	e.ArrEnd()
}
