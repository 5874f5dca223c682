package order

import (
	"testing"
	"time"

	"github.com/AlekSi/pointer"
	"github.com/go-faster/jx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmission_Decode(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantNote *string
		wantErr  bool
	}{
		{
			name:  "note absent",
			input: `{"address":"12 Rue X","phone":"0612345678","items":[],"total":"0.00 DH"}`,
		},
		{
			name:  "note null",
			input: `{"address":"12 Rue X","phone":"0612345678","note":null,"items":[],"total":"0.00 DH"}`,
		},
		{
			name:     "note empty",
			input:    `{"address":"12 Rue X","phone":"0612345678","note":"","items":[],"total":"0.00 DH"}`,
			wantNote: pointer.To(""),
		},
		{
			name:    "not an object",
			input:   `[1,2]`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s Submission
			err := s.Decode(jx.DecodeStr(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantNote, s.Note)
		})
	}
}

func TestSubmission_DecodeItems(t *testing.T) {
	input := `{
		"address": "12 Rue X",
		"phone": "0612345678",
		"items": [{"id":1,"name":"Parapluie","price":0.1,"category":"Mumuso","image":"/p.png","selectedColor":"Gray","unknown":true}],
		"total": "0.10 DH"
	}`

	var s Submission
	require.NoError(t, s.Decode(jx.DecodeStr(input)))
	require.Len(t, s.Items, 1)
	assert.Equal(t, "Parapluie", s.Items[0].Name)
	assert.Equal(t, "0.1", s.Items[0].Price.String())
	assert.Equal(t, "Gray", s.Items[0].SelectedColor)
	assert.Empty(t, s.Items[0].SelectedSize)
}

func TestOrder_Encode(t *testing.T) {
	o := Order{
		ID:        7,
		Address:   "12 Rue X",
		Phone:     "0612345678",
		Items:     []Item{umbrella()},
		Total:     TotalOf([]Item{umbrella()}, DefaultCurrency),
		Status:    StatusPending,
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	e := &jx.Encoder{}
	o.Encode(e)

	assert.JSONEq(t, `{
		"id": 7,
		"address": "12 Rue X",
		"phone": "0612345678",
		"note": null,
		"items": [{"id":1,"name":"Parapluie","price":0.1,"category":"Mumuso","image":"/p.png","selectedColor":"Gray"}],
		"total": "0.10 DH",
		"status": "pending",
		"createdAt": "2026-01-02T03:04:05Z"
	}`, e.String())

	var back Order
	require.NoError(t, back.Decode(jx.DecodeBytes(e.Bytes())))
	assert.Equal(t, o.ID, back.ID)
	assert.Nil(t, back.Note)
	assert.Equal(t, "0.10 DH", back.Total.String())
	assert.True(t, o.CreatedAt.Equal(back.CreatedAt))
}

func TestMarshalItems_Empty(t *testing.T) {
	assert.Equal(t, "[]", string(MarshalItems(nil)))

	items, err := UnmarshalItems([]byte("[]"))
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}
