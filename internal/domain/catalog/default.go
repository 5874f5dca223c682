package catalog

import "github.com/shopspring/decimal"

var giftPrice = decimal.RequireFromString("0.1")

// Default returns the storefront collection.
func Default() *Catalog {
	c, err := New([]Product{
		{
			ID:           1,
			Name:         "Parapluie",
			Price:        giftPrice,
			Category:     "Mumuso",
			Image:        "/products/parapluie.png",
			Colors:       []string{"Gray", "Burgundy"},
			DefaultColor: "Gray",
			ColorImages: map[string]string{
				"Black":    "/products/black-parapluie.png",
				"Burgundy": "/products/burgundy-parapluie.png",
				"Gray":     "/products/gray-parapluie.png",
			},
			Locked: true,
		},
		{
			ID:           2,
			Name:         "Cardigan Boutons",
			Price:        giftPrice,
			Category:     "Pull&Bear",
			Image:        "/products/gray-cardigan.png",
			Colors:       []string{"Gray", "Cream", "Burgundy", "Brown", "Dark Gray"},
			DefaultColor: "Gray",
			ColorImages: map[string]string{
				"Gray":      "/products/gray-cardigan.png",
				"Cream":     "/products/cream-cardigan.png",
				"Burgundy":  "/products/burgundy-cardigan.png",
				"Brown":     "/products/brown-cardigan.png",
				"Dark Gray": "/products/dark-gray-cardigan.png",
			},
			Sizes: Sizes,
		},
		{
			ID:           3,
			Name:         "Pantalons Large",
			Price:        giftPrice,
			Category:     "Pull&Bear",
			Image:        "/products/light-pants.png",
			Colors:       []string{"Light Gray", "Dark Blue"},
			DefaultColor: "Light Gray",
			ColorImages: map[string]string{
				"Light Gray": "/products/light-pants.png",
				"Dark Blue":  "/products/dark-pants.png",
			},
			Sizes: Sizes,
		},
		{
			ID:           4,
			Name:         "Jeans Flare",
			Price:        giftPrice,
			Category:     "Pull&Bear",
			Image:        "/products/black-jeans.png",
			Colors:       []string{"Black"},
			DefaultColor: "Black",
			ColorImages: map[string]string{
				"Black": "/products/black-jeans.png",
			},
			Sizes: Sizes,
		},
		{
			ID:           5,
			Name:         "Pull Rayé",
			Price:        giftPrice,
			Category:     "Pull&Bear",
			Image:        "/products/striped-sweater.png",
			Colors:       []string{"Brown/White"},
			DefaultColor: "Brown/White",
			Sizes:        Sizes,
		},
	})
	if err != nil {
		panic(err)
	}
	return c
}
