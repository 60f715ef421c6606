package catalogsvc

import "Storefront/internal/catalog"

func SeedProducts() []catalog.Product {
	return []catalog.Product{
		{ID: 1, Title: "Essence Mascara Lash Princess", Description: "Volumizing and lengthening mascara.", Price: 9.99, DiscountPercentage: 7.17, Rating: 4.94, Stock: 5, Category: "beauty", Brand: "Essence", Thumbnail: "https://cdn.example.com/1/thumb.png", Images: []string{"https://cdn.example.com/1/1.png"}},
		{ID: 2, Title: "Eyeshadow Palette with Mirror", Description: "Versatile range of eyeshadow shades.", Price: 19.99, DiscountPercentage: 5.5, Rating: 3.28, Stock: 44, Category: "beauty", Brand: "Glamour Beauty", Thumbnail: "https://cdn.example.com/2/thumb.png", Images: []string{"https://cdn.example.com/2/1.png"}},
		{ID: 3, Title: "Powder Canister", Description: "Fine setting powder for a matte finish.", Price: 14.99, Rating: 3.82, Stock: 59, Category: "beauty", Brand: "Velvet Touch", Thumbnail: "https://cdn.example.com/3/thumb.png", Images: []string{}},
		{ID: 6, Title: "Calvin Klein CK One", Description: "Clean and refreshing unisex fragrance.", Price: 49.99, DiscountPercentage: 0.32, Rating: 4.85, Stock: 17, Category: "fragrances", Brand: "Calvin Klein", Thumbnail: "https://cdn.example.com/6/thumb.png", Images: []string{"https://cdn.example.com/6/1.png"}},
		{ID: 7, Title: "Chanel Coco Noir Eau De", Description: "Elegant and mysterious evening fragrance.", Price: 129.99, DiscountPercentage: 18.64, Rating: 4.26, Stock: 41, Category: "fragrances", Brand: "Chanel", Thumbnail: "https://cdn.example.com/7/thumb.png", Images: []string{"https://cdn.example.com/7/1.png"}},
		{ID: 11, Title: "Annibale Colombo Bed", Description: "Luxurious and elegant bed frame.", Price: 1899.99, DiscountPercentage: 8.09, Rating: 4.14, Stock: 47, Category: "furniture", Brand: "Annibale Colombo", Thumbnail: "https://cdn.example.com/11/thumb.png", Images: []string{"https://cdn.example.com/11/1.png"}},
		{ID: 16, Title: "Apple", Description: "Fresh and crisp apples.", Price: 1.99, DiscountPercentage: 12.62, Rating: 2.96, Stock: 9, Category: "groceries", Thumbnail: "https://cdn.example.com/16/thumb.png", Images: []string{"https://cdn.example.com/16/1.png"}},
		{ID: 17, Title: "Beef Steak", Description: "High-quality beef steak, great for grilling.", Price: 12.99, DiscountPercentage: 9.61, Rating: 2.83, Stock: 0, Category: "groceries", Thumbnail: "https://cdn.example.com/17/thumb.png", Images: []string{"https://cdn.example.com/17/1.png"}},
	}
}
