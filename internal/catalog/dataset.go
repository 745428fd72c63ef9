package catalog

import "github.com/shopspring/decimal"

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// Seed returns the storefront's built-in product list, in display order.
func Seed() []Product {
	return []Product{
		{ID: 1, Name: "Wireless Headphones", Description: "Premium wireless headphones with noise cancellation.", Price: price("2999.99"), Category: "electronics", Image: "https://images.unsplash.com/photo-1505740420928-5e560c06d30e?w=400&h=300&fit=crop", Featured: true, Stock: 50, Rating: 4.8, Reviews: 256},
		{ID: 2, Name: "Smart Watch", Description: "Advanced smartwatch with health monitoring, GPS, and long battery life.", Price: price("3999.99"), Category: "electronics", Image: "https://images.unsplash.com/photo-1523275335684-37898b6baf30?w=400&h=300&fit=crop", Featured: true, Stock: 30, Rating: 4.6, Reviews: 189},
		{ID: 3, Name: "Gaming Laptop", Description: "High-performance gaming laptop with RTX graphics and 16GB RAM.", Price: price("12999.99"), Category: "electronics", Image: "https://images.unsplash.com/photo-1496181133206-80ce9b88a853?w=400&h=300&fit=crop", Featured: true, Stock: 20, Rating: 4.9, Reviews: 98},
		{ID: 4, Name: "Smartphone Pro", Description: "Latest flagship smartphone with an advanced camera system.", Price: price("8999.99"), Category: "electronics", Image: "https://images.unsplash.com/photo-1511707171634-5f897ff02aa9?w=400&h=300&fit=crop", Featured: false, Stock: 40, Rating: 4.7, Reviews: 342},
		{ID: 7, Name: "Designer Jacket", Description: "Stylish designer jacket for all seasons, made with premium materials.", Price: price("1499.99"), Category: "fashion", Image: "https://images.unsplash.com/photo-1551698618-1dfe5d97d256?w=400&h=300&fit=crop", Featured: true, Stock: 60, Rating: 4.4, Reviews: 89},
		{ID: 8, Name: "Premium T-Shirt", Description: "Comfortable premium cotton t-shirt with a perfect fit.", Price: price("299.99"), Category: "fashion", Image: "https://images.unsplash.com/photo-1521572163474-6864f9cf17ab?w=400&h=300&fit=crop", Featured: false, Stock: 100, Rating: 4.3, Reviews: 567},
		{ID: 11, Name: "Air Fryer Pro", Description: "Advanced air fryer with smart cooking technology for healthy meals.", Price: price("1999.99"), Category: "home", Image: "https://images.unsplash.com/photo-1556909114-f6e7ad7d3136?w=400&h=300&fit=crop", Featured: true, Stock: 45, Rating: 4.7, Reviews: 189},
		{ID: 12, Name: "Coffee Maker Deluxe", Description: "Premium coffee maker with a built-in grinder for the perfect cup.", Price: price("1599.99"), Category: "home", Image: "https://images.unsplash.com/photo-1495474472287-4d71bcdd2085?w=400&h=300&fit=crop", Featured: false, Stock: 55, Rating: 4.6, Reviews: 267},
		{ID: 15, Name: "Classic Literature Collection", Description: "A complete collection of timeless classic literature in hardcover.", Price: price("499.99"), Category: "books", Image: "https://images.unsplash.com/photo-1481627834876-b7833e8f5570?w=400&h=300&fit=crop", Featured: true, Stock: 75, Rating: 4.9, Reviews: 456},
		{ID: 16, Name: "Programming Guide", Description: "A comprehensive guide to modern development practices.", Price: price("399.99"), Category: "books", Image: "https://images.unsplash.com/photo-1532012197267-da84d127e765?w=400&h=300&fit=crop", Featured: false, Stock: 50, Rating: 4.7, Reviews: 289},
	}
}
