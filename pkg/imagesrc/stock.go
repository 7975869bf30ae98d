package imagesrc

// StockPhoto is one of the built-in moon photos offered to new users.
type StockPhoto struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

var stockPhotos = [...]StockPhoto{
	{ID: 1, Title: "Full Moon", URL: "https://images.unsplash.com/photo-1509773896068-7fd415d91e2e?w=800"},
	{ID: 2, Title: "Crescent Moon", URL: "https://images.unsplash.com/photo-1532693322450-2cb5c511067d?w=800"},
	{ID: 3, Title: "Moon Surface", URL: "https://images.unsplash.com/photo-1581822261290-991b38693d1b?w=800"},
	{ID: 4, Title: "Blood Moon", URL: "https://images.unsplash.com/photo-1446941611757-91d2c3bd3d45?w=800"},
	{ID: 5, Title: "Half Moon", URL: "https://images.unsplash.com/photo-1520034475321-cbe63696469a?w=800"},
	{ID: 6, Title: "Lunar Eclipse", URL: "https://images.unsplash.com/photo-1517699418036-fb5d179fef0c?w=800"},
}

// StockPhotos returns the stock photo list.
func StockPhotos() []StockPhoto {
	out := make([]StockPhoto, len(stockPhotos))
	copy(out, stockPhotos[:])
	return out
}

// IsStockURL reports whether u is one of the stock photo URLs.
func IsStockURL(u string) bool {
	for _, p := range stockPhotos {
		if p.URL == u {
			return true
		}
	}
	return false
}
