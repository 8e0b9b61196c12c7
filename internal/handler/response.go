package handler

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pulsebook/storefront/internal/model"
)

// 金額はJSONの数値として返す。decimalの既定のMarshalJSONは文字列になるためjson.Numberを経由する。
func money(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

func nullMoney(d decimal.NullDecimal) *json.Number {
	if !d.Valid {
		return nil
	}
	n := money(d.Decimal)
	return &n
}

type formatResponse struct {
	Format  string `json:"format"`
	FileURL string `json:"fileUrl"`
}

type bookResponse struct {
	ID                 int64            `json:"id"`
	Title              string           `json:"title"`
	Author             string           `json:"author"`
	Genre              string           `json:"genre"`
	Rating             json.Number      `json:"rating"`
	Price              json.Number      `json:"price"`
	DiscountPrice      *json.Number     `json:"discountPrice"`
	Cover              string           `json:"cover"`
	Description        string           `json:"description"`
	Badges             []string         `json:"badges"`
	EbookText          *string          `json:"ebookText"`
	EbookPrice         *json.Number     `json:"ebookPrice"`
	EbookDiscountPrice *json.Number     `json:"ebookDiscountPrice"`
	IsAdultContent     bool             `json:"isAdultContent"`
	Formats            []formatResponse `json:"formats"`
}

func toBookResponse(b *model.Book) bookResponse {
	resp := bookResponse{
		ID:                 b.ID,
		Title:              b.Title,
		Author:             b.Author,
		Genre:              b.Genre,
		Rating:             money(b.Rating),
		Price:              money(b.Price),
		DiscountPrice:      nullMoney(b.DiscountPrice),
		Cover:              b.Cover,
		Description:        b.Description,
		Badges:             b.Badges,
		EbookText:          b.EbookText,
		EbookPrice:         nullMoney(b.EbookPrice),
		EbookDiscountPrice: nullMoney(b.EbookDiscountPrice),
		IsAdultContent:     b.IsAdultContent,
		Formats:            make([]formatResponse, len(b.Formats)),
	}
	if resp.Badges == nil {
		resp.Badges = []string{}
	}
	for i, f := range b.Formats {
		resp.Formats[i] = formatResponse{Format: f.Format, FileURL: f.FileURL}
	}
	return resp
}

type dailySalesResponse struct {
	Date    string      `json:"date"`
	Count   int64       `json:"count"`
	Revenue json.Number `json:"revenue"`
}

type weeklySalesResponse struct {
	Week    string      `json:"week"`
	Count   int64       `json:"count"`
	Revenue json.Number `json:"revenue"`
}

type statsResponse struct {
	BooksCount     int64                 `json:"booksCount"`
	PurchasesCount int64                 `json:"purchasesCount"`
	TotalRevenue   json.Number           `json:"totalRevenue"`
	SalesByDay     []dailySalesResponse  `json:"salesByDay"`
	SalesByWeek    []weeklySalesResponse `json:"salesByWeek"`
}

func toStatsResponse(s *model.SalesStats) statsResponse {
	resp := statsResponse{
		BooksCount:     s.BooksCount,
		PurchasesCount: s.PurchasesCount,
		TotalRevenue:   money(s.TotalRevenue),
		SalesByDay:     make([]dailySalesResponse, len(s.SalesByDay)),
		SalesByWeek:    make([]weeklySalesResponse, len(s.SalesByWeek)),
	}
	for i, b := range s.SalesByDay {
		resp.SalesByDay[i] = dailySalesResponse{
			Date:    b.Start.Format(time.DateOnly),
			Count:   b.Count,
			Revenue: money(b.Revenue),
		}
	}
	for i, b := range s.SalesByWeek {
		resp.SalesByWeek[i] = weeklySalesResponse{
			Week:    b.Start.Format(time.RFC3339),
			Count:   b.Count,
			Revenue: money(b.Revenue),
		}
	}
	return resp
}

type purchaseBookResponse struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Cover  string `json:"cover"`
	Genre  string `json:"genre"`
}

type purchaseResponse struct {
	ID           int64                `json:"id"`
	BookID       int64                `json:"bookId"`
	PurchaseType string               `json:"purchaseType"`
	Price        json.Number          `json:"price"`
	PurchasedAt  time.Time            `json:"purchasedAt"`
	Book         purchaseBookResponse `json:"book"`
}

func toPurchaseResponse(p *model.PurchaseWithBook) purchaseResponse {
	return purchaseResponse{
		ID:           p.ID,
		BookID:       p.BookID,
		PurchaseType: p.PurchaseType,
		Price:        money(p.Price),
		PurchasedAt:  p.PurchasedAt,
		Book: purchaseBookResponse{
			Title:  p.BookTitle,
			Author: p.BookAuthor,
			Cover:  p.BookCover,
			Genre:  p.BookGenre,
		},
	}
}

type userResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
	}
}

type trackResponse struct {
	ID             int64  `json:"id"`
	Title          string `json:"title"`
	Artist         string `json:"artist"`
	Duration       string `json:"duration"`
	Cover          string `json:"cover"`
	AudioURL       string `json:"audioUrl"`
	Genre          string `json:"genre"`
	Year           *int   `json:"year"`
	Price          int    `json:"price"`
	IsAdultContent bool   `json:"isAdultContent"`
}

func toTrackResponse(t *model.Track) trackResponse {
	return trackResponse{
		ID:             t.ID,
		Title:          t.Title,
		Artist:         t.Artist,
		Duration:       t.Duration,
		Cover:          t.Cover,
		AudioURL:       t.AudioURL,
		Genre:          t.Genre,
		Year:           t.Year,
		Price:          t.Price,
		IsAdultContent: t.IsAdultContent,
	}
}

// messageResponse は {"message": ...} または {"id": ..., "message": ...} のレスポンス。
type messageResponse struct {
	ID      int64  `json:"id,omitempty"`
	Message string `json:"message"`
}
